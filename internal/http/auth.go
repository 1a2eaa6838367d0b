package http

import "fmt"

// AuthKind identifies the active authentication scheme of a request.
type AuthKind int

const (
	AuthNone AuthKind = iota
	AuthBasic
	AuthBearer
	AuthAPIKey
	AuthDigest
	AuthOAuth1
)

func (k AuthKind) String() string {
	switch k {
	case AuthNone:
		return "none"
	case AuthBasic:
		return "basic"
	case AuthBearer:
		return "bearer"
	case AuthAPIKey:
		return "apiKey"
	case AuthDigest:
		return "digest"
	case AuthOAuth1:
		return "oauth1"
	default:
		return fmt.Sprintf("AuthKind(%d)", int(k))
	}
}

// Auth describes one authentication scheme. Only the fields belonging to Kind are set;
// build values with the constructors below rather than by hand.
type Auth struct {
	Kind AuthKind

	// basic, digest
	Username string
	Password string

	// bearer
	Token string

	// apiKey
	Header string
	Value  string

	// oauth1
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	TokenSecret    string
}

// NoAuth returns the empty descriptor.
func NoAuth() Auth { return Auth{Kind: AuthNone} }

// BasicAuth sends credentials preemptively in an Authorization: Basic header.
func BasicAuth(username, password string) Auth {
	return Auth{Kind: AuthBasic, Username: username, Password: password}
}

// BearerAuth sends token in an Authorization: Bearer header.
func BearerAuth(token string) Auth {
	return Auth{Kind: AuthBearer, Token: token}
}

// APIKeyAuth sends value in the named header.
func APIKeyAuth(header, value string) Auth {
	return Auth{Kind: AuthAPIKey, Header: header, Value: value}
}

// DigestAuth answers the server's digest challenge.
func DigestAuth(username, password string) Auth {
	return Auth{Kind: AuthDigest, Username: username, Password: password}
}

// OAuth1Auth signs requests with HMAC-SHA1 OAuth 1.0a credentials.
func OAuth1Auth(consumerKey, consumerSecret, accessToken, tokenSecret string) Auth {
	return Auth{
		Kind:           AuthOAuth1,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		AccessToken:    accessToken,
		TokenSecret:    tokenSecret,
	}
}
