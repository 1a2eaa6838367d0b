package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	http "github.com/roshangit23/ReadyTestAPI/internal/http"
)

// Formatter renders requests and responses as human-readable text
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  SchemeFor(noColor),
	}
}

// FormatRequest formats a request for display. baseURL is used when the
// request carries none of its own.
func (f *Formatter) FormatRequest(req *http.Request, baseURL string) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n", f.colors().Method.Sprint(req.Method), f.colors().URL.Sprint(req.URL(baseURL)))
	fmt.Fprintf(&buf, "  Auth: %s\n", f.colors().Kind.Sprint(req.Auth.Kind))

	if f.Verbose || len(req.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(req.Headers) {
			fmt.Fprintf(&buf, "    %s: %s\n", f.colors().HeaderKey.Sprint(key), req.Headers[key])
		}
	}

	if len(req.Form) > 0 {
		buf.WriteString("  Form:\n")
		for _, key := range sortedKeys(req.Form) {
			fmt.Fprintf(&buf, "    %s=%s\n", key, req.Form[key])
		}
	}

	for _, file := range req.Files {
		fmt.Fprintf(&buf, "  File: %s\n", file)
	}

	if len(req.Body) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(f.formatBody(req.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	statusColor := f.colors().StatusError
	if resp.IsSuccess() {
		statusColor = f.colors().StatusOK
	} else if resp.IsRedirect() {
		statusColor = f.colors().StatusWarn
	}

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		statusColor.Sprintf("%d %s", resp.StatusCode, statusText(resp)),
		resp.GetResponseTimeMillis())

	if f.Verbose {
		t := resp.Timing
		buf.WriteString("  Timing:\n")
		fmt.Fprintf(&buf, "    DNS Lookup:         %dms\n", t.DNSLookupTime.Milliseconds())
		fmt.Fprintf(&buf, "    TCP Connection:     %dms\n", t.TCPConnectTime.Milliseconds())
		fmt.Fprintf(&buf, "    TLS Handshake:      %dms\n", t.TLSHandshakeTime.Milliseconds())
		fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", resp.GetTimeToFirstByteMillis())
		fmt.Fprintf(&buf, "    Content Transfer:   %dms\n", t.ContentTransferTime.Milliseconds())
		fmt.Fprintf(&buf, "    Total:              %dms\n", t.TotalTime.Milliseconds())

		buf.WriteString("  Headers:\n")
		keys := make([]string, 0, len(resp.Headers))
		for key := range resp.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, value := range resp.Headers[key] {
				fmt.Fprintf(&buf, "    %s: %s\n", f.colors().HeaderKey.Sprint(key), value)
			}
		}
	}

	if body := resp.GetBody(); len(body) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(f.formatBody(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

func (f *Formatter) colors() *ColorScheme {
	if f.scheme == nil {
		f.scheme = SchemeFor(f.NoColor)
	}
	return f.scheme
}

// formatBody pretty-prints JSON bodies and returns anything else unchanged.
func (f *Formatter) formatBody(body []byte) string {
	if !gjson.ValidBytes(body) {
		return string(body)
	}
	out := pretty.PrettyOptions(body, &pretty.Options{Width: 80, Prefix: "  ", Indent: "  "})
	if !f.NoColor {
		out = pretty.Color(out, pretty.TerminalStyle)
	}
	return strings.TrimRight(string(out), "\n")
}

func statusText(resp *http.Response) string {
	if resp.Status == "" {
		return ""
	}
	// net/http reports "200 OK"; keep only the text
	if i := strings.IndexByte(resp.Status, ' '); i > 0 && strings.TrimSpace(resp.Status[:i]) == fmt.Sprint(resp.StatusCode) {
		return resp.Status[i+1:]
	}
	return resp.Status
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
