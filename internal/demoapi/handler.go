// Package demoapi is a small in-memory users API used to try feature files
// by hand and to drive the command tests.
package demoapi

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Credentials are the only email/password pair /login accepts.
type Credentials struct {
	Email    string
	Password string
}

// API serves /health, /login, /echo and /users.
type API struct {
	creds Credentials
	token string

	mu     sync.Mutex
	nextID int
	users  map[int]map[string]interface{}
}

// New creates an API that hands out token on a successful login and seeds
// one user per name.
func New(creds Credentials, token string, names ...string) *API {
	a := &API{
		creds:  creds,
		token:  token,
		nextID: 1,
		users:  make(map[int]map[string]interface{}),
	}
	for _, name := range names {
		a.add(map[string]interface{}{"name": name})
	}
	return a
}

// Handler returns the routes.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("POST /login", a.login)
	mux.HandleFunc("/echo", a.echo)
	mux.HandleFunc("GET /users", a.listUsers)
	mux.HandleFunc("POST /users", a.createUser)
	mux.HandleFunc("GET /users/{id}", a.getUser)
	mux.HandleFunc("DELETE /users/{id}", a.deleteUser)
	return mux
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if creds.Email != a.creds.Email || creds.Password != a.creds.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": a.token})
}

// echo reports what arrived, with the query string exactly as sent.
func (a *API) echo(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(1 << 20)

	form := make(map[string]string)
	for key, values := range r.PostForm {
		form[key] = strings.Join(values, ",")
	}
	var files []string
	if r.MultipartForm != nil {
		for _, headers := range r.MultipartForm.File {
			for _, h := range headers {
				files = append(files, h.Filename)
			}
		}
		sort.Strings(files)
	}
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"query":         r.URL.RawQuery,
		"authorization": r.Header.Get("Authorization"),
		"form":          form,
		"files":         files,
		"cookies":       cookies,
	})
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ids := make([]int, 0, len(a.users))
	for id := range a.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	list := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		list = append(list, a.users[id])
	}
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, list)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+a.token {
		writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
		return
	}

	var user map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if name, _ := user["name"].(string); name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	user = a.add(user)
	w.Header().Set("Location", "/users/"+strconv.Itoa(user["id"].(int)))
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, ok := a.find(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "xml") {
		writeXML(w, user)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	a.mu.Lock()
	_, ok := a.users[id]
	delete(a.users, id)
	a.mu.Unlock()

	if err != nil || !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) add(user map[string]interface{}) map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	user["id"] = a.nextID
	a.users[a.nextID] = user
	a.nextID++
	return user
}

func (a *API) find(raw string) (map[string]interface{}, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	user, ok := a.users[id]
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type xmlUser struct {
	XMLName xml.Name `xml:"user"`
	ID      string   `xml:"id,attr"`
	Name    string   `xml:"name"`
}

func writeXML(w http.ResponseWriter, user map[string]interface{}) {
	name, _ := user["name"].(string)
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(xmlUser{ID: strconv.Itoa(user["id"].(int)), Name: name})
}
