// Package sftest provides an in-memory Salesforce org served over httptest,
// for tests of the client, the adapter and the MCP server.
package sftest

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"sfmcp/internal/salesforce"
)

// Default credentials accepted by a new Org.
const (
	Username      = "integration@example.com"
	Password      = "hunter2"
	SecurityToken = "TOKEN123"
	ClientID      = "connected-app-id"
	ClientSecret  = "connected-app-secret"
	APIVersion    = "59.0"
)

// Org is a fake org. Fixture bodies are stored as raw JSON so the key order
// seen by the client is exactly what the fixture says.
type Org struct {
	*httptest.Server

	mu        sync.Mutex
	session   string
	sessions  int
	logins    int
	requests  int
	global    string
	describes map[string]string
	queries   map[string]string
	failWith  int
}

// NewOrg starts a fake org with the default fixtures. It is closed when the
// test ends.
func NewOrg(t testing.TB) *Org {
	t.Helper()
	o := &Org{
		global:    DescribeGlobalJSON,
		describes: map[string]string{"Account": AccountDescribeJSON},
		queries: map[string]string{
			QueryTwoAccounts:    TwoAccountsJSON,
			QueryNoRows:         NoRowsJSON,
			QueryCount:          CountJSON,
			QueryRelationship:   RelationshipJSON,
			QueryAggregateAlias: AggregateAliasJSON,
			QueryChildContacts:  ChildContactsJSON,
		},
	}
	o.Server = httptest.NewServer(http.HandlerFunc(o.serveHTTP))
	t.Cleanup(o.Close)
	return o
}

// Options returns client options that log in to this org with SOAP.
func (o *Org) Options() salesforce.Options {
	return salesforce.Options{
		Username:      Username,
		Password:      Password,
		SecurityToken: SecurityToken,
		LoginURL:      o.URL,
		APIVersion:    APIVersion,
	}
}

// OAuthOptions returns client options that log in with the OAuth password flow.
func (o *Org) OAuthOptions() salesforce.Options {
	opts := o.Options()
	opts.ClientID = ClientID
	opts.ClientSecret = ClientSecret
	return opts
}

// SetQuery registers the raw JSON response for a SOQL string.
func (o *Org) SetQuery(soql, body string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queries[soql] = body
}

// SetDescribe registers the raw describe JSON for an object.
func (o *Org) SetDescribe(name, body string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.describes[name] = body
}

// SetGlobal replaces the describe-global body.
func (o *Org) SetGlobal(body string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.global = body
}

// ExpireSession invalidates the current session so the next data call gets a 401.
func (o *Org) ExpireSession() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = ""
}

// FailWith makes every data call answer with the given HTTP status.
// Zero restores normal behaviour.
func (o *Org) FailWith(status int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failWith = status
}

// Logins returns the number of successful logins.
func (o *Org) Logins() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.logins
}

// DataRequests returns the number of REST data calls received.
func (o *Org) DataRequests() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requests
}

func (o *Org) serveHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/services/Soap/u/"):
		o.handleSOAPLogin(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/services/oauth2/token":
		o.handleOAuthToken(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/services/data/v"+APIVersion+"/"):
		o.handleData(w, r, strings.TrimPrefix(r.URL.Path, "/services/data/v"+APIVersion))
	default:
		writeErrors(w, http.StatusNotFound, "NOT_FOUND", "The requested resource does not exist")
	}
}

func (o *Org) newSession() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions++
	o.logins++
	o.session = fmt.Sprintf("00Dfake!session-%d", o.sessions)
	return o.session
}

type soapLoginRequest struct {
	Body struct {
		Login struct {
			Username string `xml:"username"`
			Password string `xml:"password"`
		} `xml:"login"`
	} `xml:"Body"`
}

func (o *Org) handleSOAPLogin(w http.ResponseWriter, r *http.Request) {
	var req soapLoginRequest
	if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad envelope", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if req.Body.Login.Username != Username || req.Body.Login.Password != Password+SecurityToken {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, soapFault)
		return
	}

	session := o.newSession()
	_, _ = fmt.Fprintf(w, soapLoginResponse, o.URL, APIVersion, session)
}

func (o *Org) handleOAuthToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	f := r.PostForm
	if f.Get("grant_type") != "password" || f.Get("client_id") != ClientID || f.Get("client_secret") != ClientSecret ||
		f.Get("username") != Username || f.Get("password") != Password+SecurityToken {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "authentication failure",
		})
		return
	}

	session := o.newSession()
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": session,
		"instance_url": o.URL,
		"token_type":   "Bearer",
		"id":           o.URL + "/id/00Dfake/005fake",
	})
}

func (o *Org) handleData(w http.ResponseWriter, r *http.Request, path string) {
	o.mu.Lock()
	o.requests++
	session := o.session
	failWith := o.failWith
	o.mu.Unlock()

	if session == "" || r.Header.Get("Authorization") != "Bearer "+session {
		writeErrors(w, http.StatusUnauthorized, "INVALID_SESSION_ID", "Session expired or invalid")
		return
	}
	if failWith != 0 {
		writeErrors(w, failWith, "SERVER_UNAVAILABLE", "The server is temporarily unavailable")
		return
	}

	switch {
	case path == "/sobjects/":
		o.mu.Lock()
		body := o.global
		o.mu.Unlock()
		writeRaw(w, body)

	case strings.HasPrefix(path, "/sobjects/") && strings.HasSuffix(path, "/describe/"):
		name, _ := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(path, "/sobjects/"), "/describe/"))
		o.mu.Lock()
		body, ok := o.describes[name]
		o.mu.Unlock()
		if !ok {
			writeErrors(w, http.StatusNotFound, "NOT_FOUND", "The requested resource does not exist")
			return
		}
		writeRaw(w, body)

	case path == "/query/":
		soql := r.URL.Query().Get("q")
		o.mu.Lock()
		body, ok := o.queries[soql]
		o.mu.Unlock()
		if !ok {
			writeErrors(w, http.StatusBadRequest, "MALFORMED_QUERY",
				fmt.Sprintf("unexpected token: '%s'", lastToken(soql)))
			return
		}
		writeRaw(w, body)

	default:
		writeErrors(w, http.StatusNotFound, "NOT_FOUND", "The requested resource does not exist")
	}
}

func lastToken(soql string) string {
	fields := strings.Fields(soql)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func writeRaw(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func writeErrors(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode([]map[string]string{{"message": message, "errorCode": code}})
}
