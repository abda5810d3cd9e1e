package redmine

import (
	"encoding/base64"
	"net/http"
)

// Authenticator adds the credential header to outgoing requests.
//
// The set of authenticators is closed: APIKeyAuth and BasicAuth are the only
// implementations.
type Authenticator interface {
	apply(h http.Header)
}

// APIKeyAuth authenticates with a Redmine API key.
type APIKeyAuth struct {
	Key string
}

func (a APIKeyAuth) apply(h http.Header) {
	h.Set("X-Redmine-API-Key", a.Key)
}

// BasicAuth authenticates with a login and password.
type BasicAuth struct {
	Login    string
	Password string
}

func (a BasicAuth) apply(h http.Header) {
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(a.Login+":"+a.Password)))
}
