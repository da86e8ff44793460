package server

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

type basicAuth struct {
	realm    string
	username string
	password string
}

// WithBasicAuth protects every route with a single set of Basic
// credentials. An empty realm defaults to "librecur".
func WithBasicAuth(realm, username, password string) Option {
	return func(h *FeedHandler) {
		if username == "" {
			return
		}
		if realm == "" {
			realm = "librecur"
		}
		h.auth = &basicAuth{realm: realm, username: username, password: password}
	}
}

// checkAuth enforces Basic Authentication. Returns the username and true if successful.
func (h *FeedHandler) checkAuth(w http.ResponseWriter, r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		h.logger.Info("authentication required - no auth header")
		h.requireAuth(w)
		return "", false
	}

	if !strings.HasPrefix(authHeader, "Basic ") {
		h.logger.Error("invalid authorization header format")
		http.Error(w, "Bad Request: Invalid Authorization header format", http.StatusBadRequest)
		return "", false
	}

	decodedBytes, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		h.logger.Error("failed to decode base64 credentials",
			"error", err)
		http.Error(w, "Bad Request: Invalid base64 encoding", http.StatusBadRequest)
		return "", false
	}

	username, password, ok := strings.Cut(string(decodedBytes), ":")
	if !ok {
		h.logger.Error("invalid format for decoded credentials")
		http.Error(w, "Bad Request: Invalid credentials format", http.StatusBadRequest)
		return "", false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.auth.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.auth.password)) == 1
	if !userOK || !passOK {
		h.logger.Warn("authentication failed",
			"user", username)
		h.requireAuth(w)
		return "", false
	}

	h.logger.Debug("authentication successful", "user", username)
	return username, true
}

// requireAuth sends a 401 Unauthorized response asking for Basic Auth.
func (h *FeedHandler) requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm="%s"`, h.auth.realm))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
