package http

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/bnema/clipforge/internal/infrastructure/logger"
)

const authRealm = "clipforge admin"

// AdminOnly guards next with HTTP basic auth checked against a bcrypt hash.
// The user name is ignored. An empty hash disables the check.
func AdminOnly(passwordHash string, next http.HandlerFunc) http.HandlerFunc {
	if passwordHash == "" {
		return next
	}
	hash := []byte(passwordHash)
	return func(w http.ResponseWriter, r *http.Request) {
		_, password, ok := r.BasicAuth()
		if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
			if ok {
				logger.Warn.Printf("rejected admin credentials for %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+authRealm+`", charset="UTF-8"`)
			writeDetail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// HashPassword returns the bcrypt hash to configure as the admin password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
