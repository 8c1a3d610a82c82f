// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const authRealm = `Basic realm="newsroom admin", charset="UTF-8"`

// AdminAuth guards a route group with HTTP basic auth for the single
// admin account. The password is checked against a bcrypt hash. With an
// empty hash the guard is disabled and every request passes.
func AdminAuth(email, passwordHash string) func(http.Handler) http.Handler {
	hash := []byte(passwordHash)
	return func(next http.Handler) http.Handler {
		if len(hash) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", authRealm)
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			emailOK := subtle.ConstantTimeCompare([]byte(user), []byte(email)) == 1
			// Always run bcrypt so a wrong email costs the same as a wrong password.
			passOK := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
			if !emailOK || !passOK {
				slog.Warn("admin auth failed", "user", user, "remote", clientIP(r))
				w.Header().Set("WWW-Authenticate", authRealm)
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
