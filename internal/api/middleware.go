package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("Handled request")
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// tokenVerifier checks HS256 caller tokens against the shared signing secret
type tokenVerifier struct {
	secret []byte
}

func newTokenVerifier(secret string) *tokenVerifier {
	if secret == "" {
		return nil
	}
	return &tokenVerifier{secret: []byte(secret)}
}

// verify accepts only signed, unexpired tokens that carry an expiry
func (v *tokenVerifier) verify(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func unauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error":    message,
		"redirect": "/login",
	})
}

// authMiddleware forwards the caller's bearer token to the backend so its
// row-level policies apply. With a verifier the token must also carry a valid
// signature and expiry. Without a token the request is rejected with a
// redirect hint unless auth is disabled.
func authMiddleware(required bool, verifier *tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if required {
					unauthorized(w, "unauthenticated")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if verifier != nil {
				claims, err := verifier.verify(token)
				if err != nil {
					if errors.Is(err, jwt.ErrTokenExpired) {
						unauthorized(w, "token expired")
						return
					}
					logrus.WithError(err).WithField("path", r.URL.Path).Warn("Rejected invalid bearer token")
					unauthorized(w, "invalid token")
					return
				}
				logrus.WithField("subject", claims.Subject).Debug("Authenticated request")
			}
			next.ServeHTTP(w, r.WithContext(backend.WithAccessToken(r.Context(), token)))
		})
	}
}
