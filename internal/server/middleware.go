package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"dealdesk/internal"
	"dealdesk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyUserID contextKey = "user_id"
	contextKeyEmail  contextKey = "email"
	contextKeyRole   contextKey = "role"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth checks for a valid access token and adds the user identity to
// the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
		if err != nil {
			s.logger.WithError(err).Debug("no access token cookie found")
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		var accessToken string
		err = s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt access token")
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		token, err := jwt.Parse(
			[]byte(accessToken),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Error("failed to parse JWT")
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		userID, ok := token.Subject()
		if !ok || userID == "" {
			s.logger.Error("no user ID in JWT subject claim")
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		var roleClaim string
		if err := token.Get("custom:role", &roleClaim); err != nil {
			s.logger.WithError(err).Error("no role claim in JWT")
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		role, err := types.ParseRole(roleClaim)
		if err != nil {
			s.logger.WithError(err).Error("unrecognized role claim")
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		var email string
		if err := token.Get("email", &email); err != nil {
			s.logger.WithError(err).Warn("no email claim in JWT")
			// email is optional, so we don't reject
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, contextKeyUserID, userID)
		ctx = context.WithValue(ctx, contextKeyRole, role)
		if email != "" {
			ctx = context.WithValue(ctx, contextKeyEmail, email)
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"role":    role,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole verifies the :role path segment against the session role, so
// authorization for the whole role-scoped route group happens once.
func (s *Service) RequireRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionRole, err := s.roleFromContext(r.Context())
		if err != nil {
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		pathRole, err := types.ParseRole(flow.Param(r.Context(), "role"))
		if err != nil || pathRole != sessionRole {
			s.respondError(w, types.ErrNotAuthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
