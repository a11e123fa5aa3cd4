package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/hamprep/pkg/models"
)

// Identity headers set by the upstream auth layer.
const (
	headerUserID    = "X-User-ID"
	headerEmail     = "X-User-Email"
	headerFirstName = "X-User-First-Name"
	headerLastName  = "X-User-Last-Name"
)

// authedHandler is a handler that runs for an identified user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

// authed resolves the caller from the identity headers, creating the user on
// first sight and refreshing the profile when it changes.
func (s *Server) authed(next authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerUserID))
		if id == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
			return
		}

		claimed := &models.User{
			ID:        id,
			Email:     r.Header.Get(headerEmail),
			FirstName: r.Header.Get(headerFirstName),
			LastName:  r.Header.Get(headerLastName),
		}

		user, err := s.deps.Users.GetByID(r.Context(), id)
		switch {
		case errors.Is(err, models.ErrUserNotFound) || (err == nil && profileChanged(user, claimed)):
			user, err = s.deps.Users.Upsert(r.Context(), claimed)
			if err != nil {
				s.fail(w, r, err)
				return
			}
		case err != nil:
			s.fail(w, r, err)
			return
		}

		next(w, r, user)
	})
}

func profileChanged(stored, claimed *models.User) bool {
	return (claimed.Email != "" && claimed.Email != stored.Email) ||
		(claimed.FirstName != "" && claimed.FirstName != stored.FirstName) ||
		(claimed.LastName != "" && claimed.LastName != stored.LastName)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}
		if id := r.Header.Get(headerUserID); id != "" {
			fields["user_id"] = id
		}
		s.log.WithFields(fields).Debug("request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithFields(logrus.Fields{"path": r.URL.Path, "panic": rec}).Error("handler panicked")
				writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
