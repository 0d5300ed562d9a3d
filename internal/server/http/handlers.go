package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
	"github.com/cyclewise/cyclewise/internal/service"
)

// Server wires auth and sync services into HTTP handlers.
type Server struct {
	auth service.AuthService
	sync service.SyncService
	log  *zap.Logger
}

// New constructs the HTTP server facade.
func New(auth service.AuthService, sync service.SyncService, log *zap.Logger) *Server {
	return &Server{auth: auth, sync: sync, log: log}
}

// Router builds the full handler chain.
func (s *Server) Router(signKey []byte) http.Handler {
	r := httprouter.New()

	r.HandlerFunc(http.MethodPost, "/auth/register", s.handleRegister)
	r.HandlerFunc(http.MethodPost, "/auth/login", s.handleLogin)

	protected := func(h http.HandlerFunc) http.Handler { return Auth(signKey, h) }
	r.Handler(http.MethodPost, "/api/sync", protected(s.handlePush))
	r.Handler(http.MethodGet, "/api/sync", protected(s.handlePull))

	r.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return Recover(s.log, Logging(s.log, r))
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	id, err := s.auth.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "username taken")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"userId": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	tokens, user, err := s.auth.LoginWithIP(r.Context(), in.Username, in.Password, ip)
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
		return
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":      user.ID.String(),
		"accessToken": tokens.AccessToken,
		"expiresAt":   tokens.ExpiresAt,
	})
}

type pushRequest struct {
	Ops []model.SyncOp `json:"ops"`
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in pushRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := s.sync.Push(r.Context(), uid, in.Ops); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	records, err := s.sync.Pull(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	if records == nil {
		records = []model.RemoteRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
