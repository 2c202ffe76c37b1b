package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fermata-io/purgatory"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Store defines the slice of the purgatory store the HTTP surface needs.
type Store interface {
	Eject(ctx context.Context, token *domain.Token) error
	Resolve(ctx context.Context, id string, value any) (*purgatory.Resolution, error)
	Cancel(ctx context.Context, id string) (*domain.Token, error)
	Sweep(ctx context.Context) ([]*domain.Token, error)
	ListPending() []*domain.Token
	ListAll() []*domain.Token
	Get(id string) (*domain.Token, error)
}

// Server exposes the store as a JSON API.
type Server struct {
	store Store
}

// Option configures the handler.
type Option func(r chi.Router)

// WithMetrics mounts a metrics handler (e.g. promhttp) at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(r chi.Router) {
		r.Method(http.MethodGet, "/metrics", h)
	}
}

// NewHandler creates the HTTP handler for the store.
//
// The store itself is single-writer; hosts that serve concurrent requests
// must serialize access, typically by running this handler behind the
// store-owning goroutine or an external mutex.
func NewHandler(store Store, opts ...Option) http.Handler {
	s := &Server{store: store}
	r := chi.NewRouter()

	r.Get("/tokens", s.listAll)
	r.Get("/tokens/pending", s.listPending)
	r.Get("/tokens/{id}", s.get)
	r.Post("/tokens", s.eject)
	r.Post("/tokens/{id}/resolve", s.resolve)
	r.Post("/tokens/{id}/cancel", s.cancel)
	r.Post("/sweep", s.sweep)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// tokenView adds the derived status to the wire form of a token.
type tokenView struct {
	*domain.Token
	Status domain.Status `json:"status"`
}

func view(t *domain.Token) tokenView {
	return tokenView{Token: t, Status: t.Status()}
}

func views(tokens []*domain.Token) []tokenView {
	out := make([]tokenView, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, view(t))
	}
	return out
}

func (s *Server) listAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views(s.store.ListAll()))
}

func (s *Server) listPending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views(s.store.ListPending()))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	token, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(token))
}

func (s *Server) eject(w http.ResponseWriter, r *http.Request) {
	var token domain.Token
	if err := json.NewDecoder(r.Body).Decode(&token); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if token.ID == "" {
		token.ID = domain.NewTokenID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	if err := s.store.Eject(r.Context(), &token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view(&token))
}

type resolveRequest struct {
	Value any `json:"value"`
}

type resolveResponse struct {
	Token       tokenView `json:"token"`
	Value       any       `json:"value"`
	FrozenState []byte    `json:"frozen_state"`
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var body resolveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	res, err := s.store.Resolve(r.Context(), chi.URLParam(r, "id"), body.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Token:       view(res.Token),
		Value:       res.Value,
		FrozenState: res.FrozenState(),
	})
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	token, err := s.store.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(token))
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	voided, err := s.store.Sweep(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views(voided))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrTokenNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyTerminal):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
