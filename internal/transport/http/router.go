package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"training-quiz-service/internal/app"
	"training-quiz-service/internal/domain"
)

// NewRouter wires the health check, the read-only overview endpoint and the
// websocket game endpoint.
func NewRouter(service *app.QuizService, ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/api/players/{playerID}/overview", func(w http.ResponseWriter, r *http.Request) {
		overview, err := service.Overview(r.Context(), chi.URLParam(r, "playerID"))
		if err != nil {
			writeJSON(w, statusFor(err), errorPayload{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, overview)
	})
	r.Get("/ws", ws.ServeWS)
	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
