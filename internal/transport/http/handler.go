package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gamified-learning-service/internal/app"
	"gamified-learning-service/internal/domain"
)

// Handler exposes the REST surface of the service.
type Handler struct {
	service *app.LearningService
}

func NewHandler(service *app.LearningService) *Handler {
	return &Handler{service: service}
}

// Register mounts all REST routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/leaderboard", h.leaderboard)
	mux.HandleFunc("GET /api/users/{id}/progress", h.progress)
	mux.HandleFunc("GET /api/users/{id}/attempts", h.attempts)
	mux.HandleFunc("POST /api/gamification/events", h.applyEvent)
	mux.HandleFunc("GET /api/quizzes/{id}", h.quiz)
	mux.HandleFunc("POST /api/quizzes/{id}/submit", h.submitQuiz)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	board, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	user, nextLevelAt, err := h.service.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{User: user, NextLevelAt: nextLevelAt})
}

func (h *Handler) attempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.Attempts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if attempts == nil {
		attempts = []domain.QuizAttempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

type eventRequest struct {
	UserID string `json:"userId"`
	Event  string `json:"event"`
	Meta   struct {
		Correct int `json:"correct"`
		Total   int `json:"total"`
	} `json:"meta"`
}

func (h *Handler) applyEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	user, err := h.service.ApplyEvent(r.Context(), req.UserID, decodeEvent(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// decodeEvent maps the wire payload onto the event union exactly once, at
// the boundary. A missing correct count decodes as zero.
func decodeEvent(req eventRequest) domain.Event {
	switch req.Event {
	case domain.DailyLogin{}.Kind():
		return domain.DailyLogin{}
	case (domain.QuizComplete{}).Kind():
		return domain.QuizComplete{Correct: req.Meta.Correct, Total: req.Meta.Total}
	case domain.CorrectAnswer{}.Kind():
		return domain.CorrectAnswer{}
	default:
		return domain.Unrecognized{Name: req.Event}
	}
}

func (h *Handler) quiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.Quiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type submitRequest struct {
	UserID  string                   `json:"userId"`
	Answers []domain.SubmittedAnswer `json:"answers"`
}

type submitResponse struct {
	Attempt domain.QuizAttempt   `json:"attempt"`
	User    domain.UserGameState `json:"user"`
}

type progressResponse struct {
	User        domain.UserGameState `json:"user"`
	NextLevelAt int                  `json:"nextLevelAt"`
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid submission payload", http.StatusBadRequest)
		return
	}
	attempt, user, err := h.service.SubmitQuiz(r.Context(), r.PathValue("id"), req.UserID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Attempt: attempt, User: user})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
