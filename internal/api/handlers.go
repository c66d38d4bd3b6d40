package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hotelwatch/rate-scraper/internal/database"
	"github.com/hotelwatch/rate-scraper/internal/jobs"
	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/hotelwatch/rate-scraper/internal/otas"
	"github.com/hotelwatch/rate-scraper/internal/scraper"
)

type Handlers struct {
	jobs      *jobs.Manager
	rates     *database.RateRepository
	whitelist *otas.Whitelist
	logger    *slog.Logger
}

func NewHandlers(jobs *jobs.Manager, rates *database.RateRepository, whitelist *otas.Whitelist, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:      jobs,
		rates:     rates,
		whitelist: whitelist,
		logger:    logger,
	}
}

func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs/{id}", h.GetJob)
		r.Get("/rates", h.ListRates)
		r.Get("/otas", h.ListOTAs)
	})
}

// CreateJobRequest is the body of POST /api/v1/jobs.
type CreateJobRequest struct {
	HotelName string `json:"hotel_name"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Adults    int    `json:"adults"`
}

func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := models.RateQuery{
		HotelName: req.HotelName,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Adults:    req.Adults,
	}
	if query.Adults == 0 {
		query.Adults = models.DefaultAdults
	}

	job, err := h.jobs.Enqueue(r.Context(), query)
	if err != nil {
		if errors.Is(err, scraper.ErrInvalidQuery) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to enqueue job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	h.respondJSON(w, http.StatusAccepted, job)
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get job", "id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) ListRates(w http.ResponseWriter, r *http.Request) {
	hotel := r.URL.Query().Get("hotel")
	if hotel == "" {
		h.respondError(w, http.StatusBadRequest, "hotel query parameter is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.rates.ListByHotel(r.Context(), hotel, limit)
	if err != nil {
		h.logger.Error("failed to list rates", "hotel", hotel, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list rates")
		return
	}
	if records == nil {
		records = []models.RateRecord{}
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"hotel":   hotel,
		"records": records,
	})
}

func (h *Handlers) ListOTAs(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"otas": h.whitelist.Names(),
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
