package job

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"repairtrack/auth"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// envelope is the response shape every endpoint emits.
type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Errors     any         `json:"errors,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

// POST /api/jobs
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CustomerName       string `json:"customerName"`
		CustomerPhone      string `json:"customerPhone"`
		CustomerEmail      string `json:"customerEmail"`
		DeviceModel        string `json:"deviceModel"`
		DeviceSerial       string `json:"deviceSerial"`
		ProblemDescription string `json:"problemDescription"`
		ProblemCategory    string `json:"problemCategory"`
		Priority           string `json:"priority"`
		DropAppID          string `json:"dropAppId"`
		Notes              string `json:"notes"`
		Source             string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid request body"})
		return
	}

	result, err := h.Service.Create(r.Context(), CreateInput{
		CustomerName:       input.CustomerName,
		CustomerPhone:      input.CustomerPhone,
		CustomerEmail:      input.CustomerEmail,
		DeviceModel:        input.DeviceModel,
		DeviceSerial:       input.DeviceSerial,
		ProblemDescription: input.ProblemDescription,
		ProblemCategory:    input.ProblemCategory,
		Priority:           Priority(input.Priority),
		DropAppID:          input.DropAppID,
		Notes:              input.Notes,
		Source:             input.Source,
	})
	if err != nil {
		h.writeError(w, err, "failed to create job")
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "repair job created", Data: result})
}

// GET /api/jobs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.Service.List(r.Context(), ListInput{
		Status:   q.Get("status"),
		BranchID: q.Get("branchId"),
		AspID:    q.Get("aspId"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.writeError(w, err, "failed to fetch jobs")
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int(math.Ceil(float64(result.Total) / float64(result.Limit)))
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    result.Jobs,
		Pagination: &pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: totalPages,
		},
	})
}

// GET /api/jobs/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	j, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "failed to fetch job")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: j})
}

// PUT /api/jobs/{id}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status             string   `json:"status"`
		Note               string   `json:"note"`
		EstimatedCost      *float64 `json:"estimatedCost"`
		ActualCost         *float64 `json:"actualCost"`
		AspID              string   `json:"aspId"`
		AssignedTechnician string   `json:"assignedTechnician"`
		Location           string   `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid request body"})
		return
	}

	actor := Actor{}
	if u, ok := auth.FromContext(r.Context()); ok {
		actor = Actor{ID: u.UID, Name: u.DisplayName}
	}

	result, err := h.Service.UpdateStatus(r.Context(), mux.Vars(r)["id"], UpdateStatusInput{
		Status:             Status(input.Status),
		Note:               input.Note,
		EstimatedCost:      input.EstimatedCost,
		ActualCost:         input.ActualCost,
		AspID:              input.AspID,
		AssignedTechnician: input.AssignedTechnician,
		Location:           input.Location,
	}, actor)
	if err != nil {
		h.writeError(w, err, "failed to update job")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "status updated", Data: result})
}

// GET /api/jobs/stats/summary
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: stats})
}

// GET /api/jobs/queue/current
func (h *Handler) CurrentQueue(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.CurrentQueueView(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to fetch queue status")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: view})
}

// GET /api/jobs/analytics/overview
func (h *Handler) AnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to fetch analytics")
		return
	}

	performance := map[string]any{
		"totalJobs":         stats.Total,
		"completedJobs":     stats.Completed,
		"inProgressJobs":    stats.InProgress,
		"pendingJobs":       stats.Pending,
		"avgCompletionTime": stats.AvgCompletionTime,
		"completionRate":    stats.CompletionRate,
		"currentQueue":      stats.CurrentQueue,
		"todayJobs":         stats.TodayJobs,
		"statusBreakdown":   stats.StatusBreakdown,
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"performance": performance,
		"trends":      ComputeTrends(*stats),
		"lastUpdated": time.Now().UTC(),
	}})
}

// GET /api/jobs/analytics/daily
func (h *Handler) AnalyticsDaily(w http.ResponseWriter, r *http.Request) {
	daily, err := h.Service.Daily(r.Context(), 7)
	if err != nil {
		h.writeError(w, err, "failed to fetch daily analytics")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: daily})
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"status":    "OK",
		"message":   "Repair Tracking API is running!",
		"timestamp": time.Now().UTC(),
	}})
}

// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"message": "Welcome to Repair Tracking API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "/health",
			"jobs":           "/api/jobs",
			"createJob":      "POST /api/jobs",
			"jobStats":       "/api/jobs/stats/summary",
			"currentQueue":   "/api/jobs/queue/current",
			"analytics":      "/api/jobs/analytics/overview",
			"dailyAnalytics": "/api/jobs/analytics/daily",
		},
	}})
}

// NotFound handles unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{
		Success: false,
		Message: "Cannot " + r.Method + " " + r.URL.Path,
		Data: map[string]any{
			"availableEndpoints": []string{"/", "/health", "/api/jobs"},
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid input", Errors: verr.Fields})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "job not found"})
	default:
		// Store failures stay opaque to callers.
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: fallback})
	}
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
