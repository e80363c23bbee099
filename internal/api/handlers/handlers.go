package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"expensetracker/backend/internal/api/middleware"
	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/expense"
	"expensetracker/backend/internal/pipeline"
)

// ExpenseService is the application service behind the HTTP surface.
type ExpenseService interface {
	Process(ctx context.Context, userID string, req pipeline.Request) expense.ProcessResponse
	Save(ctx context.Context, userID string, req expense.SaveRequest) error
	MonthlyPivot(ctx context.Context, userID string, month time.Month, year int) ([]expense.PivotRow, error)
	YearlyPivot(ctx context.Context, userID string, year int) ([]expense.PivotRow, error)
	MonthlyConsolidatedPivot(ctx context.Context, userID string, year int) ([]expense.ConsolidatedRow, error)
	Categories(ctx context.Context, userID string) ([]domain.Category, error)
	SaveCategories(ctx context.Context, userID string, categories []domain.Category) error
	History(ctx context.Context, userID string) ([]domain.ExpenseHistory, error)
}

// ExpensesHandler handles expense-related endpoints.
type ExpensesHandler struct {
	svc ExpenseService
	log zerolog.Logger
}

// NewExpensesHandler creates a new expenses handler.
func NewExpensesHandler(svc ExpenseService, log zerolog.Logger) *ExpensesHandler {
	return &ExpensesHandler{svc: svc, log: log}
}

// Process handles POST /api/expenses/process
func (h *ExpensesHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Month         int                     `json:"month"`
		Year          int                     `json:"year"`
		StatementType domain.StatementKind    `json:"statementType"`
		Files         []pipeline.FileMetadata `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp := h.svc.Process(ctx, middleware.UserID(ctx), pipeline.Request{
		Month:         req.Month,
		Year:          req.Year,
		StatementType: req.StatementType,
		Files:         req.Files,
	})

	// Nothing processed and an error payload means the request failed outright.
	if resp.Error != nil && len(resp.ProcessedData) == 0 {
		middleware.WriteJSON(w, http.StatusInternalServerError, resp)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Save handles POST /api/expenses/save
func (h *ExpensesHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req expense.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.Save(ctx, middleware.UserID(ctx), req); err != nil {
		h.log.Error().Err(err).Int("month", req.Month).Int("year", req.Year).Msg("Failed to save expenses")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Saved your monthly expense data",
	})
}

// MonthlyPivot handles GET /api/expenses/pivot/monthly
func (h *ExpensesHandler) MonthlyPivot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	if month < 1 || month > 12 {
		middleware.WriteError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	rows, err := h.svc.MonthlyPivot(ctx, middleware.UserID(ctx), time.Month(month), year)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build monthly pivot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build pivot")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, rows)
}

// YearlyPivot handles GET /api/expenses/pivot/yearly
func (h *ExpensesHandler) YearlyPivot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}

	rows, err := h.svc.YearlyPivot(ctx, middleware.UserID(ctx), year)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build yearly pivot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build pivot")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, rows)
}

// ConsolidatedPivot handles GET /api/expenses/pivot/consolidated
func (h *ExpensesHandler) ConsolidatedPivot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}

	rows, err := h.svc.MonthlyConsolidatedPivot(ctx, middleware.UserID(ctx), year)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build consolidated pivot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build pivot")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, rows)
}

// CategoriesHandler handles category taxonomy endpoints.
type CategoriesHandler struct {
	svc ExpenseService
	log zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(svc ExpenseService, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{svc: svc, log: log}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.svc.Categories(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// Replace handles POST /api/categories
func (h *CategoriesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.SaveCategories(ctx, middleware.UserID(ctx), req.Categories); err != nil {
		h.log.Error().Err(err).Msg("Failed to save categories")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Saved your categories",
	})
}

// HistoryHandler handles categorization-history endpoints.
type HistoryHandler struct {
	svc ExpenseService
	log zerolog.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(svc ExpenseService, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, log: log}
}

// List handles GET /api/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.svc.History(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}
	if entries == nil {
		entries = []domain.ExpenseHistory{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
		"count":   len(entries),
	})
}

// queryInt parses a required integer query parameter, writing a 400 on
// failure.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		middleware.WriteError(w, http.StatusBadRequest, name+" is required")
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}
