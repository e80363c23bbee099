// Package expense implements the application service behind the HTTP API:
// statement processing, saving monthly data, pivot aggregation and the
// category/history passthroughs.
package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"expensetracker/backend/internal/category"
	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/money"
	"expensetracker/backend/internal/pipeline"
	"expensetracker/backend/internal/statement"
)

// Processor runs the statement ingestion pipeline.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request, userID string) ([]domain.ProcessedExpense, []pipeline.FileError, error)
}

// ExpenseStore persists saved expense rows.
type ExpenseStore interface {
	DeleteRange(ctx context.Context, userID string, from, to time.Time) error
	Insert(ctx context.Context, expenses []domain.Expense) error
	FindRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Expense, error)
}

// CategoryStore persists the per-user category taxonomy.
type CategoryStore interface {
	FindCategories(ctx context.Context, userID string) ([]domain.Category, error)
	ReplaceCategories(ctx context.Context, userID string, categories []domain.Category) error
}

// HistoryStore persists categorization history.
type HistoryStore interface {
	List(ctx context.Context, userID string) ([]domain.ExpenseHistory, error)
	Upsert(ctx context.Context, entry domain.ExpenseHistory) error
}

// Service wires the pipeline and the stores behind the HTTP handlers.
type Service struct {
	processor  Processor
	expenses   ExpenseStore
	categories CategoryStore
	history    HistoryStore
	log        zerolog.Logger
}

// NewService creates the application service.
func NewService(processor Processor, expenses ExpenseStore, categories CategoryStore, history HistoryStore, log zerolog.Logger) *Service {
	return &Service{
		processor:  processor,
		expenses:   expenses,
		categories: categories,
		history:    history,
		log:        log,
	}
}

// ErrorInfo is the error payload embedded in a processing response.
type ErrorInfo struct {
	Message string   `json:"message"`
	Files   []string `json:"files,omitempty"`
}

// ProcessResponse is the result of one statement-processing request.
// ProcessedData is never nil so clients always receive a JSON array.
type ProcessResponse struct {
	ProcessedData []domain.ProcessedExpense `json:"processedData"`
	Error         *ErrorInfo                `json:"error,omitempty"`
}

// Process runs the ingestion pipeline and folds failures into the response
// body. An unsupported statement kind fails the whole request; individual
// file failures are reported alongside the rows that did parse.
func (s *Service) Process(ctx context.Context, userID string, req pipeline.Request) ProcessResponse {
	processed, failed, err := s.processor.Process(ctx, req, userID)
	if err != nil {
		msg := "Failed to process statement"
		var unsupported *statement.UnsupportedKindError
		if errors.As(err, &unsupported) {
			msg = "Unsupported Bank Statement"
		}
		s.log.Error().Err(err).Str("statement_type", string(req.StatementType)).Msg("Statement processing failed")
		return ProcessResponse{
			ProcessedData: []domain.ProcessedExpense{},
			Error:         &ErrorInfo{Message: msg},
		}
	}

	resp := ProcessResponse{ProcessedData: processed}
	if resp.ProcessedData == nil {
		resp.ProcessedData = []domain.ProcessedExpense{}
	}
	if len(failed) > 0 {
		info := &ErrorInfo{Message: fmt.Sprintf("Failed to process %d file(s)", len(failed))}
		for _, f := range failed {
			info.Files = append(info.Files, f.StoragePath)
		}
		resp.Error = info
	}
	return resp
}

// ExpenseInput is one row of a save request.
type ExpenseInput struct {
	Date            civil.Date `json:"date"`
	Category        string     `json:"category"`
	Amount          float64    `json:"amount"`
	StatementRecord string     `json:"statementRecord"`
	StatementType   string     `json:"statementType"`
}

// SaveRequest replaces one month's expense data.
type SaveRequest struct {
	Month    int            `json:"month"`
	Year     int            `json:"year"`
	Expenses []ExpenseInput `json:"expenses"`
}

// Save replaces the (month, year) window with the given rows and records each
// categorization in the history. Re-saving the same month is safe: the window
// is deleted first and history upserts are set-unions.
func (s *Service) Save(ctx context.Context, userID string, req SaveRequest) error {
	if req.Month < 1 || req.Month > 12 {
		return fmt.Errorf("month %d out of range", req.Month)
	}
	if req.Year <= 0 {
		return fmt.Errorf("year %d out of range", req.Year)
	}

	from, to := MonthRange(req.Year, time.Month(req.Month))

	rows := make([]domain.Expense, 0, len(req.Expenses))
	for i, in := range req.Expenses {
		if in.Category == "" {
			in.Category = category.Unknown
		}
		if in.StatementType == "" {
			in.StatementType = "Manual"
		}
		if !in.Date.IsValid() || in.Amount <= 0 {
			return fmt.Errorf("invalid data in row %d", i+1)
		}
		date := in.Date.In(time.UTC)
		if date.Before(from) || date.After(to) {
			return fmt.Errorf("invalid data in row %d", i+1)
		}

		rows = append(rows, domain.Expense{
			UserID:          userID,
			Date:            date,
			Category:        in.Category,
			Amount:          money.Round2(in.Amount),
			StatementRecord: in.StatementRecord,
			StatementType:   in.StatementType,
		})
	}

	if err := s.expenses.DeleteRange(ctx, userID, from, to); err != nil {
		return err
	}
	if err := s.expenses.Insert(ctx, rows); err != nil {
		return err
	}

	for _, row := range rows {
		if row.StatementRecord == "" || row.Category == category.Unknown {
			continue
		}
		err := s.history.Upsert(ctx, domain.ExpenseHistory{
			UserID:          userID,
			StatementRecord: row.StatementRecord,
			Category:        []string{row.Category},
			StatementType:   row.StatementType,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// MonthRange returns the inclusive UTC bounds of one calendar month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to
}

// PivotRow is one line of a pivot: a category and its summed amount.
type PivotRow struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// MonthlyPivot sums the user's expenses per category for one month. Every
// taxonomy category appears, zero-filled, followed by a "Total" row.
func (s *Service) MonthlyPivot(ctx context.Context, userID string, month time.Month, year int) ([]PivotRow, error) {
	from, to := MonthRange(year, month)
	return s.pivot(ctx, userID, from, to)
}

// YearlyPivot is MonthlyPivot over a whole calendar year.
func (s *Service) YearlyPivot(ctx context.Context, userID string, year int) ([]PivotRow, error) {
	from, _ := MonthRange(year, time.January)
	_, to := MonthRange(year, time.December)
	return s.pivot(ctx, userID, from, to)
}

func (s *Service) pivot(ctx context.Context, userID string, from, to time.Time) ([]PivotRow, error) {
	categories, err := s.categories.FindCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.FindRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(categories))
	for _, c := range categories {
		totals[c.Category] = 0
	}
	for _, e := range expenses {
		// Categories outside the taxonomy are dropped from pivots.
		if _, ok := totals[e.Category]; !ok {
			continue
		}
		totals[e.Category] = money.Round2(totals[e.Category] + money.Round2(e.Amount))
	}

	rows := make([]PivotRow, 0, len(categories)+1)
	var grand float64
	for _, c := range categories {
		amount := totals[c.Category]
		rows = append(rows, PivotRow{Category: c.Category, Amount: amount})
		grand = money.Round2(grand + amount)
	}
	rows = append(rows, PivotRow{Category: "Total", Amount: grand})
	return rows, nil
}

// ConsolidatedRow is one category's amounts across the twelve months of a
// year, keyed by month name.
type ConsolidatedRow struct {
	Category string             `json:"category"`
	Months   map[string]float64 `json:"months"`
	Total    float64            `json:"total"`
}

// MonthlyConsolidatedPivot builds the 12-months-by-categories matrix for one
// year, ending with a "Total" row of per-month sums.
func (s *Service) MonthlyConsolidatedPivot(ctx context.Context, userID string, year int) ([]ConsolidatedRow, error) {
	categories, err := s.categories.FindCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	from, _ := MonthRange(year, time.January)
	_, to := MonthRange(year, time.December)
	expenses, err := s.expenses.FindRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	known := make(map[string]map[string]float64, len(categories))
	for _, c := range categories {
		months := make(map[string]float64, 12)
		for m := time.January; m <= time.December; m++ {
			months[m.String()] = 0
		}
		known[c.Category] = months
	}
	for _, e := range expenses {
		months, ok := known[e.Category]
		if !ok {
			continue
		}
		key := e.Date.UTC().Month().String()
		months[key] = money.Round2(months[key] + money.Round2(e.Amount))
	}

	rows := make([]ConsolidatedRow, 0, len(categories)+1)
	perMonth := make(map[string]float64, 12)
	for m := time.January; m <= time.December; m++ {
		perMonth[m.String()] = 0
	}
	for _, c := range categories {
		months := known[c.Category]
		var total float64
		for m := time.January; m <= time.December; m++ {
			key := m.String()
			total = money.Round2(total + months[key])
			perMonth[key] = money.Round2(perMonth[key] + months[key])
		}
		rows = append(rows, ConsolidatedRow{Category: c.Category, Months: months, Total: total})
	}

	var grand float64
	for m := time.January; m <= time.December; m++ {
		grand = money.Round2(grand + perMonth[m.String()])
	}
	rows = append(rows, ConsolidatedRow{Category: "Total", Months: perMonth, Total: grand})
	return rows, nil
}

// Categories lists the user's taxonomy.
func (s *Service) Categories(ctx context.Context, userID string) ([]domain.Category, error) {
	return s.categories.FindCategories(ctx, userID)
}

// SaveCategories replaces the user's taxonomy.
func (s *Service) SaveCategories(ctx context.Context, userID string, categories []domain.Category) error {
	for i, c := range categories {
		if c.Category == "" {
			return fmt.Errorf("invalid data in row %d", i+1)
		}
	}
	return s.categories.ReplaceCategories(ctx, userID, categories)
}

// History lists the user's categorization history.
func (s *Service) History(ctx context.Context, userID string) ([]domain.ExpenseHistory, error) {
	return s.history.List(ctx, userID)
}
