package expense

import (
	"context"
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/pipeline"
	"expensetracker/backend/internal/statement"
)

type mockProcessor struct {
	rows   []domain.ProcessedExpense
	failed []pipeline.FileError
	err    error
}

func (m *mockProcessor) Process(ctx context.Context, req pipeline.Request, userID string) ([]domain.ProcessedExpense, []pipeline.FileError, error) {
	return m.rows, m.failed, m.err
}

type mockExpenseStore struct {
	found []domain.Expense

	deletedFrom time.Time
	deletedTo   time.Time
	inserted    []domain.Expense
}

func (m *mockExpenseStore) DeleteRange(ctx context.Context, userID string, from, to time.Time) error {
	m.deletedFrom, m.deletedTo = from, to
	return nil
}

func (m *mockExpenseStore) Insert(ctx context.Context, expenses []domain.Expense) error {
	m.inserted = append(m.inserted, expenses...)
	return nil
}

func (m *mockExpenseStore) FindRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Expense, error) {
	return m.found, nil
}

type mockCategoryStore struct {
	categories []domain.Category
	replaced   []domain.Category
}

func (m *mockCategoryStore) FindCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryStore) ReplaceCategories(ctx context.Context, userID string, categories []domain.Category) error {
	m.replaced = categories
	return nil
}

type mockHistoryStore struct {
	entries  []domain.ExpenseHistory
	upserted []domain.ExpenseHistory
}

func (m *mockHistoryStore) List(ctx context.Context, userID string) ([]domain.ExpenseHistory, error) {
	return m.entries, nil
}

func (m *mockHistoryStore) Upsert(ctx context.Context, entry domain.ExpenseHistory) error {
	m.upserted = append(m.upserted, entry)
	return nil
}

func newService(p Processor, e *mockExpenseStore, c *mockCategoryStore, h *mockHistoryStore) *Service {
	return NewService(p, e, c, h, zerolog.Nop())
}

func TestService_Process_UnsupportedKind(t *testing.T) {
	proc := &mockProcessor{err: &statement.UnsupportedKindError{Kind: domain.CUBDebit}}
	s := newService(proc, &mockExpenseStore{}, &mockCategoryStore{}, &mockHistoryStore{})

	resp := s.Process(context.Background(), "user-1", pipeline.Request{StatementType: domain.CUBDebit})

	if resp.Error == nil || resp.Error.Message != "Unsupported Bank Statement" {
		t.Fatalf("error = %+v, want Unsupported Bank Statement", resp.Error)
	}
	if resp.ProcessedData == nil || len(resp.ProcessedData) != 0 {
		t.Errorf("ProcessedData = %v, want empty non-nil slice", resp.ProcessedData)
	}
}

func TestService_Process_PartialFailure(t *testing.T) {
	proc := &mockProcessor{
		rows: []domain.ProcessedExpense{
			{Category: "Food", Amount: 250, StatementRecord: "UPI->JOHN"},
		},
		failed: []pipeline.FileError{
			{StoragePath: "statements/bad.xlsx", Err: statement.ErrHeaderNotFound},
		},
	}
	s := newService(proc, &mockExpenseStore{}, &mockCategoryStore{}, &mockHistoryStore{})

	resp := s.Process(context.Background(), "user-1", pipeline.Request{StatementType: domain.HDFCDebit})

	if len(resp.ProcessedData) != 1 {
		t.Errorf("ProcessedData len = %d, want 1", len(resp.ProcessedData))
	}
	if resp.Error == nil {
		t.Fatal("expected error payload for the failed file")
	}
	if !reflect.DeepEqual(resp.Error.Files, []string{"statements/bad.xlsx"}) {
		t.Errorf("Files = %v", resp.Error.Files)
	}
}

func TestService_Process_EmptyResultIsNonNil(t *testing.T) {
	s := newService(&mockProcessor{}, &mockExpenseStore{}, &mockCategoryStore{}, &mockHistoryStore{})

	resp := s.Process(context.Background(), "user-1", pipeline.Request{StatementType: domain.HDFCDebit})

	if resp.ProcessedData == nil {
		t.Error("ProcessedData is nil, want empty slice")
	}
	if resp.Error != nil {
		t.Errorf("unexpected error payload: %+v", resp.Error)
	}
}

func TestService_Save(t *testing.T) {
	expenses := &mockExpenseStore{}
	history := &mockHistoryStore{}
	s := newService(&mockProcessor{}, expenses, &mockCategoryStore{}, history)

	err := s.Save(context.Background(), "user-1", SaveRequest{
		Month: 3,
		Year:  2024,
		Expenses: []ExpenseInput{
			{
				Date:            civil.Date{Year: 2024, Month: time.March, Day: 1},
				Category:        "Food",
				Amount:          250.004,
				StatementRecord: "UPI->JOHN",
				StatementType:   "HDFC_Debit",
			},
			{
				// Defaults: category Unknown, statement type Manual.
				Date:   civil.Date{Year: 2024, Month: time.March, Day: 15},
				Amount: 99.99,
			},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantFrom := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !expenses.deletedFrom.Equal(wantFrom) {
		t.Errorf("deleted from %v, want %v", expenses.deletedFrom, wantFrom)
	}
	if got := expenses.deletedTo; got.Month() != time.March || got.Day() != 31 {
		t.Errorf("deleted to %v, want end of March", got)
	}

	if len(expenses.inserted) != 2 {
		t.Fatalf("inserted %d rows, want 2", len(expenses.inserted))
	}
	if expenses.inserted[0].Amount != 250 {
		t.Errorf("amount = %v, want 250", expenses.inserted[0].Amount)
	}
	if expenses.inserted[1].Category != "Unknown" || expenses.inserted[1].StatementType != "Manual" {
		t.Errorf("defaults not applied: %+v", expenses.inserted[1])
	}

	// Only the categorized row with a statement record reaches the history.
	want := []domain.ExpenseHistory{
		{
			UserID:          "user-1",
			StatementRecord: "UPI->JOHN",
			Category:        []string{"Food"},
			StatementType:   "HDFC_Debit",
		},
	}
	if !reflect.DeepEqual(history.upserted, want) {
		t.Errorf("history = %+v, want %+v", history.upserted, want)
	}
}

func TestService_Save_RejectsRowsOutsideWindow(t *testing.T) {
	s := newService(&mockProcessor{}, &mockExpenseStore{}, &mockCategoryStore{}, &mockHistoryStore{})

	err := s.Save(context.Background(), "user-1", SaveRequest{
		Month: 3,
		Year:  2024,
		Expenses: []ExpenseInput{
			{Date: civil.Date{Year: 2024, Month: time.March, Day: 1}, Amount: 10},
			{Date: civil.Date{Year: 2024, Month: time.April, Day: 1}, Amount: 10},
		},
	})
	if err == nil || err.Error() != "invalid data in row 2" {
		t.Fatalf("err = %v, want invalid data in row 2", err)
	}
}

func TestService_Save_RejectsBadMonth(t *testing.T) {
	s := newService(&mockProcessor{}, &mockExpenseStore{}, &mockCategoryStore{}, &mockHistoryStore{})

	for _, month := range []int{0, 13} {
		if err := s.Save(context.Background(), "user-1", SaveRequest{Month: month, Year: 2024}); err == nil {
			t.Errorf("Save with month %d succeeded, want error", month)
		}
	}
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(2024, time.February)

	if want := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}
	// 2024 is a leap year.
	if to.Day() != 29 || to.Month() != time.February {
		t.Errorf("to = %v, want end of Feb 29", to)
	}
	if !to.Before(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v overlaps March", to)
	}
}

func TestService_MonthlyPivot(t *testing.T) {
	march := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	expenses := &mockExpenseStore{found: []domain.Expense{
		{Category: "Food", Amount: 10.004, Date: march},
		{Category: "Food", Amount: 10.004, Date: march},
		{Category: "Dropped", Amount: 500, Date: march},
	}}
	categories := &mockCategoryStore{categories: []domain.Category{
		{Category: "Food"},
		{Category: "Rent"},
	}}
	s := newService(&mockProcessor{}, expenses, categories, &mockHistoryStore{})

	rows, err := s.MonthlyPivot(context.Background(), "user-1", time.March, 2024)
	if err != nil {
		t.Fatalf("MonthlyPivot: %v", err)
	}

	// Per-row rounding happens before accumulation, so 10.004 + 10.004
	// contributes 20.00, not 20.01.
	want := []PivotRow{
		{Category: "Food", Amount: 20},
		{Category: "Rent", Amount: 0},
		{Category: "Total", Amount: 20},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestService_MonthlyConsolidatedPivot(t *testing.T) {
	expenses := &mockExpenseStore{found: []domain.Expense{
		{Category: "Food", Amount: 100, Date: time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)},
		{Category: "Food", Amount: 50, Date: time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)},
		{Category: "Rent", Amount: 900, Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}}
	categories := &mockCategoryStore{categories: []domain.Category{
		{Category: "Food"},
		{Category: "Rent"},
	}}
	s := newService(&mockProcessor{}, expenses, categories, &mockHistoryStore{})

	rows, err := s.MonthlyConsolidatedPivot(context.Background(), "user-1", 2024)
	if err != nil {
		t.Fatalf("MonthlyConsolidatedPivot: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 2 categories + total", len(rows))
	}
	food := rows[0]
	if food.Category != "Food" || food.Months["January"] != 100 || food.Months["March"] != 50 || food.Total != 150 {
		t.Errorf("food row = %+v", food)
	}
	total := rows[2]
	if total.Category != "Total" || total.Months["March"] != 950 || total.Total != 1050 {
		t.Errorf("total row = %+v", total)
	}
}

func TestService_SaveCategories_RejectsEmptyName(t *testing.T) {
	s := newService(&mockProcessor{}, &mockExpenseStore{}, &mockCategoryStore{}, &mockHistoryStore{})

	err := s.SaveCategories(context.Background(), "user-1", []domain.Category{
		{Category: "Food"},
		{Category: ""},
	})
	if err == nil || err.Error() != "invalid data in row 2" {
		t.Fatalf("err = %v, want invalid data in row 2", err)
	}
}
