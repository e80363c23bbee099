package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/statement"
)

// mockBlobStore serves workbook bytes keyed by object path. Download URLs are
// synthetic so the test can assert FetchBytes receives what DownloadURL
// returned.
type mockBlobStore struct {
	objects map[string][]byte
}

func (m *mockBlobStore) DownloadURL(ctx context.Context, objectPath string) (string, error) {
	if _, ok := m.objects[objectPath]; !ok {
		return "", fmt.Errorf("object %q not found", objectPath)
	}
	return "signed://" + objectPath, nil
}

func (m *mockBlobStore) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	path, ok := strings.CutPrefix(url, "signed://")
	if !ok {
		return nil, fmt.Errorf("unexpected url %q", url)
	}
	return m.objects[path], nil
}

type mockResolver struct {
	labels map[string]string
	err    error
}

func (m *mockResolver) Resolve(ctx context.Context, userID, comment, statementRecord string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if label, ok := m.labels[comment]; ok {
		return label, nil
	}
	return "Unknown", nil
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name for row %d: %v", i, err)
		}
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func hdfcDebitWorkbook(t *testing.T) []byte {
	return buildWorkbook(t, [][]interface{}{
		{"HDFC BANK Ltd."},
		{"Date", "Narration", "Chq/Ref No.", "Value Dt", "Withdrawal Amt", "Deposit Amt", "Closing Balance"},
		{"01/03/2024", "UPI-JOHN-john@bank-REF123-LUNCH", "", "01/03/2024", "250.00", "", "1000.00"},
		{"15/02/2024", "UPI-EARLIER-x@bank-REF9-COFFEE", "", "15/02/2024", "80.00", "", "1250.00"},
		{"02/03/2024", "NEFT-ACME CORP-SALARY", "", "02/03/2024", "", "50000.00", "51000.00"},
	})
}

func TestProcessor_Process(t *testing.T) {
	blobs := &mockBlobStore{objects: map[string][]byte{
		"statements/march.xlsx": hdfcDebitWorkbook(t),
	}}
	resolver := &mockResolver{labels: map[string]string{"LUNCH": "Food"}}
	p := NewProcessor(blobs, resolver, zerolog.Nop())

	got, failed, err := p.Process(context.Background(), Request{
		Month:         3,
		Year:          2024,
		StatementType: domain.HDFCDebit,
		Files:         []FileMetadata{{StoragePath: "statements/march.xlsx"}},
	}, "user-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("unexpected file errors: %v", failed)
	}

	want := []domain.ProcessedExpense{
		{
			Date:            civil.Date{Year: 2024, Month: time.March, Day: 1},
			Category:        "Food",
			Amount:          250,
			StatementRecord: "UPI->JOHN->john@bank",
			StatementType:   domain.HDFCDebit,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process = %+v, want %+v", got, want)
	}
}

func TestProcessor_Process_FileFailureIsIsolated(t *testing.T) {
	blobs := &mockBlobStore{objects: map[string][]byte{
		"statements/good.xlsx": hdfcDebitWorkbook(t),
		"statements/bad.xlsx": buildWorkbook(t, [][]interface{}{
			{"Some unrelated export"},
			{"Col A", "Col B"},
		}),
	}}
	p := NewProcessor(blobs, &mockResolver{}, zerolog.Nop())

	got, failed, err := p.Process(context.Background(), Request{
		Month:         3,
		Year:          2024,
		StatementType: domain.HDFCDebit,
		Files: []FileMetadata{
			{StoragePath: "statements/bad.xlsx"},
			{StoragePath: "statements/good.xlsx"},
		},
	}, "user-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 expense from the good file, got %d", len(got))
	}
	if len(failed) != 1 {
		t.Fatalf("expected 1 file error, got %d", len(failed))
	}
	if failed[0].StoragePath != "statements/bad.xlsx" {
		t.Errorf("failed file = %q", failed[0].StoragePath)
	}
	if !errors.Is(failed[0].Err, statement.ErrHeaderNotFound) {
		t.Errorf("file error = %v, want ErrHeaderNotFound", failed[0].Err)
	}
}

func TestProcessor_Process_UnsupportedKindFailsRequest(t *testing.T) {
	p := NewProcessor(&mockBlobStore{}, &mockResolver{}, zerolog.Nop())

	_, _, err := p.Process(context.Background(), Request{
		Month:         3,
		Year:          2024,
		StatementType: domain.CUBDebit,
		Files:         []FileMetadata{{StoragePath: "statements/cub.xlsx"}},
	}, "user-1")

	var unsupported *statement.UnsupportedKindError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want UnsupportedKindError", err)
	}
}

func TestProcessor_Process_MonthOutOfRange(t *testing.T) {
	p := NewProcessor(&mockBlobStore{}, &mockResolver{}, zerolog.Nop())

	for _, month := range []int{0, 13, -1} {
		_, _, err := p.Process(context.Background(), Request{
			Month:         month,
			Year:          2024,
			StatementType: domain.HDFCDebit,
		}, "user-1")
		if err == nil {
			t.Errorf("Process with month %d succeeded, want error", month)
		}
	}
}
