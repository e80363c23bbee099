package statement

import (
	"fmt"
	"strings"

	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/money"
)

// hdfcDebitParser handles HDFC savings account exports. Sample layout:
// Date | Narration | Chq/Ref No. | Value Dt | Withdrawal Amt | Deposit Amt | Closing Balance
type hdfcDebitParser struct{}

func (hdfcDebitParser) Kind() domain.StatementKind { return domain.HDFCDebit }

func (hdfcDebitParser) Parse(data []byte) ([]domain.StatementRow, error) {
	rows, err := ReadGrid(data)
	if err != nil {
		return nil, fmt.Errorf("HDFC debit: %w", err)
	}

	headerIdx := findHeader(rows, func(txt string) bool {
		return strings.Contains(txt, "narration") &&
			strings.Contains(txt, "withdraw") &&
			strings.Contains(txt, "deposit")
	})
	if headerIdx < 0 {
		return nil, fmt.Errorf("HDFC debit: %w", ErrHeaderNotFound)
	}

	header := rows[headerIdx]
	dateCol := findColumn(header, "date")
	narrationCol := findColumn(header, "narration")
	debitCol := findColumn(header, "withdraw")
	if dateCol < 0 || narrationCol < 0 || debitCol < 0 {
		return nil, fmt.Errorf("HDFC debit: %w", ErrHeaderNotFound)
	}

	var results []domain.StatementRow
	for _, row := range rows[headerIdx+1:] {
		dateRaw := strings.TrimSpace(cell(row, dateCol))
		if dateRaw == "" {
			// Free-text disclaimers follow the ledger.
			break
		}

		txnDate := ParseDate(dateRaw, DateDMYSlash)
		if !txnDate.IsValid() {
			continue
		}

		description := strings.TrimSpace(cell(row, narrationCol))

		// Credits land in the deposit column, leaving this one blank.
		amount, ok := ParseAmount(cell(row, debitCol))
		if !ok || amount == 0 {
			continue
		}

		results = append(results, domain.StatementRow{
			TxnDate:     txnDate,
			Description: description,
			DebitAmount: money.Round2(amount),
		})
	}

	return results, nil
}

// hdfcCreditParser handles HDFC credit card exports, which share one amount
// column with a debit/credit flag.
type hdfcCreditParser struct{}

func (hdfcCreditParser) Kind() domain.StatementKind { return domain.HDFCCredit }

func (hdfcCreditParser) Parse(data []byte) ([]domain.StatementRow, error) {
	rows, err := ReadGrid(data)
	if err != nil {
		return nil, fmt.Errorf("HDFC credit: %w", err)
	}

	headerIdx := findHeader(rows, func(txt string) bool {
		return strings.Contains(txt, "transaction type") &&
			strings.Contains(txt, "date") &&
			strings.Contains(txt, "description") &&
			strings.Contains(txt, "amt") &&
			strings.Contains(txt, "debit") &&
			strings.Contains(txt, "credit")
	})
	if headerIdx < 0 {
		return nil, fmt.Errorf("HDFC credit: %w", ErrHeaderNotFound)
	}

	header := rows[headerIdx]
	typeCol := findColumn(header, "transaction")
	dateCol := findColumn(header, "date")
	descCol := findColumn(header, "description")
	amountCol := findColumn(header, "amt")
	flagCol := findColumn(header, "debit")
	if typeCol < 0 || dateCol < 0 || descCol < 0 || amountCol < 0 || flagCol < 0 {
		return nil, fmt.Errorf("HDFC credit: %w", ErrHeaderNotFound)
	}

	var results []domain.StatementRow
	for _, row := range rows[headerIdx+1:] {
		// A blank transaction type marks the start of summary/footer rows.
		if strings.TrimSpace(cell(row, typeCol)) == "" {
			break
		}

		// Only debit rows are expenses.
		flag := strings.ToLower(strings.TrimSpace(cell(row, flagCol)))
		if flag == "cr" || flag == "credit" {
			continue
		}

		// The date cell may carry a time suffix.
		datePart, _, _ := strings.Cut(strings.TrimSpace(cell(row, dateCol)), " ")
		txnDate := ParseDate(datePart, DateDMYSlash)
		if !txnDate.IsValid() {
			continue
		}

		description := strings.TrimSpace(cell(row, descCol))

		amount, ok := ParseAmount(cell(row, amountCol))
		if !ok || amount == 0 {
			continue
		}

		results = append(results, domain.StatementRow{
			TxnDate:     txnDate,
			Description: description,
			DebitAmount: money.Round2(amount),
		})
	}

	return results, nil
}
