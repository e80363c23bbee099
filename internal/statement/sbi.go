package statement

import (
	"fmt"
	"strings"

	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/money"
)

// sbiDebitParser handles SBI savings account exports. Sample layout:
// Txn Date | Value Date | Description | Ref No./Cheque No. | Debit | Credit | Balance
type sbiDebitParser struct{}

func (sbiDebitParser) Kind() domain.StatementKind { return domain.SBIDebit }

func (sbiDebitParser) Parse(data []byte) ([]domain.StatementRow, error) {
	rows, err := ReadGrid(data)
	if err != nil {
		return nil, fmt.Errorf("SBI debit: %w", err)
	}

	headerIdx := findHeader(rows, func(txt string) bool {
		return strings.Contains(txt, "txn") &&
			strings.Contains(txt, "value") &&
			(strings.Contains(txt, "debit") || strings.Contains(txt, "withdraw"))
	})
	if headerIdx < 0 {
		return nil, fmt.Errorf("SBI debit: %w", ErrHeaderNotFound)
	}

	header := rows[headerIdx]
	dateCol := findColumn(header, "txn date", "txn")
	descCol := findColumn(header, "description", "narration")
	debitCol := findColumn(header, "debit", "withdraw")
	if dateCol < 0 || descCol < 0 || debitCol < 0 {
		return nil, fmt.Errorf("SBI debit: %w", ErrHeaderNotFound)
	}

	var results []domain.StatementRow
	for _, row := range rows[headerIdx+1:] {
		dateRaw := strings.TrimSpace(cell(row, dateCol))
		if dateRaw == "" {
			// The ledger ends where the date column goes blank.
			break
		}

		// SBI mixes dd/mm/yy, dd-Mon-yy and raw date serials across exports.
		txnDate := ParseDate(dateRaw, DateAuto)
		if !txnDate.IsValid() {
			continue
		}

		description := strings.TrimSpace(cell(row, descCol))

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
