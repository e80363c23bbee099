// Package statement extracts normalized debit rows from bank statement
// spreadsheets. Each supported bank export format has its own parser variant;
// all of them locate the transaction header by keyword signature, resolve
// column positions by keyword search and emit rows with canonical dates and
// rounded amounts.
package statement

import (
	"expensetracker/backend/internal/domain"
)

// Parser extracts transaction rows from one bank's export format. Parsers are
// pure functions of the file content.
type Parser interface {
	Kind() domain.StatementKind
	Parse(data []byte) ([]domain.StatementRow, error)
}

// ParserFor returns the parser registered for the given statement kind.
// Declared kinds without an implementation fail with UnsupportedKindError.
func ParserFor(kind domain.StatementKind) (Parser, error) {
	switch kind {
	case domain.HDFCDebit:
		return hdfcDebitParser{}, nil
	case domain.HDFCCredit:
		return hdfcCreditParser{}, nil
	case domain.SBIDebit:
		return sbiDebitParser{}, nil
	}
	return nil, &UnsupportedKindError{Kind: kind}
}
