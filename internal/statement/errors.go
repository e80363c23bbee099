package statement

import (
	"errors"
	"fmt"

	"expensetracker/backend/internal/domain"
)

// ErrHeaderNotFound reports that no row in the uploaded spreadsheet matched
// the bank's expected column signature. Fatal for that file.
var ErrHeaderNotFound = errors.New("transaction header row not found")

// UnsupportedKindError reports a statement kind with no registered parser.
type UnsupportedKindError struct {
	Kind domain.StatementKind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported statement kind: %s", e.Kind)
}
