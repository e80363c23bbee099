package statement

import (
	"strings"

	"expensetracker/backend/internal/domain"
)

// DeriveRecord splits a transaction description into the statement record
// used as the historical matching key and the free-text comment fed to
// keyword matching. Descriptions are delimiter-structured per bank
// (transfer-type prefix, counterparty, bank code, reference number, comment);
// the reference number is unique per transaction and useless as a key, so it
// is dropped along with the trailing comment. Descriptions that don't match
// the delimited-transfer shape serve as both record and comment unchanged.
func DeriveRecord(kind domain.StatementKind, description string) (record, comment string) {
	switch kind {
	case domain.HDFCDebit:
		// IMPS-506823333166-P AJAY-SBIN-XXXXXXX1725-MARCH EXPENSE
		// UPI-MALARVIZHI B-MALARVIZHI2705@OKICICI-SBIN0010412-107228132454-HAIHELLO
		parts := strings.Split(description, "-")
		if len(parts) > 1 {
			comment = parts[len(parts)-1]
			rest := parts[:len(parts)-1]
			if len(rest) > 1 {
				// Second-to-last token is the reference number.
				rest = rest[:len(rest)-1]
			}
			return strings.Join(rest, "->"), comment
		}

	case domain.SBIDebit:
		// TO TRANSFER-UPI/DR/107228132454/MALARVIZHI/SBIN/paytm-6843@ptys/Sent
		parts := strings.Split(strings.Trim(description, "-"), "/")
		if len(parts) > 1 && strings.HasPrefix(parts[0], "TO") {
			comment = parts[len(parts)-1]
			if len(parts) > 4 {
				// Tokens before index 3 are the transfer-type prefix and
				// reference number.
				return strings.Join(parts[3:len(parts)-1], "->"), comment
			}
			return comment, comment
		}
	}

	return description, description
}
