// Package domain defines the core types shared across the expense pipeline:
// statement kinds, parsed statement rows, processed expenses and the
// persisted category/history documents.
package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// StatementKind identifies the source document format (bank × account type).
type StatementKind string

const (
	HDFCDebit   StatementKind = "HDFC_Debit"
	HDFCCredit  StatementKind = "HDFC_Credit"
	SBIDebit    StatementKind = "SBI_Debit"
	SBICredit   StatementKind = "SBI_Credit"
	CUBDebit    StatementKind = "CUB_Debit"
	KindUnknown StatementKind = "unknown"
)

// StatementRow is one normalized debit row extracted by a bank parser.
// DebitAmount is rounded to two decimal places at parse time; rows without a
// positive debit amount are dropped by the parsers (credits are not expenses).
type StatementRow struct {
	TxnDate     civil.Date
	Description string
	DebitAmount float64
}

// ProcessedExpense is one transaction after period filtering and category
// resolution, ready to be shown to the user and saved.
type ProcessedExpense struct {
	Date            civil.Date    `json:"date"`
	Category        string        `json:"category"`
	Amount          float64       `json:"amount"`
	StatementRecord string        `json:"statementRecord"`
	StatementType   StatementKind `json:"statementType"`
}

// Expense is the persisted form of a saved transaction.
type Expense struct {
	UserID          string    `bson:"userId" json:"userId"`
	Date            time.Time `bson:"date" json:"date"`
	Category        string    `bson:"category" json:"category"`
	Amount          float64   `bson:"amount" json:"amount"`
	StatementRecord string    `bson:"statementRecord" json:"statementRecord"`
	StatementType   string    `bson:"statementType" json:"statementType"`
}

// Category is a user-defined spending category with its matching keywords.
// Unique per (userId, category).
type Category struct {
	UserID   string   `bson:"userId" json:"-"`
	Category string   `bson:"category" json:"category"`
	Keywords []string `bson:"keywords" json:"keywords"`
}

// ExpenseHistory memoizes how a statement record was categorized. Unique per
// (userId, statementRecord); the category set grows monotonically as the user
// recategorizes.
type ExpenseHistory struct {
	UserID          string   `bson:"userId" json:"-"`
	StatementRecord string   `bson:"statementRecord" json:"statementRecord"`
	Category        []string `bson:"category" json:"category"`
	StatementType   string   `bson:"statementType,omitempty" json:"statementType,omitempty"`
}
