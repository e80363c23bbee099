// Command parse-statement parses one bank statement spreadsheet locally and
// prints the extracted rows. Debugging aid for new statement layouts.
package main

import (
	"flag"
	"fmt"
	"os"

	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/logger"
	"expensetracker/backend/internal/statement"
)

func main() {
	var (
		file = flag.String("file", "", "Path to the statement spreadsheet (required)")
		kind = flag.String("kind", string(domain.HDFCDebit), "Statement kind: HDFC_Debit, HDFC_Credit or SBI_Debit")
	)
	flag.Parse()

	log := logger.New()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*file, domain.StatementKind(*kind)); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to parse statement")
	}
}

func run(path string, kind domain.StatementKind) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	parser, err := statement.ParserFor(kind)
	if err != nil {
		return err
	}

	rows, err := parser.Parse(data)
	if err != nil {
		return err
	}

	for _, row := range rows {
		record, comment := statement.DeriveRecord(kind, row.Description)
		fmt.Printf("%s\t%10.2f\t%-40s\t%s\n", row.TxnDate, row.DebitAmount, record, comment)
	}
	fmt.Printf("%d debit rows\n", len(rows))
	return nil
}
