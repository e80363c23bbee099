// Package pipeline orchestrates statement processing: it fetches each
// uploaded file, dispatches it to the right bank parser, filters rows to the
// requested month, and resolves a category for every surviving transaction.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"expensetracker/backend/internal/domain"
	"expensetracker/backend/internal/statement"
)

// Request describes one statement-processing batch.
type Request struct {
	Month         int
	Year          int
	StatementType domain.StatementKind
	Files         []FileMetadata
}

// FileMetadata locates one uploaded statement file in blob storage.
type FileMetadata struct {
	StoragePath string `json:"storagePath"`
}

// FileError records a single file's failure. Siblings in the same batch are
// unaffected; there is no automatic retry.
type FileError struct {
	StoragePath string
	Err         error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.StoragePath, e.Err)
}

// Processor runs the ingestion pipeline for a batch of uploaded files.
type Processor struct {
	blobs    BlobStore
	resolver CategoryResolver
	log      zerolog.Logger
}

// NewProcessor creates a processor with the given collaborators.
func NewProcessor(blobs BlobStore, resolver CategoryResolver, log zerolog.Logger) *Processor {
	return &Processor{
		blobs:    blobs,
		resolver: resolver,
		log:      log,
	}
}

// Process parses every file in the request concurrently and returns the
// consolidated expense list in file order, then row order within each file.
// Per-file failures are collected and returned alongside the rows that did
// parse; an unsupported statement kind fails the whole request since there is
// no parser to dispatch to.
func (p *Processor) Process(ctx context.Context, req Request, userID string) ([]domain.ProcessedExpense, []FileError, error) {
	if req.Month < 1 || req.Month > 12 {
		return nil, nil, fmt.Errorf("month %d out of range", req.Month)
	}

	parser, err := statement.ParserFor(req.StatementType)
	if err != nil {
		return nil, nil, err
	}

	results := make([][]domain.ProcessedExpense, len(req.Files))
	errs := make([]error, len(req.Files))

	var wg sync.WaitGroup
	for i, file := range req.Files {
		wg.Add(1)
		go func(i int, file FileMetadata) {
			defer wg.Done()
			rows, err := p.processFile(ctx, parser, file, req, userID)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = rows
		}(i, file)
	}
	wg.Wait()

	var processed []domain.ProcessedExpense
	var failed []FileError
	for i, file := range req.Files {
		if errs[i] != nil {
			p.log.Warn().
				Err(errs[i]).
				Str("file", file.StoragePath).
				Str("statement_type", string(req.StatementType)).
				Msg("Statement file skipped")
			failed = append(failed, FileError{StoragePath: file.StoragePath, Err: errs[i]})
			continue
		}
		processed = append(processed, results[i]...)
	}

	return processed, failed, nil
}

// processFile runs one file through fetch, parse, period filter and category
// resolution.
func (p *Processor) processFile(
	ctx context.Context,
	parser statement.Parser,
	file FileMetadata,
	req Request,
	userID string,
) ([]domain.ProcessedExpense, error) {
	url, err := p.blobs.DownloadURL(ctx, file.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("resolve download URL: %w", err)
	}

	data, err := p.blobs.FetchBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch statement: %w", err)
	}

	rows, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	var out []domain.ProcessedExpense
	for _, row := range rows {
		// Statements span multiple months; keep only the requested period.
		if row.TxnDate.Month != time.Month(req.Month) || row.TxnDate.Year != req.Year {
			continue
		}

		record, comment := statement.DeriveRecord(req.StatementType, row.Description)

		label, err := p.resolver.Resolve(ctx, userID, comment, record)
		if err != nil {
			return nil, err
		}

		out = append(out, domain.ProcessedExpense{
			Date:            row.TxnDate,
			Category:        label,
			Amount:          row.DebitAmount,
			StatementRecord: record,
			StatementType:   req.StatementType,
		})
	}

	return out, nil
}
