// Package service orchestrates the ingestion pipeline: extract text,
// classify the document, parse it with the matching format parser, and
// persist the outcome. Every failure branch ends in a persisted statement
// so operational tooling can see what happened to each document.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/classifier"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/extractor"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/parsers"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/repository"
)

// rawTextLimit bounds the extraction-text excerpt stored on each
// transaction.
const rawTextLimit = 5000

// errUnknownType is the message recorded when classification fails.
const errUnknownType = "Unknown document type"

// TextExtractor is the extraction dependency; the production implementation
// is extractor.Extractor.
type TextExtractor interface {
	Extract(path string) (*extractor.Result, error)
}

// Service runs documents through the ingestion pipeline.
type Service struct {
	repo      repository.IngestRepository
	extractor TextExtractor
	registry  *parsers.Registry
	logger    *slog.Logger
}

// New creates the ingestion service.
func New(repo repository.IngestRepository, ex TextExtractor, registry *parsers.Registry, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		extractor: ex,
		registry:  registry,
		logger:    logger,
	}
}

// IngestFile runs one document through the full pipeline and persists the
// outcome. Pipeline failures (extraction, classification, parsing) are
// recorded on the statement and do not return an error; only persistence
// failures propagate to the caller.
func (s *Service) IngestFile(ctx context.Context, path string) (*repository.Statement, error) {
	stmt := &repository.Statement{
		ID:       uuid.New(),
		FileName: filepath.Base(path),
		FilePath: path,
	}
	return s.run(ctx, stmt)
}

// Reprocess re-runs the pipeline against an already-ingested statement's
// stored file, replacing its transaction set in place. Running it twice
// with unchanged inputs yields the same transactions both times.
func (s *Service) Reprocess(ctx context.Context, statementID uuid.UUID) (*repository.Statement, error) {
	stmt, err := s.repo.GetStatement(ctx, statementID)
	if err != nil {
		return nil, fmt.Errorf("load statement: %w", err)
	}

	// Reset the outcome fields; the pipeline fills them again.
	stmt.StatementDate = nil
	stmt.SourceType = nil
	stmt.ErrorMessage = nil

	return s.run(ctx, stmt)
}

// run executes extract -> classify -> parse -> persist for one statement.
// The statement and its replacement transaction set are written in a single
// repository transaction.
func (s *Service) run(ctx context.Context, stmt *repository.Statement) (*repository.Statement, error) {
	extracted, err := s.extractor.Extract(stmt.FilePath)
	if err != nil {
		s.logger.Error("extraction failed",
			slog.String("file", stmt.FileName),
			slog.Any("error", err),
		)
		return s.saveError(ctx, stmt, fmt.Sprintf("extraction failed: %v", err))
	}

	docType := classifier.Classify(extracted.Text, stmt.FileName)
	if docType == parsers.TypeUnknown {
		s.logger.Warn("unclassifiable document", slog.String("file", stmt.FileName))
		return s.saveError(ctx, stmt, errUnknownType)
	}

	source := string(docType)
	stmt.SourceType = &source

	parser, err := s.registry.Get(docType)
	if err != nil {
		// Registry validation at startup makes this unreachable in
		// practice, but record it like any other pipeline failure.
		return s.saveError(ctx, stmt, err.Error())
	}

	parsed, err := parser.Parse(extracted.Text)
	if err != nil {
		s.logger.Warn("parse failed",
			slog.String("file", stmt.FileName),
			slog.String("source", source),
			slog.Any("error", err),
		)
		return s.saveError(ctx, stmt, err.Error())
	}

	if parsed.StatementDate != "" {
		stmt.StatementDate = &parsed.StatementDate
	}
	stmt.Status = repository.StatusProcessed
	stmt.ErrorMessage = nil

	rawText := truncate(extracted.Text, rawTextLimit)
	txs := make([]*repository.Transaction, 0, len(parsed.Transactions))
	for _, tx := range parsed.Transactions {
		txs = append(txs, toRepoTransaction(tx, source, rawText))
	}

	if err := s.repo.SaveResult(ctx, stmt, txs); err != nil {
		recordDocument(repository.StatusError, source)
		return nil, fmt.Errorf("persist statement: %w", err)
	}

	recordDocument(repository.StatusProcessed, source)
	recordTransactions(len(txs))

	s.logger.Info("document ingested",
		slog.String("file", stmt.FileName),
		slog.String("source", source),
		slog.String("method", string(extracted.Method)),
		slog.Int("transactions", len(txs)),
	)
	return stmt, nil
}

// saveError persists the statement in error state with no transactions.
func (s *Service) saveError(ctx context.Context, stmt *repository.Statement, message string) (*repository.Statement, error) {
	stmt.Status = repository.StatusError
	stmt.ErrorMessage = &message

	if err := s.repo.SaveResult(ctx, stmt, nil); err != nil {
		return nil, fmt.Errorf("persist error statement: %w", err)
	}

	source := ""
	if stmt.SourceType != nil {
		source = *stmt.SourceType
	}
	recordDocument(repository.StatusError, source)
	return stmt, nil
}

func toRepoTransaction(tx parsers.Transaction, source, rawText string) *repository.Transaction {
	out := &repository.Transaction{
		Date:                tx.Date,
		Description:         tx.Description,
		Amount:              tx.Amount,
		Principal:           tx.Principal,
		Interest:            tx.Interest,
		CapitalizedInterest: tx.CapitalizedInterest,
		LateFees:            tx.LateFees,
		Balance:             tx.Balance,
		Source:              source,
		RawText:             rawText,
		VerificationStatus:  repository.VerificationUnverified,
	}
	if tx.CheckNumber != "" {
		out.CheckNumber = &tx.CheckNumber
	}
	if tx.Comment != "" {
		out.Comment = &tx.Comment
	}
	return out
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
