// Package repository is the persistence gateway for ingested statements and
// their transactions. The orchestrator talks to the IngestRepository
// interface; the pgx implementation lives in postgres.go.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Statement statuses.
const (
	StatusProcessed = "processed"
	StatusError     = "error"
)

// VerificationUnverified is the default verification state for every
// freshly-persisted transaction; a human flips it downstream.
const VerificationUnverified = "Unverified"

// ErrStatementNotFound indicates a lookup for a statement that does not
// exist.
var ErrStatementNotFound = errors.New("statement not found")

// Statement is one ingested document and its overall outcome. StatementDate
// is ISO YYYY-MM-DD; nil when the document carried none. SourceType is nil
// when classification failed.
type Statement struct {
	ID            uuid.UUID `json:"id"`
	FileName      string    `json:"file_name"`
	FilePath      string    `json:"file_path"`
	StatementDate *string   `json:"statement_date"`
	SourceType    *string   `json:"source_type"`
	Status        string    `json:"status"`
	ErrorMessage  *string   `json:"error_message"`
	DateProcessed time.Time `json:"date_processed"`
}

// Transaction is one persisted financial event owned by a statement.
// RawText holds a bounded excerpt of the extraction text the row came from.
type Transaction struct {
	ID                  uuid.UUID `json:"id"`
	StatementID         uuid.UUID `json:"statement_id"`
	Date                string    `json:"date"`
	Description         string    `json:"description"`
	CheckNumber         *string   `json:"check_number"`
	Amount              float64   `json:"amount"`
	Principal           float64   `json:"principal"`
	Interest            float64   `json:"interest"`
	CapitalizedInterest float64   `json:"capitalized_interest"`
	LateFees            float64   `json:"late_fees"`
	Balance             *float64  `json:"balance"`
	Comment             *string   `json:"comment"`
	Source              string    `json:"source"`
	RawText             string    `json:"raw_text,omitempty"`
	VerificationStatus  string    `json:"verification_status"`
}

// StatusCounts summarizes statements by outcome, for the health sweep.
type StatusCounts struct {
	Processed int64
	Errored   int64
}

// IngestRepository is the persistence gateway consumed by the orchestrator.
//
// SaveResult is the one write path for ingestion outcomes: it creates or
// updates the statement row and replaces its transaction set in a single
// database transaction, so an interrupted reprocess can never leave a
// statement stripped of its transactions.
type IngestRepository interface {
	SaveResult(ctx context.Context, stmt *Statement, txs []*Transaction) error

	CreateStatement(ctx context.Context, stmt *Statement) error
	UpdateStatement(ctx context.Context, stmt *Statement) error
	GetStatement(ctx context.Context, id uuid.UUID) (*Statement, error)
	ListStatements(ctx context.Context) ([]*Statement, error)

	DeleteTransactions(ctx context.Context, statementID uuid.UUID) error
	CreateTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, statementID uuid.UUID) ([]*Transaction, error)

	CountByStatus(ctx context.Context) (*StatusCounts, error)
}
