package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresIngestRepository implements IngestRepository using PostgreSQL.
type PostgresIngestRepository struct {
	pool PgxPool
}

// NewPostgresIngestRepository creates a new PostgreSQL ingest repository.
func NewPostgresIngestRepository(pool PgxPool) *PostgresIngestRepository {
	return &PostgresIngestRepository{pool: pool}
}

const statementColumns = `id, file_name, file_path, statement_date, source_type, status, error_message, date_processed`

// SaveResult upserts the statement and replaces its transaction set inside
// one database transaction.
func (r *PostgresIngestRepository) SaveResult(ctx context.Context, stmt *Statement, txs []*Transaction) error {
	if stmt.ID == uuid.Nil {
		stmt.ID = uuid.New()
	}
	stmt.DateProcessed = time.Now().UTC()

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback(ctx)

	query := `
		INSERT INTO statements (id, file_name, file_path, statement_date, source_type, status, error_message, date_processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			file_path = EXCLUDED.file_path,
			statement_date = EXCLUDED.statement_date,
			source_type = EXCLUDED.source_type,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			date_processed = EXCLUDED.date_processed`

	if _, err := dbTx.Exec(ctx, query,
		stmt.ID, stmt.FileName, stmt.FilePath, stmt.StatementDate,
		stmt.SourceType, stmt.Status, stmt.ErrorMessage, stmt.DateProcessed,
	); err != nil {
		return fmt.Errorf("upsert statement: %w", err)
	}

	if _, err := dbTx.Exec(ctx, `DELETE FROM transactions WHERE statement_id = $1`, stmt.ID); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}

	insert := `
		INSERT INTO transactions (id, statement_id, date, description, check_number, amount, principal, interest, capitalized_interest, late_fees, balance, comment, source, raw_text, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	for _, tx := range txs {
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}
		tx.StatementID = stmt.ID
		if tx.VerificationStatus == "" {
			tx.VerificationStatus = VerificationUnverified
		}
		if _, err := dbTx.Exec(ctx, insert,
			tx.ID, tx.StatementID, tx.Date, tx.Description, tx.CheckNumber,
			tx.Amount, tx.Principal, tx.Interest, tx.CapitalizedInterest,
			tx.LateFees, tx.Balance, tx.Comment, tx.Source, tx.RawText,
			tx.VerificationStatus,
		); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CreateStatement inserts a new statement row.
func (r *PostgresIngestRepository) CreateStatement(ctx context.Context, stmt *Statement) error {
	if stmt.ID == uuid.Nil {
		stmt.ID = uuid.New()
	}
	if stmt.DateProcessed.IsZero() {
		stmt.DateProcessed = time.Now().UTC()
	}

	query := `
		INSERT INTO statements (` + statementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.pool.Exec(ctx, query,
		stmt.ID, stmt.FileName, stmt.FilePath, stmt.StatementDate,
		stmt.SourceType, stmt.Status, stmt.ErrorMessage, stmt.DateProcessed,
	); err != nil {
		return fmt.Errorf("create statement: %w", err)
	}
	return nil
}

// UpdateStatement rewrites the mutable columns of an existing statement.
func (r *PostgresIngestRepository) UpdateStatement(ctx context.Context, stmt *Statement) error {
	query := `
		UPDATE statements
		SET statement_date = $2, source_type = $3, status = $4, error_message = $5, date_processed = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		stmt.ID, stmt.StatementDate, stmt.SourceType, stmt.Status,
		stmt.ErrorMessage, stmt.DateProcessed,
	)
	if err != nil {
		return fmt.Errorf("update statement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatementNotFound
	}
	return nil
}

// GetStatement fetches a statement by id.
func (r *PostgresIngestRepository) GetStatement(ctx context.Context, id uuid.UUID) (*Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE id = $1`

	stmt := &Statement{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&stmt.ID, &stmt.FileName, &stmt.FilePath, &stmt.StatementDate,
		&stmt.SourceType, &stmt.Status, &stmt.ErrorMessage, &stmt.DateProcessed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get statement: %w", err)
	}
	return stmt, nil
}

// ListStatements returns every statement, newest first.
func (r *PostgresIngestRepository) ListStatements(ctx context.Context) ([]*Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements ORDER BY date_processed DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var statements []*Statement
	for rows.Next() {
		stmt := &Statement{}
		if err := rows.Scan(
			&stmt.ID, &stmt.FileName, &stmt.FilePath, &stmt.StatementDate,
			&stmt.SourceType, &stmt.Status, &stmt.ErrorMessage, &stmt.DateProcessed,
		); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		statements = append(statements, stmt)
	}
	return statements, rows.Err()
}

// DeleteTransactions removes every transaction owned by a statement.
func (r *PostgresIngestRepository) DeleteTransactions(ctx context.Context, statementID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE statement_id = $1`, statementID); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}

// CreateTransaction inserts one transaction row.
func (r *PostgresIngestRepository) CreateTransaction(ctx context.Context, tx *Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.VerificationStatus == "" {
		tx.VerificationStatus = VerificationUnverified
	}

	query := `
		INSERT INTO transactions (id, statement_id, date, description, check_number, amount, principal, interest, capitalized_interest, late_fees, balance, comment, source, raw_text, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	if _, err := r.pool.Exec(ctx, query,
		tx.ID, tx.StatementID, tx.Date, tx.Description, tx.CheckNumber,
		tx.Amount, tx.Principal, tx.Interest, tx.CapitalizedInterest,
		tx.LateFees, tx.Balance, tx.Comment, tx.Source, tx.RawText,
		tx.VerificationStatus,
	); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a statement's transactions in date order.
func (r *PostgresIngestRepository) ListTransactions(ctx context.Context, statementID uuid.UUID) ([]*Transaction, error) {
	query := `
		SELECT id, statement_id, date, description, check_number, amount, principal, interest, capitalized_interest, late_fees, balance, comment, source, raw_text, verification_status
		FROM transactions
		WHERE statement_id = $1
		ORDER BY date, id`

	rows, err := r.pool.Query(ctx, query, statementID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		tx := &Transaction{}
		if err := rows.Scan(
			&tx.ID, &tx.StatementID, &tx.Date, &tx.Description, &tx.CheckNumber,
			&tx.Amount, &tx.Principal, &tx.Interest, &tx.CapitalizedInterest,
			&tx.LateFees, &tx.Balance, &tx.Comment, &tx.Source, &tx.RawText,
			&tx.VerificationStatus,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// CountByStatus tallies statements by outcome.
func (r *PostgresIngestRepository) CountByStatus(ctx context.Context) (*StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'processed'),
			COUNT(*) FILTER (WHERE status = 'error')
		FROM statements`

	counts := &StatusCounts{}
	if err := r.pool.QueryRow(ctx, query).Scan(&counts.Processed, &counts.Errored); err != nil {
		return nil, fmt.Errorf("count statements: %w", err)
	}
	return counts, nil
}
