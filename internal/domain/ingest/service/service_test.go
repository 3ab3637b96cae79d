package service

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/extractor"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/parsers"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/repository"
)

// fakeExtractor returns canned extraction results keyed by nothing; one
// result per test.
type fakeExtractor struct {
	result *extractor.Result
	err    error
}

func (f *fakeExtractor) Extract(path string) (*extractor.Result, error) {
	return f.result, f.err
}

// fakeRepo records SaveResult calls and serves canned statements.
type fakeRepo struct {
	statements map[uuid.UUID]*repository.Statement

	savedStmt *repository.Statement
	savedTxs  []*repository.Transaction
	saveErr   error
	saveCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{statements: map[uuid.UUID]*repository.Statement{}}
}

func (f *fakeRepo) SaveResult(ctx context.Context, stmt *repository.Statement, txs []*repository.Transaction) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedStmt = stmt
	f.savedTxs = txs
	return nil
}

func (f *fakeRepo) CreateStatement(ctx context.Context, stmt *repository.Statement) error { return nil }
func (f *fakeRepo) UpdateStatement(ctx context.Context, stmt *repository.Statement) error { return nil }

func (f *fakeRepo) GetStatement(ctx context.Context, id uuid.UUID) (*repository.Statement, error) {
	stmt, ok := f.statements[id]
	if !ok {
		return nil, repository.ErrStatementNotFound
	}
	copied := *stmt
	return &copied, nil
}

func (f *fakeRepo) ListStatements(ctx context.Context) ([]*repository.Statement, error) {
	return nil, nil
}
func (f *fakeRepo) DeleteTransactions(ctx context.Context, statementID uuid.UUID) error { return nil }
func (f *fakeRepo) CreateTransaction(ctx context.Context, tx *repository.Transaction) error {
	return nil
}
func (f *fakeRepo) ListTransactions(ctx context.Context, statementID uuid.UUID) ([]*repository.Transaction, error) {
	return nil, nil
}
func (f *fakeRepo) CountByStatus(ctx context.Context) (*repository.StatusCounts, error) {
	return &repository.StatusCounts{}, nil
}

func newTestService(t *testing.T, repo repository.IngestRepository, ex TextExtractor) *Service {
	t.Helper()
	registry, err := parsers.NewRegistry()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return New(repo, ex, registry, logger)
}

const navientText = `NAVIENT
Statement Date: 4/1/2024

Payment History
3/15/2024 150.00 100.00 45.00 0.00 5.00 9,850.00
2/15/2024 150.00 98.00 47.00 0.00 5.00 9,950.00`

func TestIngestFile(t *testing.T) {
	t.Run("successful pipeline run", func(t *testing.T) {
		repo := newFakeRepo()
		ex := &fakeExtractor{result: &extractor.Result{Text: navientText, Method: extractor.MethodPDF}}
		svc := newTestService(t, repo, ex)

		stmt, err := svc.IngestFile(context.Background(), "/inbox/navient_april.pdf")
		require.NoError(t, err)

		assert.Equal(t, repository.StatusProcessed, stmt.Status)
		assert.Equal(t, "navient_april.pdf", stmt.FileName)
		assert.Equal(t, "/inbox/navient_april.pdf", stmt.FilePath)
		require.NotNil(t, stmt.SourceType)
		assert.Equal(t, "navient", *stmt.SourceType)
		require.NotNil(t, stmt.StatementDate)
		assert.Equal(t, "2024-04-01", *stmt.StatementDate)
		assert.Nil(t, stmt.ErrorMessage)

		require.Len(t, repo.savedTxs, 2)
		tx := repo.savedTxs[0]
		assert.Equal(t, "2024-03-15", tx.Date)
		assert.Equal(t, 150.00, tx.Amount)
		assert.Equal(t, "navient", tx.Source)
		assert.Equal(t, repository.VerificationUnverified, tx.VerificationStatus)
		assert.Equal(t, navientText, tx.RawText)
	})

	t.Run("unclassifiable document is persisted as an error, not returned as one", func(t *testing.T) {
		repo := newFakeRepo()
		ex := &fakeExtractor{result: &extractor.Result{Text: "utility bill", Method: extractor.MethodOCR}}
		svc := newTestService(t, repo, ex)

		stmt, err := svc.IngestFile(context.Background(), "/inbox/scan0001.pdf")
		require.NoError(t, err)

		assert.Equal(t, repository.StatusError, stmt.Status)
		require.NotNil(t, stmt.ErrorMessage)
		assert.Equal(t, "Unknown document type", *stmt.ErrorMessage)
		assert.Nil(t, stmt.SourceType)
		assert.Empty(t, repo.savedTxs)
	})

	t.Run("extraction failure is persisted as an error", func(t *testing.T) {
		repo := newFakeRepo()
		ex := &fakeExtractor{err: assert.AnError}
		svc := newTestService(t, repo, ex)

		stmt, err := svc.IngestFile(context.Background(), "/inbox/corrupt.pdf")
		require.NoError(t, err)

		assert.Equal(t, repository.StatusError, stmt.Status)
		require.NotNil(t, stmt.ErrorMessage)
		assert.Contains(t, *stmt.ErrorMessage, "extraction failed")
	})

	t.Run("parser failure is persisted with the parser's message", func(t *testing.T) {
		repo := newFakeRepo()
		// Classifies as navient but carries no payment history rows.
		ex := &fakeExtractor{result: &extractor.Result{Text: "NAVIENT statement, no table", Method: extractor.MethodPDF}}
		svc := newTestService(t, repo, ex)

		stmt, err := svc.IngestFile(context.Background(), "/inbox/navient.pdf")
		require.NoError(t, err)

		assert.Equal(t, repository.StatusError, stmt.Status)
		require.NotNil(t, stmt.ErrorMessage)
		assert.Equal(t, parsers.ErrNoPaymentHistory.Error(), *stmt.ErrorMessage)
		require.NotNil(t, stmt.SourceType)
		assert.Equal(t, "navient", *stmt.SourceType)
	})

	t.Run("persistence failure propagates", func(t *testing.T) {
		repo := newFakeRepo()
		repo.saveErr = assert.AnError
		ex := &fakeExtractor{result: &extractor.Result{Text: navientText, Method: extractor.MethodPDF}}
		svc := newTestService(t, repo, ex)

		_, err := svc.IngestFile(context.Background(), "/inbox/navient.pdf")
		require.Error(t, err)
	})

	t.Run("raw text excerpt is bounded", func(t *testing.T) {
		repo := newFakeRepo()
		long := navientText + "\n" + strings.Repeat("x", 20000)
		ex := &fakeExtractor{result: &extractor.Result{Text: long, Method: extractor.MethodPDF}}
		svc := newTestService(t, repo, ex)

		_, err := svc.IngestFile(context.Background(), "/inbox/navient.pdf")
		require.NoError(t, err)

		require.NotEmpty(t, repo.savedTxs)
		assert.Len(t, repo.savedTxs[0].RawText, 5000)
	})

}

func TestTruncate(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		assert.Equal(t, "héllo", truncate("héllo", 5000))
	})

	t.Run("cut lands on a byte boundary", func(t *testing.T) {
		s := strings.Repeat("x", 6000)
		assert.Equal(t, strings.Repeat("x", 5000), truncate(s, 5000))
	})

	t.Run("cut backs off to a rune boundary", func(t *testing.T) {
		// Byte 5000 falls inside the two-byte é, so the cut retreats.
		s := strings.Repeat("x", 4999) + strings.Repeat("é", 100)
		got := truncate(s, 5000)
		assert.Len(t, got, 4999)
		assert.True(t, utf8.ValidString(got))
	})
}

func TestReprocess(t *testing.T) {
	t.Run("replaces the outcome in place", func(t *testing.T) {
		repo := newFakeRepo()
		id := uuid.New()
		oldDate := "2020-01-01"
		oldSource := "mohela"
		oldErr := "extraction failed: boom"
		repo.statements[id] = &repository.Statement{
			ID:            id,
			FileName:      "navient_april.pdf",
			FilePath:      "/uploads/navient_april.pdf",
			StatementDate: &oldDate,
			SourceType:    &oldSource,
			Status:        repository.StatusError,
			ErrorMessage:  &oldErr,
		}

		ex := &fakeExtractor{result: &extractor.Result{Text: navientText, Method: extractor.MethodPDF}}
		svc := newTestService(t, repo, ex)

		stmt, err := svc.Reprocess(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, id, stmt.ID)
		assert.Equal(t, repository.StatusProcessed, stmt.Status)
		require.NotNil(t, stmt.SourceType)
		assert.Equal(t, "navient", *stmt.SourceType)
		require.NotNil(t, stmt.StatementDate)
		assert.Equal(t, "2024-04-01", *stmt.StatementDate)
		assert.Nil(t, stmt.ErrorMessage)
		assert.Len(t, repo.savedTxs, 2)
	})

	t.Run("two runs over unchanged input agree", func(t *testing.T) {
		repo := newFakeRepo()
		id := uuid.New()
		repo.statements[id] = &repository.Statement{
			ID:       id,
			FileName: "navient.pdf",
			FilePath: "/uploads/navient.pdf",
			Status:   repository.StatusProcessed,
		}

		ex := &fakeExtractor{result: &extractor.Result{Text: navientText, Method: extractor.MethodPDF}}
		svc := newTestService(t, repo, ex)

		_, err := svc.Reprocess(context.Background(), id)
		require.NoError(t, err)
		first := repo.savedTxs

		_, err = svc.Reprocess(context.Background(), id)
		require.NoError(t, err)
		second := repo.savedTxs

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Date, second[i].Date)
			assert.Equal(t, first[i].Amount, second[i].Amount)
			assert.Equal(t, first[i].Description, second[i].Description)
		}
	})

	t.Run("unknown statement id", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(t, repo, &fakeExtractor{})

		_, err := svc.Reprocess(context.Background(), uuid.New())
		require.ErrorIs(t, err, repository.ErrStatementNotFound)
	})
}
