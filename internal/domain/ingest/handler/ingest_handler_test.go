package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/extractor"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/parsers"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/repository"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/service"
	"github.com/FACorreiaa/loan-ledger/pkg/storage"
)

type stubEngine struct{}

func (stubEngine) Recognize(path string) (string, float64, error) { return "", 0, nil }
func (stubEngine) Close() error                                   { return nil }

// memoryRepo is an in-memory IngestRepository for handler tests.
type memoryRepo struct {
	statements   map[uuid.UUID]*repository.Statement
	transactions map[uuid.UUID][]*repository.Transaction
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		statements:   map[uuid.UUID]*repository.Statement{},
		transactions: map[uuid.UUID][]*repository.Transaction{},
	}
}

func (m *memoryRepo) SaveResult(ctx context.Context, stmt *repository.Statement, txs []*repository.Transaction) error {
	copied := *stmt
	m.statements[stmt.ID] = &copied
	m.transactions[stmt.ID] = txs
	return nil
}

func (m *memoryRepo) CreateStatement(ctx context.Context, stmt *repository.Statement) error {
	copied := *stmt
	m.statements[stmt.ID] = &copied
	return nil
}

func (m *memoryRepo) UpdateStatement(ctx context.Context, stmt *repository.Statement) error {
	if _, ok := m.statements[stmt.ID]; !ok {
		return repository.ErrStatementNotFound
	}
	copied := *stmt
	m.statements[stmt.ID] = &copied
	return nil
}

func (m *memoryRepo) GetStatement(ctx context.Context, id uuid.UUID) (*repository.Statement, error) {
	stmt, ok := m.statements[id]
	if !ok {
		return nil, repository.ErrStatementNotFound
	}
	copied := *stmt
	return &copied, nil
}

func (m *memoryRepo) ListStatements(ctx context.Context) ([]*repository.Statement, error) {
	out := make([]*repository.Statement, 0, len(m.statements))
	for _, stmt := range m.statements {
		out = append(out, stmt)
	}
	return out, nil
}

func (m *memoryRepo) DeleteTransactions(ctx context.Context, statementID uuid.UUID) error {
	delete(m.transactions, statementID)
	return nil
}

func (m *memoryRepo) CreateTransaction(ctx context.Context, tx *repository.Transaction) error {
	m.transactions[tx.StatementID] = append(m.transactions[tx.StatementID], tx)
	return nil
}

func (m *memoryRepo) ListTransactions(ctx context.Context, statementID uuid.UUID) ([]*repository.Transaction, error) {
	return m.transactions[statementID], nil
}

func (m *memoryRepo) CountByStatus(ctx context.Context) (*repository.StatusCounts, error) {
	return &repository.StatusCounts{}, nil
}

func newTestHandler(t *testing.T, repo repository.IngestRepository) (*IngestHandler, *http.ServeMux) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	registry, err := parsers.NewRegistry()
	require.NoError(t, err)

	ex := extractor.New(stubEngine{}, logger)
	svc := service.New(repo, ex, registry, logger)

	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	h := NewIngestHandler(svc, repo, st, logger)
	mux := http.NewServeMux()
	h.Register(mux)
	return h, mux
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	t.Run("stores, ingests and returns the statement", func(t *testing.T) {
		repo := newMemoryRepo()
		_, mux := newTestHandler(t, repo)

		csv := "Date,Contact,Num,Total amount\n3/1/24,Navient,1041,(150.00)\n"
		body, contentType := multipartUpload(t, "quickbooks_export.csv", csv)

		req := httptest.NewRequest(http.MethodPost, "/api/statements/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "processed", resp["status"])
		assert.Equal(t, "quickbooks", resp["source_type"])

		id, err := uuid.Parse(resp["id"].(string))
		require.NoError(t, err)
		txs, err := repo.ListTransactions(context.Background(), id)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, -150.00, txs[0].Amount)
		assert.Equal(t, "2024-03-01", txs[0].Date)
	})

	t.Run("unclassifiable upload still returns 201 with error status", func(t *testing.T) {
		repo := newMemoryRepo()
		_, mux := newTestHandler(t, repo)

		body, contentType := multipartUpload(t, "mystery.csv", "col1,col2\na,b\n")

		req := httptest.NewRequest(http.MethodPost, "/api/statements/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp["status"])
		assert.Equal(t, "Unknown document type", resp["error_message"])
	})

	t.Run("missing file field", func(t *testing.T) {
		repo := newMemoryRepo()
		_, mux := newTestHandler(t, repo)

		req := httptest.NewRequest(http.MethodPost, "/api/statements/upload", bytes.NewBufferString("nope"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReprocessEndpoint(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		repo := newMemoryRepo()
		_, mux := newTestHandler(t, repo)

		req := httptest.NewRequest(http.MethodPost, "/api/statements/not-a-uuid/reprocess", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := newMemoryRepo()
		_, mux := newTestHandler(t, repo)

		req := httptest.NewRequest(http.MethodPost, "/api/statements/"+uuid.NewString()+"/reprocess", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetAndList(t *testing.T) {
	repo := newMemoryRepo()
	_, mux := newTestHandler(t, repo)

	id := uuid.New()
	source := "navient"
	repo.statements[id] = &repository.Statement{
		ID:            id,
		FileName:      "navient.pdf",
		SourceType:    &source,
		Status:        repository.StatusProcessed,
		DateProcessed: time.Now().UTC(),
	}
	repo.transactions[id] = []*repository.Transaction{
		{ID: uuid.New(), StatementID: id, Date: "2024-03-15", Amount: 150.00},
	}

	t.Run("get with transactions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/statements/"+id.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "navient.pdf", resp["file_name"])
		txs, ok := resp["transactions"].([]any)
		require.True(t, ok)
		assert.Len(t, txs, 1)
	})

	t.Run("get unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/statements/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/statements", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
	})
}
