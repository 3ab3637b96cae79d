// Package handler exposes the HTTP triggers into the ingestion pipeline:
// upload a document, reprocess an existing statement, and list/inspect
// statements. The handlers are thin; all pipeline logic lives in the
// service.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/repository"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/service"
	"github.com/FACorreiaa/loan-ledger/pkg/storage"
)

// maxUploadBytes bounds statement uploads; scanned multi-page PDFs stay
// well under this.
const maxUploadBytes = 50 << 20

// IngestHandler handles ingestion HTTP endpoints.
type IngestHandler struct {
	svc     *service.Service
	repo    repository.IngestRepository
	storage storage.Storage
	logger  *slog.Logger
}

// NewIngestHandler creates the ingestion handler.
func NewIngestHandler(svc *service.Service, repo repository.IngestRepository, st storage.Storage, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{svc: svc, repo: repo, storage: st, logger: logger}
}

// Register mounts the ingestion routes.
func (h *IngestHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/statements/upload", h.Upload)
	mux.HandleFunc("POST /api/statements/{id}/reprocess", h.Reprocess)
	mux.HandleFunc("GET /api/statements", h.List)
	mux.HandleFunc("GET /api/statements/{id}", h.Get)
}

// Upload accepts a multipart statement file, stores it, and runs it through
// the pipeline once. The response carries the resulting statement either
// way: pipeline failures surface as a statement in error status, not as an
// HTTP error.
func (h *IngestHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	info, err := h.storage.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("failed to store upload", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	stmt, err := h.svc.IngestFile(r.Context(), info.Path)
	if err != nil {
		h.logger.Error("ingestion failed", slog.String("file", header.Filename), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	respondJSON(w, http.StatusCreated, statementResponse(stmt))
}

// Reprocess re-runs the pipeline for an existing statement, replacing its
// transaction set.
func (h *IngestHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid statement id")
		return
	}

	stmt, err := h.svc.Reprocess(r.Context(), id)
	if errors.Is(err, repository.ErrStatementNotFound) {
		respondError(w, http.StatusNotFound, "statement not found")
		return
	}
	if err != nil {
		h.logger.Error("reprocess failed", slog.String("id", id.String()), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "reprocess failed")
		return
	}

	respondJSON(w, http.StatusOK, statementResponse(stmt))
}

// List returns every statement, newest first.
func (h *IngestHandler) List(w http.ResponseWriter, r *http.Request) {
	statements, err := h.repo.ListStatements(r.Context())
	if err != nil {
		h.logger.Error("failed to list statements", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to list statements")
		return
	}

	out := make([]map[string]any, 0, len(statements))
	for _, stmt := range statements {
		out = append(out, statementResponse(stmt))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get returns one statement with its transactions.
func (h *IngestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid statement id")
		return
	}

	stmt, err := h.repo.GetStatement(r.Context(), id)
	if errors.Is(err, repository.ErrStatementNotFound) {
		respondError(w, http.StatusNotFound, "statement not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get statement", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to get statement")
		return
	}

	txs, err := h.repo.ListTransactions(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list transactions", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	resp := statementResponse(stmt)
	resp["transactions"] = txs
	respondJSON(w, http.StatusOK, resp)
}

func statementResponse(stmt *repository.Statement) map[string]any {
	return map[string]any{
		"id":             stmt.ID,
		"file_name":      stmt.FileName,
		"file_path":      stmt.FilePath,
		"statement_date": stmt.StatementDate,
		"source_type":    stmt.SourceType,
		"status":         stmt.Status,
		"error_message":  stmt.ErrorMessage,
		"date_processed": stmt.DateProcessed,
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
