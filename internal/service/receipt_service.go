// Package service orchestrates parsing, persistence and split sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/azhao/scanpay/internal/metrics"
	"github.com/azhao/scanpay/internal/models"
	"github.com/azhao/scanpay/internal/ocr"
	"github.com/azhao/scanpay/internal/parser"
	"github.com/azhao/scanpay/internal/storage"
)

// ErrNoRecognizer is returned from ScanImage when no OCR engine is wired.
var ErrNoRecognizer = errors.New("no recognizer configured")

// ReceiptService runs scans through the parser, persists the result, and
// swaps it into the session's allocator.
type ReceiptService struct {
	parser     *parser.Parser
	store      storage.Store
	sessions   *SessionManager
	recognizer ocr.Recognizer // optional
}

// NewReceiptService wires the pipeline together. recognizer may be nil when
// the deployment only receives pre-recognized lines.
func NewReceiptService(p *parser.Parser, store storage.Store, sessions *SessionManager, recognizer ocr.Recognizer) *ReceiptService {
	return &ReceiptService{
		parser:     p,
		store:      store,
		sessions:   sessions,
		recognizer: recognizer,
	}
}

// ScanLines parses one scan's recognized lines into a receipt, stores it,
// and replaces the session's current receipt wholesale. Parsing never
// fails; an empty item list comes back as a StatusEmpty receipt.
func (s *ReceiptService) ScanLines(ctx context.Context, sessionID string, lines []string) (*models.Receipt, error) {
	alloc, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	receipt := s.parser.Parse(lines)
	metrics.ParseDuration.Observe(time.Since(start).Seconds())
	metrics.ReceiptsParsed.WithLabelValues(string(receipt.Status)).Inc()

	if err := s.store.SaveReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}

	alloc.ReplaceReceipt(receipt)

	slog.Info("Receipt scanned",
		"receipt_id", receipt.ID,
		"session_id", sessionID,
		"items", len(receipt.Items),
		"status", receipt.Status,
		"grand_total", receipt.GrandTotal,
	)
	return receipt, nil
}

// ScanImage runs the OCR engine on a receipt image and feeds the recognized
// lines through ScanLines. Recognition failures surface verbatim.
func (s *ReceiptService) ScanImage(ctx context.Context, sessionID string, image []byte, contentType string) (*models.Receipt, error) {
	if s.recognizer == nil {
		return nil, ErrNoRecognizer
	}

	lines, err := s.recognizer.Recognize(ctx, image, contentType)
	if err != nil {
		slog.Error("Recognition failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("recognizing receipt: %w", err)
	}

	return s.ScanLines(ctx, sessionID, lines)
}

// GetReceipt retrieves a stored receipt by id.
func (s *ReceiptService) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	return s.store.GetReceipt(ctx, id)
}

// ListReceipts returns the scan history, newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context) ([]*models.Receipt, error) {
	return s.store.ListReceipts(ctx)
}

// Sessions exposes the session manager for the HTTP layer.
func (s *ReceiptService) Sessions() *SessionManager {
	return s.sessions
}
