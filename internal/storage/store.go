// Package storage provides abstractions for persistent receipt storage.
package storage

import (
	"context"
	"errors"

	"github.com/azhao/scanpay/internal/models"
)

// ErrNotFound is returned when a receipt id does not exist.
var ErrNotFound = errors.New("receipt not found")

// Store is the interface for receipt history storage. The abstraction lets
// the service layer swap backends without caring which one is wired in.
//
// Only finished receipts are persisted. Allocator state (people,
// assignments) is deliberately in-memory: a split session is ephemeral and a
// new scan replaces its receipt wholesale.
type Store interface {
	// SaveReceipt persists an assembled receipt.
	SaveReceipt(ctx context.Context, r *models.Receipt) error

	// GetReceipt retrieves a receipt by id, or ErrNotFound.
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)

	// ListReceipts returns all stored receipts, newest first.
	ListReceipts(ctx context.Context) ([]*models.Receipt, error)

	// DeleteReceipt removes a receipt by id, or ErrNotFound.
	DeleteReceipt(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
