// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/azhao/scanpay/internal/models"
	"github.com/azhao/scanpay/internal/storage"
)

// addressSeparator joins address lines into the single stored column.
const addressSeparator = "\n"

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a Store at the given database path. It creates the parent
// directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReceipt persists a receipt with its items and modifiers.
func (s *Store) SaveReceipt(ctx context.Context, r *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts
		 (id, subtotal, tax, grand_total, status, restaurant_name, restaurant_address, restaurant_phone, restaurant_date, order_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Subtotal, r.Tax, r.GrandTotal, string(r.Status),
		r.Restaurant.Name, strings.Join(r.Restaurant.Address, addressSeparator),
		r.Restaurant.Phone, r.Restaurant.Date, r.Restaurant.OrderNumber,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i, item := range r.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (id, receipt_id, position, name, price) VALUES (?, ?, ?, ?, ?)",
			item.ID, r.ID, i, item.Name, item.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for j, mod := range item.Modifiers {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_modifiers (item_id, position, text) VALUES (?, ?, ?)",
				item.ID, j, mod,
			)
			if err != nil {
				return fmt.Errorf("failed to insert modifier: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetReceipt retrieves a receipt by id, including items and modifiers in
// print order.
func (s *Store) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	r := &models.Receipt{}
	var status, address string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subtotal, tax, grand_total, status, restaurant_name, restaurant_address, restaurant_phone, restaurant_date, order_number, created_at
		 FROM receipts WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Subtotal, &r.Tax, &r.GrandTotal, &status,
		&r.Restaurant.Name, &address, &r.Restaurant.Phone,
		&r.Restaurant.Date, &r.Restaurant.OrderNumber, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	r.Status = models.Status(status)
	if address != "" {
		r.Restaurant.Address = strings.Split(address, addressSeparator)
	}

	items, err := s.receiptItems(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Items = items

	return r, nil
}

func (s *Store) receiptItems(ctx context.Context, receiptID string) ([]models.ReceiptItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price FROM items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.ReceiptItem
	for rows.Next() {
		var item models.ReceiptItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range items {
		modRows, err := s.db.QueryContext(ctx,
			"SELECT text FROM item_modifiers WHERE item_id = ? ORDER BY position",
			items[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get modifiers: %w", err)
		}

		for modRows.Next() {
			var text string
			if err := modRows.Scan(&text); err != nil {
				modRows.Close()
				return nil, fmt.Errorf("failed to scan modifier: %w", err)
			}
			items[i].Modifiers = append(items[i].Modifiers, text)
		}
		modRows.Close()
		if err := modRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate modifiers: %w", err)
		}
	}

	return items, nil
}

// ListReceipts returns all receipts, newest first.
func (s *Store) ListReceipts(ctx context.Context) ([]*models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM receipts ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan receipt id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	receipts := make([]*models.Receipt, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetReceipt(ctx, id)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// DeleteReceipt removes a receipt; items and modifiers cascade.
func (s *Store) DeleteReceipt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
