package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/azhao/scanpay/internal/models"
	"github.com/azhao/scanpay/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "scanpay-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleReceipt(id string, createdAt int64) *models.Receipt {
	return &models.Receipt{
		ID: id,
		Items: []models.ReceiptItem{
			{ID: id + "-i1", Name: "Kung Pao Chicken", Price: 14.50, Modifiers: []string{"Extra Spicy", "No Peanuts"}},
			{ID: id + "-i2", Name: "Spring Rolls", Price: 8.00},
		},
		Subtotal:   22.50,
		Tax:        1.80,
		GrandTotal: 24.30,
		Restaurant: models.RestaurantInfo{
			Name:        "Golden Dragon",
			Address:     []string{"123 Main St", "Springfield, IL"},
			Phone:       "(415) 555-0199",
			Date:        "04/22/2024",
			OrderNumber: "Order #1042",
		},
		Status:    models.StatusComplete,
		CreatedAt: createdAt,
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("save and get round-trips a receipt", func(t *testing.T) {
		want := sampleReceipt("r1", 1714000000)
		if err := store.SaveReceipt(ctx, want); err != nil {
			t.Fatalf("SaveReceipt: %v", err)
		}

		got, err := store.GetReceipt(ctx, "r1")
		if err != nil {
			t.Fatalf("GetReceipt: %v", err)
		}

		if got.ID != want.ID || got.Status != want.Status || got.CreatedAt != want.CreatedAt {
			t.Errorf("receipt = %+v, want %+v", got, want)
		}
		if got.Subtotal != want.Subtotal || got.Tax != want.Tax || got.GrandTotal != want.GrandTotal {
			t.Errorf("amounts = %v/%v/%v, want %v/%v/%v",
				got.Subtotal, got.Tax, got.GrandTotal,
				want.Subtotal, want.Tax, want.GrandTotal)
		}

		if got.Restaurant.Name != want.Restaurant.Name ||
			got.Restaurant.Phone != want.Restaurant.Phone ||
			got.Restaurant.Date != want.Restaurant.Date ||
			got.Restaurant.OrderNumber != want.Restaurant.OrderNumber {
			t.Errorf("restaurant = %+v, want %+v", got.Restaurant, want.Restaurant)
		}
		if len(got.Restaurant.Address) != 2 || got.Restaurant.Address[0] != "123 Main St" {
			t.Errorf("address = %v, want %v", got.Restaurant.Address, want.Restaurant.Address)
		}

		if len(got.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(got.Items))
		}
		if got.Items[0].Name != "Kung Pao Chicken" || got.Items[1].Name != "Spring Rolls" {
			t.Errorf("items out of print order: %q, %q", got.Items[0].Name, got.Items[1].Name)
		}
		if len(got.Items[0].Modifiers) != 2 || got.Items[0].Modifiers[0] != "Extra Spicy" {
			t.Errorf("modifiers = %v, want print order preserved", got.Items[0].Modifiers)
		}
		if len(got.Items[1].Modifiers) != 0 {
			t.Errorf("second item modifiers = %v, want none", got.Items[1].Modifiers)
		}
	})

	t.Run("get missing receipt returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetReceipt(ctx, "missing"); err != storage.ErrNotFound {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("list returns receipts newest first", func(t *testing.T) {
		if err := store.SaveReceipt(ctx, sampleReceipt("r2", 1714000100)); err != nil {
			t.Fatalf("SaveReceipt: %v", err)
		}

		receipts, err := store.ListReceipts(ctx)
		if err != nil {
			t.Fatalf("ListReceipts: %v", err)
		}
		if len(receipts) != 2 {
			t.Fatalf("expected 2 receipts, got %d", len(receipts))
		}
		if receipts[0].ID != "r2" || receipts[1].ID != "r1" {
			t.Errorf("order = %s, %s, want r2, r1", receipts[0].ID, receipts[1].ID)
		}
	})

	t.Run("delete removes receipt and cascades", func(t *testing.T) {
		if err := store.DeleteReceipt(ctx, "r1"); err != nil {
			t.Fatalf("DeleteReceipt: %v", err)
		}
		if _, err := store.GetReceipt(ctx, "r1"); err != storage.ErrNotFound {
			t.Errorf("err after delete = %v, want ErrNotFound", err)
		}

		// r2's items are untouched.
		got, err := store.GetReceipt(ctx, "r2")
		if err != nil {
			t.Fatalf("GetReceipt: %v", err)
		}
		if len(got.Items) != 2 {
			t.Errorf("r2 items = %d, want 2", len(got.Items))
		}
	})

	t.Run("delete missing receipt returns ErrNotFound", func(t *testing.T) {
		if err := store.DeleteReceipt(ctx, "missing"); err != storage.ErrNotFound {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty receipt persists with no items", func(t *testing.T) {
		empty := &models.Receipt{
			ID:        "r3",
			Status:    models.StatusEmpty,
			CreatedAt: 1714000200,
		}
		if err := store.SaveReceipt(ctx, empty); err != nil {
			t.Fatalf("SaveReceipt: %v", err)
		}

		got, err := store.GetReceipt(ctx, "r3")
		if err != nil {
			t.Fatalf("GetReceipt: %v", err)
		}
		if got.Status != models.StatusEmpty || len(got.Items) != 0 {
			t.Errorf("got status %q with %d items, want empty with none", got.Status, len(got.Items))
		}
	})
}
