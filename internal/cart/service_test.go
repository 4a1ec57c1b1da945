package cart_test

import (
	"context"
	"testing"

	"github.com/rakibhasan/dokan/internal/cart"
	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/storage/memory"
)

func newService(t *testing.T) (*cart.Service, domain.ProductRepository) {
	t.Helper()

	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	return cart.NewService(cart.NewMemoryStore(), products, nil), products
}

func seedProduct(t *testing.T, products domain.ProductRepository, product domain.Product) {
	t.Helper()
	if err := products.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func TestAddItem_CopiesSnapshot(t *testing.T) {
	service, products := newService(t)
	seedProduct(t, products, domain.Product{
		ID:          "p1",
		Title:       "Panjabi",
		PriceMinor:  150000,
		Stock:       10,
		Active:      true,
		WeightGrams: 400,
		Images:      []string{"panjabi-front.jpg", "panjabi-back.jpg"},
	})

	got, err := service.AddItem(context.Background(), "cart-1", "user-1", "p1", 2)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Lines))
	}
	line := got.Lines[0]
	if line.Title != "Panjabi" || line.PriceMinor != 150000 || line.WeightGrams != 400 {
		t.Fatalf("snapshot mismatch: %+v", line)
	}
	if line.Image != "panjabi-front.jpg" {
		t.Fatalf("expected first image, got %s", line.Image)
	}
	if got.UserID != "user-1" {
		t.Fatalf("expected cart bound to user, got %q", got.UserID)
	}
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	service, products := newService(t)
	seedProduct(t, products, domain.Product{
		ID: "p1", Title: "Sharee", PriceMinor: 250000, Stock: 5, Active: true,
	})

	if _, err := service.AddItem(context.Background(), "cart-1", "", "p1", 1); err != nil {
		t.Fatalf("first AddItem failed: %v", err)
	}
	got, err := service.AddItem(context.Background(), "cart-1", "", "p1", 2)
	if err != nil {
		t.Fatalf("second AddItem failed: %v", err)
	}

	if len(got.Lines) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(got.Lines))
	}
	if got.Lines[0].Qty != 3 {
		t.Fatalf("expected qty 3, got %d", got.Lines[0].Qty)
	}
	if got.SubtotalMinor() != 750000 {
		t.Fatalf("unexpected subtotal: %d", got.SubtotalMinor())
	}
}

func TestAddItem_RejectsInactiveProduct(t *testing.T) {
	service, products := newService(t)
	seedProduct(t, products, domain.Product{
		ID: "p1", Title: "Hidden", PriceMinor: 1000, Stock: 5, Active: false,
	})

	_, err := service.AddItem(context.Background(), "cart-1", "", "p1", 1)
	if err == nil {
		t.Fatal("expected error for inactive product")
	}
}

func TestAddItem_ValidatesInput(t *testing.T) {
	service, _ := newService(t)

	if _, err := service.AddItem(context.Background(), "cart-1", "", "", 1); err == nil {
		t.Fatal("expected error for empty product id")
	}
	if _, err := service.AddItem(context.Background(), "cart-1", "", "p1", 0); err == nil {
		t.Fatal("expected error for zero qty")
	}
}

func TestSetQty_UpdatesAndRemoves(t *testing.T) {
	service, products := newService(t)
	seedProduct(t, products, domain.Product{
		ID: "p1", Title: "Lungi", PriceMinor: 50000, Stock: 20, Active: true,
	})
	seedProduct(t, products, domain.Product{
		ID: "p2", Title: "Gamcha", PriceMinor: 20000, Stock: 20, Active: true,
	})

	ctx := context.Background()
	if _, err := service.AddItem(ctx, "cart-1", "", "p1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := service.AddItem(ctx, "cart-1", "", "p2", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	got, err := service.SetQty(ctx, "cart-1", "p1", 5)
	if err != nil {
		t.Fatalf("SetQty failed: %v", err)
	}
	if got.Lines[0].Qty != 5 {
		t.Fatalf("expected qty 5, got %d", got.Lines[0].Qty)
	}

	got, err = service.SetQty(ctx, "cart-1", "p1", 0)
	if err != nil {
		t.Fatalf("SetQty to zero failed: %v", err)
	}
	if len(got.Lines) != 1 || got.Lines[0].ProductID != "p2" {
		t.Fatalf("expected only p2 to remain, got %+v", got.Lines)
	}
}

func TestSetQty_MissingLine(t *testing.T) {
	service, products := newService(t)
	seedProduct(t, products, domain.Product{
		ID: "p1", Title: "Lungi", PriceMinor: 50000, Stock: 20, Active: true,
	})

	ctx := context.Background()
	if _, err := service.AddItem(ctx, "cart-1", "", "p1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if _, err := service.SetQty(ctx, "cart-1", "ghost", 1); err == nil {
		t.Fatal("expected error for missing cart line")
	}
}

func TestGet_MissingCartIsEmpty(t *testing.T) {
	service, _ := newService(t)

	got, err := service.Get(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "fresh" || len(got.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	service, products := newService(t)
	seedProduct(t, products, domain.Product{
		ID: "p1", Title: "Lungi", PriceMinor: 50000, Stock: 20, Active: true,
	})

	ctx := context.Background()
	if _, err := service.AddItem(ctx, "cart-1", "", "p1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := service.Clear(ctx, "cart-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	got, err := service.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Fatalf("expected cleared cart, got %+v", got.Lines)
	}
}
