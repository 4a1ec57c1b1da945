package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestProductNotFoundError(t *testing.T) {
	err := &ProductNotFoundError{ProductID: "product-7"}

	if !errors.Is(err, ErrProductNotFound) {
		t.Fatal("expected errors.Is(err, ErrProductNotFound) to hold")
	}

	var notFound *ProductNotFoundError
	if !errors.As(fmt.Errorf("place order: %w", err), &notFound) {
		t.Fatal("expected errors.As to unwrap ProductNotFoundError")
	}
	if notFound.ProductID != "product-7" {
		t.Fatalf("expected product-7, got %s", notFound.ProductID)
	}
}

func TestInsufficientStockError(t *testing.T) {
	err := &InsufficientStockError{ProductID: "product-3", Requested: 5, Available: 2}

	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatal("expected errors.Is(err, ErrInsufficientStock) to hold")
	}

	var short *InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatal("expected errors.As to unwrap InsufficientStockError")
	}
	if short.Requested != 5 || short.Available != 2 {
		t.Fatalf("unexpected quantities: requested %d, available %d", short.Requested, short.Available)
	}
}

func TestIsBusinessError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "product not found",
			err:  &ProductNotFoundError{ProductID: "x"},
			want: true,
		},
		{
			name: "insufficient stock",
			err:  &InsufficientStockError{ProductID: "x", Requested: 1, Available: 0},
			want: true,
		},
		{
			name: "order not cancellable",
			err:  ErrOrderNotCancellable,
			want: true,
		},
		{
			name: "wrapped order not found",
			err:  fmt.Errorf("cancel: %w", ErrOrderNotFound),
			want: true,
		},
		{
			name: "serialization conflict",
			err:  ErrTxConflict,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBusinessError(tt.err); got != tt.want {
				t.Errorf("IsBusinessError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsVersionConflict(t *testing.T) {
	if !IsVersionConflict(ErrOrderVersionConflict) {
		t.Fatal("expected order version conflict to match")
	}
	if !IsVersionConflict(ErrProductVersionConflict) {
		t.Fatal("expected product version conflict to match")
	}
	if IsVersionConflict(ErrOrderNotFound) {
		t.Fatal("did not expect not-found to match")
	}
}
