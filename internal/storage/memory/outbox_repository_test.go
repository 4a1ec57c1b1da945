package memory_test

import (
	"context"
	"testing"

	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/storage/memory"
)

func TestOutboxRepository_EnqueuePull(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOutboxRepository(store)

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "order.placed",
		Payload:       []byte(`{"order_id":"order-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected generated message id")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "order.placed" {
		t.Fatalf("unexpected pending messages: %+v", pending)
	}
}

// События из атомарной транзакции видны тому же репозиторию.
func TestOutboxRepository_SeesTransactionalEnqueue(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOutboxRepository(store)

	err := store.RunAtomic(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		return tx.EnqueueOutbox(ctx, domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   "order-9",
			EventType:     "order.placed",
		})
	})
	if err != nil {
		t.Fatalf("RunAtomic failed: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 || pending[0].AggregateID != "order-9" {
		t.Fatalf("expected transactional message, got %+v", pending)
	}
}

func TestOutboxRepository_MarkSentAndStats(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOutboxRepository(store)

	msg, err := repo.Enqueue(domain.OutboxMessage{EventType: "order.placed"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 1 || stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	stats, err = repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected empty backlog, got %d", stats.PendingCount)
	}

	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for unknown message id")
	}
}
