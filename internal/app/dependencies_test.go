package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewDependencies_InMemory(t *testing.T) {
	logger := log.WithField("component", "test")

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if deps.Store == nil {
		t.Error("expected Store to be set")
	}
	if deps.Products == nil {
		t.Error("expected Products to be set")
	}
	if deps.Orders == nil {
		t.Error("expected Orders to be set")
	}
	if deps.Outbox == nil {
		t.Error("expected Outbox to be set")
	}
	if deps.Timeline == nil {
		t.Error("expected Timeline to be set")
	}
	if deps.Profiles == nil {
		t.Error("expected Profiles to be set")
	}
	if deps.Settings == nil {
		t.Error("expected Settings to be set")
	}
	if deps.Idem == nil {
		t.Error("expected Idem to be set")
	}
	if deps.CartStore == nil {
		t.Error("expected CartStore to be set")
	}
}

func TestDependencies_PingsSucceedInMemory(t *testing.T) {
	logger := log.WithField("component", "test")

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if err := deps.PingPostgres(context.Background()); err != nil {
		t.Errorf("PingPostgres: %v", err)
	}
	if err := deps.PingRedis(context.Background()); err != nil {
		t.Errorf("PingRedis: %v", err)
	}
}

func TestDependencies_CloseIsSafeOnPartialBuild(t *testing.T) {
	deps := &Dependencies{logger: log.WithField("component", "test")}
	deps.Close()
	deps.Close()
}

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	logger := log.WithField("component", "test")

	if producer := initKafkaProducer(nil, logger); producer != nil {
		t.Error("expected nil producer for empty broker list")
	}

	closeKafka(nil, logger)
}

func TestInitKafkaProducer_UnreachableBroker(t *testing.T) {
	logger := log.WithField("component", "test")

	if producer := initKafkaProducer([]string{"invalid-broker:9092"}, logger); producer != nil {
		t.Error("expected nil producer when broker is unreachable")
	}
}
