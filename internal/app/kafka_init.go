package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/messaging/kafka"
)

// initKafkaProducer подключается к Kafka. Пустой список брокеров и ошибка
// подключения не фатальны: события останутся в outbox до следующего запуска.
func initKafkaProducer(brokers []string, logger *log.Entry) *kafka.Producer {
	if len(brokers) == 0 {
		logger.Warn("DOKAN_KAFKA_BROKERS is empty, outbox events will not be published")
		return nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("failed to connect to kafka, outbox events will not be published")
		return nil
	}

	logger.WithField("brokers", brokers).Info("connected to kafka")
	return producer
}

func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Error("failed to close kafka producer")
	}
}
