package events

import (
	"log/slog"

	"deliveryfood/config"
)

// New builds the publisher selected by configuration.
func New(cfg config.EventsConfig, log *slog.Logger) (Publisher, error) {
	switch {
	case len(cfg.KafkaBrokers) > 0:
		log.Info("publishing order events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case cfg.AMQPURL != "":
		log.Info("publishing order events to amqp", "exchange", cfg.AMQPExchange)
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	default:
		log.Info("no event broker configured, order events are dropped")
		return Noop{}, nil
	}
}
