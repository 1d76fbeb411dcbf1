package notify

import (
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/config"
)

// SenderFromConfig builds the transport named by cfg.Driver.
func SenderFromConfig(cfg config.NotifyConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Driver {
	case "", "none", "log":
		return NewLogSender(logger), nil
	case "amqp":
		pool, err := NewChannelPool(cfg.AMQPURL, cfg.AMQPQueue, cfg.ChannelPoolSize, logger)
		if err != nil {
			return nil, err
		}
		return NewAMQPSender(pool, cfg.AMQPQueue), nil
	case "kafka":
		return NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}
