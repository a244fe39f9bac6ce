package events

import (
	"fmt"
	"strings"

	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/utils"
)

// NewBus creates a Bus from configuration. The in-process memory bus is
// the default.
func NewBus(cfg config.EventsConfig) (Bus, error) {
	busType := utils.EventsType(strings.ToLower(cfg.Type))
	if busType == "" {
		busType = utils.EventsTypeMemory
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "simlens.runs"
	}

	switch busType {
	case utils.EventsTypeMemory:
		return newMemoryBus(), nil

	case utils.EventsTypeNATS:
		return newNATSBus(cfg.URL, subject)

	case utils.EventsTypeRedis:
		return newRedisBus(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Subject:  subject,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		})

	case utils.EventsTypeKafka:
		return newKafkaBus(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   subject,
			GroupID: cfg.KafkaGroupID,
		})

	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: memory, nats, redis, kafka)", busType)
	}
}
