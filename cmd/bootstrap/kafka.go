package bootstrap

import (
	"context"

	"pasarlink/internal/events"
	"pasarlink/internal/infra/kafkax"
	"pasarlink/internal/pkg/config"

	"go.uber.org/fx"
)

var KafkaModule = fx.Module("kafka",
	fx.Provide(
		NewKafkaProducer,
		NewEventEmitter,
	),
)

func NewKafkaProducer(lc fx.Lifecycle, cfg config.Config) *kafkax.Producer {
	producer := kafkax.NewProducer(cfg.Kafka.BrokerList(), cfg.Kafka.ProducerBuf)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			producer.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			producer.Close()
			producer.WaitClosed()
			return nil
		},
	})

	return producer
}

func NewEventEmitter(producer *kafkax.Producer, cfg config.Config) events.Emitter {
	return events.NewEmitter(producer, cfg.Kafka.ServiceName)
}
