package bootstrap

import (
	"context"

	"beautybook/internal/infra/eventbus"
	"beautybook/internal/pkg/config"

	"go.uber.org/fx"
)

var AMQPModule = fx.Module("amqp",
	fx.Provide(
		NewEventPublisher,
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (*eventbus.Publisher, error) {
	publisher, cleanup, err := eventbus.NewPublisher(cfg.AMQP)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return publisher, nil
}
