package components

import (
	"context"

	"beautybook/internal/infra/eventbus"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/config"
	"beautybook/internal/usecase/commands"
	"beautybook/internal/usecase/shared"
	"beautybook/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewOutboxWorker,
		NewSweepWorker,
	),
	fx.Invoke(startWorkers),
)

func NewOutboxWorker(
	runner shared.TxRunner,
	outbox worker.OutboxSource,
	bus *eventbus.Publisher,
	clk clock.Clock,
	cfg config.Config,
) *worker.OutboxWorker {
	return worker.NewOutboxWorker(runner, outbox, bus, clk, cfg.Policy.OutboxPublishInterval)
}

func NewSweepWorker(
	reservations *commands.ReservationCommands,
	points *commands.PointCommands,
	cfg config.Config,
) *worker.SweepWorker {
	return worker.NewSweepWorker(reservations, points, cfg.Policy.NoShowSweepInterval, cfg.Policy.ExpirySweepInterval)
}

func startWorkers(lc fx.Lifecycle, outbox *worker.OutboxWorker, sweeps *worker.SweepWorker) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			outbox.Start()
			sweeps.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			outbox.Stop()
			sweeps.Stop()
			return nil
		},
	})
}
