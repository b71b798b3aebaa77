package worker

import (
	"context"
	"log/slog"
	"time"
)

const sweepBatchSize = 200

type ReservationSweeps interface {
	SweepNoShows(ctx context.Context, limit int32) (int, error)
	SweepStaleDeposits(ctx context.Context, limit int32) (int, error)
}

type PointSweeps interface {
	SweepExpired(ctx context.Context, limit int32) (int, error)
}

// SweepWorker drives the periodic state passes: confirmed reservations past
// the no-show grace, requested reservations whose deposit never arrived, and
// lapsed point credits. Reservation passes share one ticker; point expiry
// runs on its own, slower one.
type SweepWorker struct {
	reservations   ReservationSweeps
	points         PointSweeps
	sweepInterval  time.Duration
	expiryInterval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewSweepWorker(reservations ReservationSweeps, points PointSweeps, sweepInterval, expiryInterval time.Duration) *SweepWorker {
	return &SweepWorker{
		reservations:   reservations,
		points:         points,
		sweepInterval:  sweepInterval,
		expiryInterval: expiryInterval,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (w *SweepWorker) Start() {
	go w.loop()
}

func (w *SweepWorker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *SweepWorker) loop() {
	defer close(w.done)

	sweepTicker := time.NewTicker(w.sweepInterval)
	defer sweepTicker.Stop()
	expiryTicker := time.NewTicker(w.expiryInterval)
	defer expiryTicker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-sweepTicker.C:
			w.runReservationSweeps(context.Background())
		case <-expiryTicker.C:
			w.runExpirySweep(context.Background())
		}
	}
}

func (w *SweepWorker) runReservationSweeps(ctx context.Context) {
	if swept, err := w.reservations.SweepNoShows(ctx, sweepBatchSize); err != nil {
		slog.Error("no-show sweep failed", "error", err.Error())
	} else if swept > 0 {
		slog.Info("no-show reservations swept", "count", swept)
	}

	if swept, err := w.reservations.SweepStaleDeposits(ctx, sweepBatchSize); err != nil {
		slog.Error("stale deposit sweep failed", "error", err.Error())
	} else if swept > 0 {
		slog.Info("stale deposit reservations cancelled", "count", swept)
	}
}

func (w *SweepWorker) runExpirySweep(ctx context.Context) {
	if swept, err := w.points.SweepExpired(ctx, sweepBatchSize); err != nil {
		slog.Error("point expiry sweep failed", "error", err.Error())
	} else if swept > 0 {
		slog.Info("expired point credits swept", "count", swept)
	}
}
