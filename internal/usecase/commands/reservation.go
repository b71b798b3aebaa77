package commands

import (
	"context"
	"errors"
	"time"

	"beautybook/internal/domain/identity"
	"beautybook/internal/domain/ledger"
	"beautybook/internal/domain/payment"
	"beautybook/internal/domain/referral"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"
	"beautybook/internal/infra/gateway"
	"beautybook/internal/infra/repository"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/config"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateReservationInput struct {
	CustomerID     uuid.UUID
	ShopID         uuid.UUID
	ServiceIDs     []uuid.UUID
	StartTime      time.Time
	UsePoints      int64
	IdempotencyKey uuid.UUID // uuid.Nil disables idempotent replay
	RequestHash    string
}

type CreateReservationOutput struct {
	ReservationID uuid.UUID
	SlotStart     time.Time
	SlotEnd       time.Time
	TotalAmount   int64
	DepositAmount int64
	PointsUsed    int64
	Replayed      bool
}

type CancelReservationOutput struct {
	RefundPercentage int
	RefundedAmount   int64
	PointsReturned   int64
}

type ReservationCommands struct {
	runner       shared.TxRunner
	reservations ReservationRepository
	payments     PaymentRepository
	entries      LedgerRepository
	referrals    ReferralRepository
	catalog      CatalogRepository
	holds        HoldStore
	outbox       OutboxRepository
	idempotency  IdempotencyRepository
	gw           gateway.Gateway
	clk          clock.Clock
	policy       config.PolicyConfig
}

func NewReservationCommands(
	runner shared.TxRunner,
	reservations ReservationRepository,
	payments PaymentRepository,
	entries LedgerRepository,
	referrals ReferralRepository,
	catalog CatalogRepository,
	holds HoldStore,
	outbox OutboxRepository,
	idempotency IdempotencyRepository,
	gw gateway.Gateway,
	clk clock.Clock,
	policy config.PolicyConfig,
) *ReservationCommands {
	return &ReservationCommands{
		runner:       runner,
		reservations: reservations,
		payments:     payments,
		entries:      entries,
		referrals:    referrals,
		catalog:      catalog,
		holds:        holds,
		outbox:       outbox,
		idempotency:  idempotency,
		gw:           gw,
		clk:          clk,
		policy:       policy,
	}
}

// Create books a slot: the Redis hold fences concurrent requests for the same
// interval, then the insert commits under the overlap exclusion constraint.
// The hold is released once the transaction settles either way; the committed
// row (or its absence) is authoritative from then on.
func (c *ReservationCommands) Create(ctx context.Context, input CreateReservationInput) (*CreateReservationOutput, error) {
	now := c.clk.Now()

	shop, services, err := c.resolveCatalog(ctx, input.ShopID, input.ServiceIDs)
	if err != nil {
		return nil, err
	}

	var duration time.Duration
	var totalAmount int64
	for _, svc := range services {
		duration += time.Duration(svc.DurationMinutes) * time.Minute
		totalAmount += svc.Price
	}

	slot, err := schedule.NewTimeRange(input.StartTime, input.StartTime.Add(duration))
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := c.validateSlot(shop, slot, now); err != nil {
		return nil, err
	}

	depositAmount := decimal.NewFromInt(totalAmount).Mul(c.policy.DepositRate).Floor().IntPart()

	if input.IdempotencyKey != uuid.Nil {
		replay, err := c.claimIdempotencyKey(ctx, input, now)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
	}

	hold, err := c.holds.Acquire(ctx, input.ShopID, slot)
	if err != nil {
		return nil, errs.Mark(err, ErrSlotUnavailable)
	}
	defer func() { _ = c.holds.Release(ctx, hold) }()

	res, err := reservation.NewReservation(
		input.CustomerID, input.ShopID, input.ServiceIDs,
		slot, duration, totalAmount, depositAmount, input.UsePoints, now,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}

	err = c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		if input.UsePoints > 0 {
			resID := res.ID()
			if _, err := spendPoints(ctx, tx, c.entries, input.CustomerID, input.UsePoints, &resID, now); err != nil {
				return err
			}
		}

		if err := c.reservations.Create(ctx, tx, res); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, ErrSlotUnavailable)
			}
			return err
		}

		if err := enqueueReservationEvent(ctx, c.outbox, tx, TopicReservationRequested, res, now); err != nil {
			return err
		}

		if input.IdempotencyKey != uuid.Nil {
			return c.idempotency.MarkCompleted(ctx, tx, input.IdempotencyKey, input.CustomerID, res.ID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateReservationOutput{
		ReservationID: res.ID(),
		SlotStart:     slot.Start(),
		SlotEnd:       slot.End(),
		TotalAmount:   totalAmount,
		DepositAmount: depositAmount,
		PointsUsed:    input.UsePoints,
	}, nil
}

// Confirm is the shop owner's acknowledgement of a requested reservation.
func (c *ReservationCommands) Confirm(ctx context.Context, actor identity.Actor, reservationID uuid.UUID) error {
	now := c.clk.Now()

	return c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		res, err := c.loadOwned(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}

		version := res.Version()
		if err := res.Confirm(now); err != nil {
			return errs.Mark(err, ErrStateConflict)
		}
		if err := c.reservations.UpdateTransition(ctx, tx, res, version); err != nil {
			return markTransitionErr(err)
		}
		return enqueueReservationEvent(ctx, c.outbox, tx, TopicReservationConfirmed, res, now)
	})
}

// Complete settles the visit. The remaining balance is charged through the
// gateway between two transactions: the first records the pending final
// payment, the second applies the state transition, credits earned points and
// evaluates referral qualification. A gateway failure leaves the reservation
// confirmed and the payment record failed.
func (c *ReservationCommands) Complete(ctx context.Context, actor identity.Actor, reservationID uuid.UUID, finalAmount int64) error {
	now := c.clk.Now()

	res, err := c.reservations.FindByID(ctx, c.runner.DB(), reservationID)
	if err != nil {
		return markNotFound(err, ErrReservationNotFound)
	}
	if _, err := c.authorizeOwner(ctx, actor, res.ShopID()); err != nil {
		return err
	}

	// Validate the transition and adjustment bounds before touching the
	// gateway; the committed check happens again inside the transaction.
	pointsUsed := res.PointsUsed()
	if err := res.Complete(now, finalAmount, c.policy.FinalAdjustLimit); err != nil {
		if errors.Is(err, reservation.ErrInvalidTransition) {
			return errs.Mark(err, ErrStateConflict)
		}
		return errs.Mark(err, ErrValidation)
	}

	paidTotal, err := c.payments.PaidTotal(ctx, c.runner.DB(), reservationID)
	if err != nil {
		return err
	}
	remaining := finalAmount - paidTotal - pointsUsed
	if remaining < 0 {
		remaining = 0
	}

	var rec *payment.Record
	if remaining > 0 {
		rec, err = c.chargeRemaining(ctx, reservationID, remaining, now)
		if err != nil {
			return err
		}
	}

	return c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		res, err := c.reservations.FindByID(ctx, tx, reservationID)
		if err != nil {
			return markNotFound(err, ErrReservationNotFound)
		}

		version := res.Version()
		if err := res.Complete(now, finalAmount, c.policy.FinalAdjustLimit); err != nil {
			if errors.Is(err, reservation.ErrInvalidTransition) {
				return errs.Mark(err, ErrStateConflict)
			}
			return errs.Mark(err, ErrValidation)
		}
		if err := c.reservations.UpdateTransition(ctx, tx, res, version); err != nil {
			return markTransitionErr(err)
		}

		if rec != nil {
			if err := rec.MarkPaid(now); err != nil {
				return err
			}
			if err := c.payments.UpdateStatus(ctx, tx, rec); err != nil {
				return err
			}
		}

		if err := c.creditEarnedPoints(ctx, tx, res, now); err != nil {
			return err
		}
		if err := c.settleReferral(ctx, tx, res, now); err != nil {
			return err
		}
		return enqueueReservationEvent(ctx, c.outbox, tx, TopicReservationCompleted, res, now)
	})
}

// CancelByUser applies the binary refund rule: full refund at or beyond the
// cutoff before the scheduled start, nothing inside it. Points used at
// booking come back only together with a full refund.
func (c *ReservationCommands) CancelByUser(ctx context.Context, actor identity.Actor, reservationID uuid.UUID) (*CancelReservationOutput, error) {
	now := c.clk.Now()

	var out CancelReservationOutput
	var paidRecords []*payment.Record

	err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		res, err := c.reservations.FindByID(ctx, tx, reservationID)
		if err != nil {
			return markNotFound(err, ErrReservationNotFound)
		}
		if res.CustomerID() != actor.UserID {
			return ErrPermissionDenied
		}

		shop, err := c.catalog.FindShop(ctx, res.ShopID())
		if err != nil {
			return markNotFound(err, ErrShopNotFound)
		}
		loc := shopLocation(shop)

		version := res.Version()
		if err := res.CancelByUser(now); err != nil {
			return errs.Mark(err, ErrStateConflict)
		}
		if err := c.reservations.UpdateTransition(ctx, tx, res, version); err != nil {
			return markTransitionErr(err)
		}

		out.RefundPercentage = payment.RefundPercentage(now, res.Slot().Start(), loc, c.policy.RefundCutoffHours)

		if out.RefundPercentage == 100 && res.PointsUsed() > 0 {
			returned, err := c.returnPoints(ctx, tx, res, now)
			if err != nil {
				return err
			}
			out.PointsReturned = returned
		}

		paidRecords, err = c.paidRecords(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		return enqueueReservationEvent(ctx, c.outbox, tx, TopicReservationCancelled, res, now)
	})
	if err != nil {
		return nil, err
	}

	refunded, err := c.refundRecords(ctx, paidRecords, out.RefundPercentage, now)
	out.RefundedAmount = refunded
	if err != nil {
		return &out, err
	}
	return &out, nil
}

// CancelByShop refunds everything regardless of timing; the customer is not
// at fault.
func (c *ReservationCommands) CancelByShop(ctx context.Context, actor identity.Actor, reservationID uuid.UUID) (*CancelReservationOutput, error) {
	now := c.clk.Now()

	var out CancelReservationOutput
	var paidRecords []*payment.Record

	err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		res, err := c.loadOwned(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}

		version := res.Version()
		if err := res.CancelByShop(now); err != nil {
			return errs.Mark(err, ErrStateConflict)
		}
		if err := c.reservations.UpdateTransition(ctx, tx, res, version); err != nil {
			return markTransitionErr(err)
		}

		out.RefundPercentage = 100
		if res.PointsUsed() > 0 {
			returned, err := c.returnPoints(ctx, tx, res, now)
			if err != nil {
				return err
			}
			out.PointsReturned = returned
		}

		paidRecords, err = c.paidRecords(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		return enqueueReservationEvent(ctx, c.outbox, tx, TopicReservationCancelled, res, now)
	})
	if err != nil {
		return nil, err
	}

	refunded, err := c.refundRecords(ctx, paidRecords, 100, now)
	out.RefundedAmount = refunded
	if err != nil {
		return &out, err
	}
	return &out, nil
}

// MarkNoShow records a customer who never arrived. Only valid once the grace
// period after the scheduled start has elapsed; nothing is refunded.
func (c *ReservationCommands) MarkNoShow(ctx context.Context, actor identity.Actor, reservationID uuid.UUID) error {
	now := c.clk.Now()

	return c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		res, err := c.loadOwned(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}
		return c.transitionNoShow(ctx, tx, res, now)
	})
}

// SweepNoShows is the periodic system pass over confirmed reservations whose
// grace period has elapsed. Rows are claimed with SKIP LOCKED so concurrent
// sweepers never collide.
func (c *ReservationCommands) SweepNoShows(ctx context.Context, limit int32) (int, error) {
	now := c.clk.Now()

	var swept int
	err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		due, err := c.reservations.FindDueNoShow(ctx, tx, now.Add(-c.policy.NoShowGrace), limit)
		if err != nil {
			return err
		}
		for _, res := range due {
			if err := c.transitionNoShow(ctx, tx, res, now); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	return swept, err
}

// SweepStaleDeposits cancels requested reservations whose deposit was never
// paid within the timeout. Points used at booking are returned in full.
func (c *ReservationCommands) SweepStaleDeposits(ctx context.Context, limit int32) (int, error) {
	now := c.clk.Now()

	var swept int
	err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		stale, err := c.reservations.FindStaleRequested(ctx, tx, now.Add(-c.policy.DepositTimeout), limit)
		if err != nil {
			return err
		}
		for _, res := range stale {
			paid, err := c.payments.PaidTotal(ctx, tx, res.ID())
			if err != nil {
				return err
			}
			if paid > 0 {
				continue
			}

			version := res.Version()
			if err := res.CancelByShop(now); err != nil {
				return errs.Mark(err, ErrStateConflict)
			}
			if err := c.reservations.UpdateTransition(ctx, tx, res, version); err != nil {
				return markTransitionErr(err)
			}
			if res.PointsUsed() > 0 {
				if _, err := c.returnPoints(ctx, tx, res, now); err != nil {
					return err
				}
			}
			if err := enqueueReservationEvent(ctx, c.outbox, tx, TopicReservationCancelled, res, now); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	return swept, err
}

func (c *ReservationCommands) transitionNoShow(ctx context.Context, tx db.DBTX, res *reservation.Reservation, now time.Time) error {
	version := res.Version()
	if err := res.MarkNoShow(now, c.policy.NoShowGrace); err != nil {
		if errors.Is(err, reservation.ErrNoShowTooEarly) {
			return errs.Mark(err, ErrValidation)
		}
		return errs.Mark(err, ErrStateConflict)
	}
	if err := c.reservations.UpdateTransition(ctx, tx, res, version); err != nil {
		return markTransitionErr(err)
	}
	return enqueueReservationEvent(ctx, c.outbox, tx, TopicReservationNoShow, res, now)
}

func (c *ReservationCommands) chargeRemaining(ctx context.Context, reservationID uuid.UUID, amount int64, now time.Time) (*payment.Record, error) {
	intent, err := c.gw.CreateIntent(ctx, reservationID, amount)
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentGateway)
	}

	rec, err := payment.NewRecord(reservationID, payment.StageFinal, amount, intent.ExternalReference, now)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		return c.payments.Create(ctx, tx, rec)
	}); err != nil {
		return nil, err
	}

	if err := c.gw.Charge(ctx, intent.ExternalReference, amount); err != nil {
		_ = c.runner.WithinTx(ctx, func(tx db.DBTX) error {
			if markErr := rec.MarkFailed(now); markErr != nil {
				return markErr
			}
			return c.payments.UpdateStatus(ctx, tx, rec)
		})
		return nil, errs.Mark(err, ErrPaymentGateway)
	}
	return rec, nil
}

func (c *ReservationCommands) creditEarnedPoints(ctx context.Context, tx db.DBTX, res *reservation.Reservation, now time.Time) error {
	multiplier := decimal.NewFromInt(1)
	status, err := c.referrals.GetInfluencer(ctx, tx, res.CustomerID())
	if err != nil {
		return err
	}
	if status != nil {
		multiplier = status.Multiplier
	}

	points := ledgerCreditable(res.SettledAmount(), c.policy, multiplier)
	if points == 0 {
		return nil
	}

	entry, err := newEarnEntry(res.CustomerID(), res.ID(), points, now, c.policy)
	if err != nil {
		return err
	}
	if err := c.entries.Append(ctx, tx, entry); err != nil {
		return err
	}
	return enqueuePointsEvent(ctx, c.outbox, tx, TopicPointsCredited, entry, now)
}

// settleReferral qualifies the referee's relationship on their first
// completed and paid reservation, credits the referrer's one-shot bonus and
// re-evaluates influencer promotion. The locked relationship row makes all of
// it happen at most once.
func (c *ReservationCommands) settleReferral(ctx context.Context, tx db.DBTX, res *reservation.Reservation, now time.Time) error {
	rel, err := c.referrals.FindByRefereeForUpdate(ctx, tx, res.CustomerID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return err
	}
	if rel.IsQualified() {
		return nil
	}

	// A relationship registered after the customer already converted on
	// their own never qualifies.
	hadPrior, err := c.reservations.HasCompletedPaid(ctx, tx, res.CustomerID(), res.ID())
	if err != nil {
		return err
	}
	if hadPrior {
		return nil
	}

	if err := rel.Qualify(now); err != nil {
		return err
	}
	if err := c.referrals.SetQualified(ctx, tx, rel); err != nil {
		return err
	}

	// The bonus base uses the plain earning rate; an influencer referrer
	// never compounds their multiplier into referral payouts.
	bonus := referral.BonusPoints(res.SettledAmount(), c.policy.EarnCapAmount, c.policy.EarnRate, c.policy.ReferralRate)
	if bonus > 0 {
		entry, err := ledger.NewReferralBonusEntry(rel.ReferrerID(), res.ID(), bonus, now, c.policy.AvailabilityDelay, c.policy.PointLifetime)
		if err != nil {
			return err
		}
		if err := c.entries.Append(ctx, tx, entry); err != nil {
			return err
		}
		if err := enqueuePointsEvent(ctx, c.outbox, tx, TopicPointsCredited, entry, now); err != nil {
			return err
		}
	}

	total, successful, err := c.referrals.ReferralCounts(ctx, tx, rel.ReferrerID())
	if err != nil {
		return err
	}
	if referral.ShouldPromote(total, successful, c.policy.InfluencerThreshold) {
		return c.referrals.Promote(ctx, tx, &referral.InfluencerStatus{
			UserID:     rel.ReferrerID(),
			PromotedAt: now,
			Multiplier: c.policy.InfluencerMultiplier,
		})
	}
	return nil
}

func (c *ReservationCommands) returnPoints(ctx context.Context, tx db.DBTX, res *reservation.Reservation, now time.Time) (int64, error) {
	entry, err := newReturnEntry(res.CustomerID(), res.PointsUsed(), now, c.policy)
	if err != nil {
		return 0, err
	}
	if err := c.entries.Append(ctx, tx, entry); err != nil {
		return 0, err
	}
	if err := enqueuePointsEvent(ctx, c.outbox, tx, TopicPointsCredited, entry, now); err != nil {
		return 0, err
	}
	return res.PointsUsed(), nil
}

func (c *ReservationCommands) paidRecords(ctx context.Context, tx db.DBTX, reservationID uuid.UUID) ([]*payment.Record, error) {
	records, err := c.payments.FindByReservation(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	paid := make([]*payment.Record, 0, len(records))
	for _, rec := range records {
		if rec.IsPaid() {
			paid = append(paid, rec)
		}
	}
	return paid, nil
}

// refundRecords runs after the cancellation commit; the reservation is
// already terminal, so a gateway failure here surfaces as an error but the
// refunds it blocked are retried out of band.
func (c *ReservationCommands) refundRecords(ctx context.Context, records []*payment.Record, percentage int, now time.Time) (int64, error) {
	var refunded int64
	for _, rec := range records {
		amount := payment.RefundAmount(rec.Amount(), percentage)
		if amount == 0 {
			continue
		}
		if err := c.gw.Refund(ctx, rec.ExternalReference(), amount); err != nil {
			return refunded, errs.Mark(err, ErrPaymentGateway)
		}
		if err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
			if err := rec.MarkRefunded(now); err != nil {
				return err
			}
			return c.payments.UpdateStatus(ctx, tx, rec)
		}); err != nil {
			return refunded, err
		}
		refunded += amount
	}
	return refunded, nil
}

func (c *ReservationCommands) resolveCatalog(ctx context.Context, shopID uuid.UUID, serviceIDs []uuid.UUID) (*repository.ShopSnapshot, []*repository.ServiceSnapshot, error) {
	shop, err := c.catalog.FindShop(ctx, shopID)
	if err != nil {
		return nil, nil, markNotFound(err, ErrShopNotFound)
	}
	services, err := c.catalog.FindServices(ctx, shopID, serviceIDs)
	if err != nil {
		return nil, nil, markNotFound(err, ErrServiceNotFound)
	}
	return shop, services, nil
}

func (c *ReservationCommands) validateSlot(shop *repository.ShopSnapshot, slot schedule.TimeRange, now time.Time) error {
	if !slot.Start().After(now) {
		return errs.Mark(errs.New("slot starts in the past"), ErrValidation)
	}
	advanceDays := shop.AdvanceDays
	if advanceDays <= 0 {
		advanceDays = c.policy.BookingAdvanceDays
	}
	if slot.Start().After(now.AddDate(0, 0, advanceDays)) {
		return errs.Mark(errs.New("slot beyond booking window"), ErrValidation)
	}

	window, err := schedule.OperatingWindow(slot.Start(), shop.OpenMinutes, shop.CloseMinutes, shopLocation(shop))
	if err != nil {
		return errs.Mark(err, ErrValidation)
	}
	if !window.Contains(slot) {
		return errs.Mark(errs.New("slot outside operating hours"), ErrValidation)
	}
	return nil
}

// claimIdempotencyKey claims the key or resolves what to do with an existing
// one: replay a completed result, reject a different request reusing the key,
// or report an in-flight duplicate.
func (c *ReservationCommands) claimIdempotencyKey(ctx context.Context, input CreateReservationInput, now time.Time) (*CreateReservationOutput, error) {
	expiresAt := now.Add(24 * time.Hour)
	if err := c.idempotency.TryInsert(ctx, input.IdempotencyKey, input.CustomerID, "reservations.create", input.RequestHash, expiresAt); err != nil {
		return nil, err
	}

	rec, err := c.idempotency.Get(ctx, input.IdempotencyKey, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if rec.RequestHash != input.RequestHash {
		return nil, ErrDuplicateRequest
	}
	if rec.Status != repository.IdempotencyStatusCompleted {
		// Either our freshly claimed key or a concurrent retry that has not
		// committed yet; proceed, the exclusion constraint settles the race.
		return nil, nil
	}
	if rec.ResultReservationID == nil {
		return nil, ErrRequestInProgress
	}

	res, err := c.reservations.FindByID(ctx, c.runner.DB(), *rec.ResultReservationID)
	if err != nil {
		return nil, markNotFound(err, ErrReservationNotFound)
	}
	return &CreateReservationOutput{
		ReservationID: res.ID(),
		SlotStart:     res.Slot().Start(),
		SlotEnd:       res.Slot().End(),
		TotalAmount:   res.TotalAmount(),
		DepositAmount: res.DepositAmount(),
		PointsUsed:    res.PointsUsed(),
		Replayed:      true,
	}, nil
}

func (c *ReservationCommands) loadOwned(ctx context.Context, tx db.DBTX, actor identity.Actor, reservationID uuid.UUID) (*reservation.Reservation, error) {
	res, err := c.reservations.FindByID(ctx, tx, reservationID)
	if err != nil {
		return nil, markNotFound(err, ErrReservationNotFound)
	}
	if _, err := c.authorizeOwner(ctx, actor, res.ShopID()); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *ReservationCommands) authorizeOwner(ctx context.Context, actor identity.Actor, shopID uuid.UUID) (*repository.ShopSnapshot, error) {
	shop, err := c.catalog.FindShop(ctx, shopID)
	if err != nil {
		return nil, markNotFound(err, ErrShopNotFound)
	}
	if actor.IsSystem() {
		return shop, nil
	}
	if !actor.IsShopOwner() || shop.OwnerID != actor.UserID {
		return nil, ErrPermissionDenied
	}
	return shop, nil
}

func markNotFound(err error, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, sentinel)
	}
	return err
}

func markTransitionErr(err error) error {
	if infra.IsKind(err, infra.KindConflict) {
		return errs.Mark(err, ErrStateConflict)
	}
	return err
}

func shopLocation(shop *repository.ShopSnapshot) *time.Location {
	loc, err := time.LoadLocation(shop.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
