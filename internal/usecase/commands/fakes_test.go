//go:build unit

package commands_test

import (
	"context"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/domain/payment"
	"beautybook/internal/domain/referral"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"
	"beautybook/internal/infra/gateway"
	"beautybook/internal/infra/holdstore"
	"beautybook/internal/infra/repository"

	"github.com/google/uuid"
)

type fakeRunner struct{}

func (fakeRunner) WithinTx(_ context.Context, fn func(tx db.DBTX) error) error { return fn(nil) }
func (fakeRunner) DB() db.DBTX                                                 { return nil }

type fakeReservations struct {
	byID             map[uuid.UUID]*reservation.Reservation
	createErr        error
	updateErr        error
	dueNoShow        []*reservation.Reservation
	staleRequested   []*reservation.Reservation
	hasCompletedPaid bool
	updates          int
}

func newFakeReservations(list ...*reservation.Reservation) *fakeReservations {
	f := &fakeReservations{byID: make(map[uuid.UUID]*reservation.Reservation)}
	for _, res := range list {
		f.byID[res.ID()] = res
	}
	return f
}

func (f *fakeReservations) Create(_ context.Context, _ db.DBTX, res *reservation.Reservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[res.ID()] = res
	return nil
}

// FindByID hands back a fresh copy the way a real repository rehydrates a
// row, so callers mutating the result never alias the stored state.
func (f *fakeReservations) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := f.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return cloneReservation(res), nil
}

func cloneReservation(r *reservation.Reservation) *reservation.Reservation {
	return reservation.Reconstruct(
		r.ID(), r.CustomerID(), r.ShopID(), r.ServiceIDs(), r.Slot(), r.Status(),
		r.TotalAmount(), r.DepositAmount(), r.FinalAmount(), r.PointsUsed(), r.Version(),
		r.ConfirmedAt(), r.CompletedAt(), r.CancelledAt(), r.NoShowAt(),
		r.CreatedAt(), r.UpdatedAt(),
	)
}

func (f *fakeReservations) UpdateTransition(_ context.Context, _ db.DBTX, res *reservation.Reservation, _ int32) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.byID[res.ID()] = res
	f.updates++
	return nil
}

func (f *fakeReservations) BusyRanges(_ context.Context, _ db.DBTX, _ uuid.UUID, _ schedule.TimeRange) ([]schedule.TimeRange, error) {
	return nil, nil
}

func (f *fakeReservations) FindDueNoShow(_ context.Context, _ db.DBTX, _ time.Time, _ int32) ([]*reservation.Reservation, error) {
	return f.dueNoShow, nil
}

func (f *fakeReservations) FindStaleRequested(_ context.Context, _ db.DBTX, _ time.Time, _ int32) ([]*reservation.Reservation, error) {
	return f.staleRequested, nil
}

func (f *fakeReservations) HasCompletedPaid(_ context.Context, _ db.DBTX, _ uuid.UUID, _ uuid.UUID) (bool, error) {
	return f.hasCompletedPaid, nil
}

type fakePayments struct {
	records   []*payment.Record
	paidTotal int64
	updated   []*payment.Record
}

func (f *fakePayments) Create(_ context.Context, _ db.DBTX, rec *payment.Record) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakePayments) FindByExternalRefForUpdate(_ context.Context, _ db.DBTX, ref string) (*payment.Record, error) {
	for _, rec := range f.records {
		if rec.ExternalReference() == ref {
			return rec, nil
		}
	}
	return nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
}

func (f *fakePayments) FindByReservation(_ context.Context, _ db.DBTX, reservationID uuid.UUID) ([]*payment.Record, error) {
	var out []*payment.Record
	for _, rec := range f.records {
		if rec.ReservationID() == reservationID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, _ db.DBTX, rec *payment.Record) error {
	f.updated = append(f.updated, rec)
	return nil
}

func (f *fakePayments) PaidTotal(_ context.Context, _ db.DBTX, _ uuid.UUID) (int64, error) {
	return f.paidTotal, nil
}

type fakeLedger struct {
	spendable  []*ledger.Entry
	appended   []*ledger.Entry
	decrements map[uuid.UUID]int64
	lapsed     []*ledger.Entry
}

func newFakeLedger(spendable ...*ledger.Entry) *fakeLedger {
	return &fakeLedger{spendable: spendable, decrements: make(map[uuid.UUID]int64)}
}

func (f *fakeLedger) Append(_ context.Context, _ db.DBTX, e *ledger.Entry) error {
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeLedger) SpendableForUpdate(_ context.Context, _ db.DBTX, _ uuid.UUID, _ time.Time) ([]*ledger.Entry, error) {
	return f.spendable, nil
}

func (f *fakeLedger) ApplyDecrement(_ context.Context, _ db.DBTX, entryID uuid.UUID, amount int64) error {
	f.decrements[entryID] += amount
	return nil
}

func (f *fakeLedger) FindLapsedForUpdate(_ context.Context, _ db.DBTX, _ time.Time, _ int32) ([]*ledger.Entry, error) {
	return f.lapsed, nil
}

type fakeReferrals struct {
	rel        *referral.Relationship
	total      int
	successful int
	influencer *referral.InfluencerStatus
	qualified  bool
	promoted   bool
	created    []*referral.Relationship
	createErr  error
}

func (f *fakeReferrals) Create(_ context.Context, _ db.DBTX, rel *referral.Relationship) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rel)
	return nil
}

func (f *fakeReferrals) FindByRefereeForUpdate(_ context.Context, _ db.DBTX, _ uuid.UUID) (*referral.Relationship, error) {
	if f.rel == nil {
		return nil, infra.WrapRepoErr("referral not found", nil, infra.KindNotFound)
	}
	return f.rel, nil
}

func (f *fakeReferrals) SetQualified(_ context.Context, _ db.DBTX, _ *referral.Relationship) error {
	f.qualified = true
	return nil
}

func (f *fakeReferrals) ReferralCounts(_ context.Context, _ db.DBTX, _ uuid.UUID) (int, int, error) {
	return f.total, f.successful, nil
}

func (f *fakeReferrals) GetInfluencer(_ context.Context, _ db.DBTX, _ uuid.UUID) (*referral.InfluencerStatus, error) {
	return f.influencer, nil
}

func (f *fakeReferrals) Promote(_ context.Context, _ db.DBTX, _ *referral.InfluencerStatus) error {
	f.promoted = true
	return nil
}

type fakeCatalog struct {
	shop     *repository.ShopSnapshot
	services []*repository.ServiceSnapshot
}

func (f *fakeCatalog) FindShop(_ context.Context, _ uuid.UUID) (*repository.ShopSnapshot, error) {
	if f.shop == nil {
		return nil, infra.WrapRepoErr("shop not found", nil, infra.KindNotFound)
	}
	return f.shop, nil
}

func (f *fakeCatalog) FindServices(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]*repository.ServiceSnapshot, error) {
	if len(f.services) == 0 {
		return nil, infra.WrapRepoErr("service not found", nil, infra.KindNotFound)
	}
	return f.services, nil
}

type fakeHolds struct {
	acquireErr error
	acquired   int
	released   int
}

func (f *fakeHolds) Acquire(_ context.Context, shopID uuid.UUID, slot schedule.TimeRange) (*holdstore.Hold, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.acquired++
	return &holdstore.Hold{Token: uuid.NewString(), ShopID: shopID, Range: slot}, nil
}

func (f *fakeHolds) Release(_ context.Context, _ *holdstore.Hold) error {
	f.released++
	return nil
}

func (f *fakeHolds) HeldRanges(_ context.Context, _ uuid.UUID, _ schedule.TimeRange) ([]schedule.TimeRange, error) {
	return nil, nil
}

type fakeOutbox struct {
	topics []string
}

func (f *fakeOutbox) Enqueue(_ context.Context, _ db.DBTX, topic string, _ []byte, _ time.Time) (uuid.UUID, error) {
	f.topics = append(f.topics, topic)
	return uuid.New(), nil
}

type fakeIdempotency struct {
	record    *repository.IdempotencyRecord
	completed bool
}

func (f *fakeIdempotency) TryInsert(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	if f.record == nil {
		f.record = &repository.IdempotencyRecord{
			Key:         key,
			UserID:      userID,
			Endpoint:    endpoint,
			RequestHash: requestHash,
			Status:      repository.IdempotencyStatusProcessing,
			ExpiresAt:   expiresAt,
		}
	}
	return nil
}

func (f *fakeIdempotency) Get(_ context.Context, _, _ uuid.UUID) (*repository.IdempotencyRecord, error) {
	if f.record == nil {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return f.record, nil
}

func (f *fakeIdempotency) MarkCompleted(_ context.Context, _ db.DBTX, _, _, resultReservationID uuid.UUID) error {
	f.completed = true
	if f.record != nil {
		f.record.Status = repository.IdempotencyStatusCompleted
		f.record.ResultReservationID = &resultReservationID
	}
	return nil
}

type refundCall struct {
	ref    string
	amount int64
}

type fakeGateway struct {
	intentErr error
	chargeErr error
	refundErr error
	intents   int
	charges   []refundCall
	refunds   []refundCall
}

func (f *fakeGateway) CreateIntent(_ context.Context, reservationID uuid.UUID, _ int64) (*gateway.Intent, error) {
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	f.intents++
	return &gateway.Intent{
		ExternalReference: "ref-" + reservationID.String(),
		RedirectURL:       "https://pay.example/" + reservationID.String(),
	}, nil
}

func (f *fakeGateway) Charge(_ context.Context, ref string, amount int64) error {
	if f.chargeErr != nil {
		return f.chargeErr
	}
	f.charges = append(f.charges, refundCall{ref: ref, amount: amount})
	return nil
}

func (f *fakeGateway) Refund(_ context.Context, ref string, amount int64) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunds = append(f.refunds, refundCall{ref: ref, amount: amount})
	return nil
}
