package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundPercentage implements the binary user-cancellation rule: 100% at or
// beyond the cutoff before the scheduled start, 0% inside it. The comparison
// is evaluated in the shop's local time zone; the cutoff boundary itself is
// inclusive.
func RefundPercentage(now, scheduledStart time.Time, loc *time.Location, cutoffHours int) int {
	hoursUntil := scheduledStart.In(loc).Sub(now.In(loc))
	if hoursUntil >= time.Duration(cutoffHours)*time.Hour {
		return 100
	}
	return 0
}

// RefundAmount applies a percentage to the paid total, truncating toward zero.
func RefundAmount(paidTotal int64, percentage int) int64 {
	if percentage <= 0 || paidTotal <= 0 {
		return 0
	}
	if percentage >= 100 {
		return paidTotal
	}
	return decimal.NewFromInt(paidTotal).
		Mul(decimal.NewFromInt(int64(percentage))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}
