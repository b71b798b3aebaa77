package ledger

import "time"

// Balance is always derived by folding over entries, never stored.
type Balance struct {
	Available int64 // spendable right now
	Pending   int64 // credited but still inside the availability delay
}

// BalanceOf folds a user's entries at a point in time. Available counts the
// unconsumed remainder of live credits; Pending counts credits whose
// availability delay has not elapsed.
func BalanceOf(entries []*Entry, now time.Time) Balance {
	var b Balance
	for _, e := range entries {
		if !e.kind.IsCredit() {
			continue
		}
		switch {
		case e.SpendableAt(now):
			b.Available += e.remainingUnconsumed
		case e.availableFrom.After(now) && e.expiresAt.After(now):
			b.Pending += e.remainingUnconsumed
		}
	}
	return b
}

// SignedSum is the pure fold over all entry amounts. With expiry reversals
// appended it always equals available + pending + consumed-but-unreversed
// credit, which the sweep drives to available + pending.
func SignedSum(entries []*Entry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.amount
	}
	return sum
}
