package ledger

import (
	"sort"
	"time"
)

// Decrement is one step of a consumption plan: take Amount from the credit
// entry identified by EntryID.
type Decrement struct {
	Entry  *Entry
	Amount int64
}

// PlanConsumption selects spendable credit entries oldest-eligible-first
// (ascending availableFrom, then createdAt) and splits the requested amount
// across them. It is all-or-nothing: when the spendable total cannot cover
// the amount it returns ErrInsufficientPoints and no entry is touched.
func PlanConsumption(entries []*Entry, amount int64, now time.Time) ([]Decrement, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	eligible := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.SpendableAt(now) {
			eligible = append(eligible, e)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if !eligible[i].availableFrom.Equal(eligible[j].availableFrom) {
			return eligible[i].availableFrom.Before(eligible[j].availableFrom)
		}
		return eligible[i].createdAt.Before(eligible[j].createdAt)
	})

	var plan []Decrement
	remaining := amount
	for _, e := range eligible {
		if remaining == 0 {
			break
		}
		take := e.remainingUnconsumed
		if take > remaining {
			take = remaining
		}
		plan = append(plan, Decrement{Entry: e, Amount: take})
		remaining -= take
	}

	if remaining > 0 {
		return nil, ErrInsufficientPoints
	}
	return plan, nil
}

// Apply executes a plan against its entries. Callers persist the decrements
// and the matching use entry in the same transaction.
func Apply(plan []Decrement) error {
	for _, d := range plan {
		if err := d.Entry.consume(d.Amount); err != nil {
			return err
		}
	}
	return nil
}
