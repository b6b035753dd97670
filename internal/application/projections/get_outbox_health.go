package projections

import (
	"context"

	"gymdesk/internal/domain/outbox"
)

// OutboxHealthStore defines the outbox store interface for this projection.
type OutboxHealthStore interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
	ListFailed(ctx context.Context, limit int) ([]outbox.Entry, error)
}

// GetOutboxHealthResult summarizes the outbox for the admin ops page.
type GetOutboxHealthResult struct {
	Pending   int
	Retrying  int
	Done      int
	Failed    int
	Abandoned int
	// FailedEntries are entries that exhausted their attempts and need an
	// admin decision (retry or abandon).
	FailedEntries []outbox.Entry
}

// QueryGetOutboxHealth reports per-status counts and the entries stuck in the
// failed state.
// PRE: Store is wired
// POST: Returns counts for every lifecycle status
func QueryGetOutboxHealth(ctx context.Context, store OutboxHealthStore, failedLimit int) (GetOutboxHealthResult, error) {
	counts, err := store.CountByStatus(ctx)
	if err != nil {
		return GetOutboxHealthResult{}, err
	}

	result := GetOutboxHealthResult{
		Pending:   counts[outbox.StatusPending],
		Retrying:  counts[outbox.StatusRetrying],
		Done:      counts[outbox.StatusDone],
		Failed:    counts[outbox.StatusFailed],
		Abandoned: counts[outbox.StatusAbandoned],
	}

	if result.Failed > 0 {
		failed, err := store.ListFailed(ctx, failedLimit)
		if err != nil {
			return GetOutboxHealthResult{}, err
		}
		result.FailedEntries = failed
	}

	return result, nil
}
