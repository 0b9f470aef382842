package currency

import "context"

type (
	// Refresher fetches rates for a base and retains the result.
	Refresher interface {
		Refresh(ctx context.Context, base Code, targets []Code) (Snapshot, error)
	}
)
