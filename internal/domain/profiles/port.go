package profiles

import (
	"context"
	"errors"
)

// ErrNotFound indicates no profile exists for an authenticated principal.
// This is a provisioning defect, not a user error.
var ErrNotFound = errors.New("user profile not found")

// Repository port for the quota ledger.
type Repository interface {
	Get(ctx context.Context, id string) (*Profile, error)

	// ConsumeUsage spends one quota unit iff usage_count < usage_limit,
	// as a single conditional write. It returns false when no unit was
	// left to spend; that outcome is not an error.
	ConsumeUsage(ctx context.Context, id string) (bool, error)

	// Administrative operations, not on the analysis hot path.
	ResetUsage(ctx context.Context, id string) error
	SetLimit(ctx context.Context, id string, limit int) error
	List(ctx context.Context, page, pageSize int) ([]*Profile, error)
}
