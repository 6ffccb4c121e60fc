package student

import (
	"context"
)

// Repository is read-only to the plan-change workflow
type Repository interface {
	// ParentLinked reports whether a ParentLink row exists for the pair
	ParentLinked(ctx context.Context, parentID, studentID string) (bool, error)
}
