package student

import (
	"time"
)

// ParentLink authorizes a parent to act on a student's subscription.
// The existence of a row is the whole authorization check.
type ParentLink struct {
	ID        string    `db:"id" json:"id"`
	ParentID  string    `db:"parent_id" json:"parent_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
