package postgres

import (
	"context"

	"github.com/classward/classward/internal/domain/student"
	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/postgres"
)

type studentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewStudentRepository(db *postgres.DB, logger *logger.Logger) student.Repository {
	return &studentRepository{db: db, logger: logger}
}

func (r *studentRepository) ParentLinked(ctx context.Context, parentID, studentID string) (bool, error) {
	query := `
		SELECT COUNT(1) FROM parent_student_links
		WHERE
			parent_id = :parent_id AND
			student_id = :student_id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"parent_id":  parentID,
		"student_id": studentID,
	})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check student link").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, ierr.WithError(err).
				WithHint("Failed to check student link").
				Mark(ierr.ErrDatabase)
		}
	}

	return count > 0, nil
}
