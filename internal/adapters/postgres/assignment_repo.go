package postgres

import (
	"context"

	"github.com/voyago/voyago/internal/core/domain"
)

// AssignmentRepo implements ports.AssignmentRepository with pgx.
type AssignmentRepo struct {
	db *DB
}

// NewAssignmentRepo creates a new AssignmentRepo.
func NewAssignmentRepo(db *DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// Insert records one plan assignment. Replays of the same
// (user, place, date) tuple refresh the timestamp instead of
// duplicating the row.
func (r *AssignmentRepo) Insert(ctx context.Context, a *domain.PlanAssignment) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO plan_assignments (user_id, place_id, daily_plan_id, session_id, place_name, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, place_id, daily_plan_id) DO UPDATE
		SET session_id = EXCLUDED.session_id, assigned_at = EXCLUDED.assigned_at
	`, a.UserID, a.PlaceID, a.DateKey, a.SessionID, a.PlaceName, a.AssignedAt)
	return err
}

// ListByUser returns a user's assignments, most recent first.
func (r *AssignmentRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.PlanAssignment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT user_id, place_id, daily_plan_id, COALESCE(session_id, ''), COALESCE(place_name, ''), assigned_at
		FROM plan_assignments
		WHERE user_id = $1
		ORDER BY assigned_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []domain.PlanAssignment
	for rows.Next() {
		var a domain.PlanAssignment
		if err := rows.Scan(&a.UserID, &a.PlaceID, &a.DateKey, &a.SessionID, &a.PlaceName, &a.AssignedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
