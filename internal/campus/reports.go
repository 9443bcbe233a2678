package campus

import (
	"context"
	"database/sql"
	"errors"
	"math"
)

// The reporting queries keep arithmetic out of SQL: counts and averages
// come back raw and percentages/rounding happen here, which keeps the
// statements identical across both drivers.

// EventPopularityFilter narrows EventPopularity; zero values mean no filter.
type EventPopularityFilter struct {
	Type      string
	CollegeID int64
}

// EventPopularity returns every matching event with its registration
// count, most popular first, ties broken by event date descending. Events
// with zero registrations are included.
func (r *Repository) EventPopularity(ctx context.Context, f EventPopularityFilter) ([]EventPopularityRow, error) {
	query := `
		SELECT e.id, e.name, e.type, e.date, e.college_id, COUNT(r.id) AS registrations
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id`
	args := []any{}
	where := ""
	if f.Type != "" {
		where += " AND e.type = ?"
		args = append(args, f.Type)
	}
	if f.CollegeID != 0 {
		where += " AND e.college_id = ?"
		args = append(args, f.CollegeID)
	}
	if where != "" {
		query += " WHERE 1=1" + where
	}
	query += `
		GROUP BY e.id, e.name, e.type, e.date, e.college_id
		ORDER BY registrations DESC, e.date DESC`

	rows, err := r.db.Client.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventPopularityRow
	for rows.Next() {
		var row EventPopularityRow
		if err := rows.Scan(&row.EventID, &row.Name, &row.Type, &row.Date, &row.CollegeID, &row.Registrations); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AttendanceSummary computes registration and presence totals for one
// event. Returns (nil, nil) when the event does not exist. The percentage
// is nil for an event with no registrations.
func (r *Repository) AttendanceSummary(ctx context.Context, eventID int64) (*AttendanceSummary, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT e.id, e.name,
		       COUNT(DISTINCT r.id),
		       SUM(CASE WHEN a.present THEN 1 ELSE 0 END)
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		LEFT JOIN attendance a ON a.registration_id = r.id
		WHERE e.id = ?
		GROUP BY e.id, e.name
	`), eventID)

	var s AttendanceSummary
	var present sql.NullInt64
	if err := row.Scan(&s.EventID, &s.Name, &s.TotalRegistrations, &present); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.PresentCount = present.Int64
	if s.TotalRegistrations > 0 {
		pct := round2(100 * float64(s.PresentCount) / float64(s.TotalRegistrations))
		s.AttendancePercentage = &pct
	}
	return &s, nil
}

// FeedbackSummary computes the average rating and feedback count for one
// event. Returns (nil, nil) when the event does not exist. The average is
// nil when no feedback has been submitted.
func (r *Repository) FeedbackSummary(ctx context.Context, eventID int64) (*FeedbackSummary, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT e.id, e.name, AVG(f.rating), COUNT(f.id)
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		LEFT JOIN feedback f ON f.registration_id = r.id
		WHERE e.id = ?
		GROUP BY e.id, e.name
	`), eventID)

	var s FeedbackSummary
	var avg sql.NullFloat64
	if err := row.Scan(&s.EventID, &s.Name, &avg, &s.FeedbackCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if avg.Valid {
		rounded := round2(avg.Float64)
		s.AvgRating = &rounded
	}
	return &s, nil
}

// StudentParticipation counts events the student attended with
// present=true. Returns (nil, nil) when the student does not exist.
func (r *Repository) StudentParticipation(ctx context.Context, studentID int64) (*ParticipationRow, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT s.id, s.name, COUNT(a.id)
		FROM students s
		LEFT JOIN registrations r ON r.student_id = s.id
		LEFT JOIN attendance a ON a.registration_id = r.id AND a.present
		WHERE s.id = ?
		GROUP BY s.id, s.name
	`), studentID)

	var p ParticipationRow
	if err := row.Scan(&p.StudentID, &p.Name, &p.EventsAttended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// TopStudents returns up to limit students ordered by attended-event
// count descending, then name ascending. CollegeID of 0 means all
// colleges. Students with zero attendance still rank (with 0).
func (r *Repository) TopStudents(ctx context.Context, limit int, collegeID int64) ([]TopStudentRow, error) {
	query := `
		SELECT s.id, s.name, s.email, s.college_id, COUNT(a.id) AS events_attended
		FROM students s
		LEFT JOIN registrations r ON r.student_id = s.id
		LEFT JOIN attendance a ON a.registration_id = r.id AND a.present`
	args := []any{}
	if collegeID != 0 {
		query += " WHERE s.college_id = ?"
		args = append(args, collegeID)
	}
	query += `
		GROUP BY s.id, s.name, s.email, s.college_id
		ORDER BY events_attended DESC, s.name ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Client.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopStudentRow
	for rows.Next() {
		var row TopStudentRow
		if err := rows.Scan(&row.StudentID, &row.Name, &row.Email, &row.CollegeID, &row.EventsAttended); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
