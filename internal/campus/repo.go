package campus

import (
	"context"
	"database/sql"
	"errors"

	"campusevents/internal/store"
)

// ErrNoRegistration is returned by the upsert paths when the (student,
// event) pair has no registration row.
var ErrNoRegistration = errors.New("registration not found")

// Repository persists campus entities through a store.DB handle. All SQL
// uses ?-placeholders and is rebound per dialect by the handle.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// InsertCollege creates a college and returns its id.
func (r *Repository) InsertCollege(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO colleges (name) VALUES (?) RETURNING id
	`), name).Scan(&id)
	return id, err
}

// InsertStudent creates a student and returns its id.
func (r *Repository) InsertStudent(ctx context.Context, collegeID int64, name, email string) (int64, error) {
	var id int64
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO students (college_id, name, email) VALUES (?, ?, ?) RETURNING id
	`), collegeID, name, email).Scan(&id)
	return id, err
}

// InsertEvent creates an event and returns its id.
func (r *Repository) InsertEvent(ctx context.Context, e Event) (int64, error) {
	var id int64
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO events (college_id, name, type, date, capacity, venue, description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), e.CollegeID, e.Name, e.Type, e.Date, e.Capacity, e.Venue, e.Description, e.Status).Scan(&id)
	return id, err
}

// InsertRegistration links a student to an event and returns the
// registration id. The unique (student_id, event_id) index rejects
// duplicates and the foreign keys reject unknown ids.
func (r *Repository) InsertRegistration(ctx context.Context, studentID, eventID int64) (int64, error) {
	var id int64
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO registrations (student_id, event_id) VALUES (?, ?) RETURNING id
	`), studentID, eventID).Scan(&id)
	return id, err
}

// UpsertAttendance looks up the registration for the pair and writes the
// attendance row for it, updating present and refreshing ts when a row
// already exists. Lookup and upsert commit as one transaction. Returns
// ErrNoRegistration when the student is not registered for the event.
func (r *Repository) UpsertAttendance(ctx context.Context, studentID, eventID int64, present bool) (int64, error) {
	var regID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		regID, err = r.registrationID(ctx, tx, studentID, eventID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO attendance (registration_id, present) VALUES (?, ?)
			ON CONFLICT (registration_id) DO UPDATE SET
				present = excluded.present,
				ts = CURRENT_TIMESTAMP
		`), regID, present)
		return err
	})
	return regID, err
}

// UpsertFeedback looks up the registration for the pair and writes the
// feedback row for it, updating rating and comment and refreshing ts when
// a row already exists. Returns ErrNoRegistration when the student is not
// registered for the event.
func (r *Repository) UpsertFeedback(ctx context.Context, studentID, eventID int64, rating int, comment *string) (int64, error) {
	var regID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		regID, err = r.registrationID(ctx, tx, studentID, eventID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO feedback (registration_id, rating, comment) VALUES (?, ?, ?)
			ON CONFLICT (registration_id) DO UPDATE SET
				rating = excluded.rating,
				comment = excluded.comment,
				ts = CURRENT_TIMESTAMP
		`), regID, rating, comment)
		return err
	})
	return regID, err
}

func (r *Repository) registrationID(ctx context.Context, tx *sql.Tx, studentID, eventID int64) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id FROM registrations WHERE student_id = ? AND event_id = ?
	`), studentID, eventID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoRegistration
	}
	return id, err
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Client.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
