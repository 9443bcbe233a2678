package store

import "context"

// Event dates are stored as TEXT in YYYY-MM-DD form on both dialects so
// lexicographic ordering matches chronological ordering and scans agree
// across drivers.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS colleges (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS students (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	college_id  INTEGER NOT NULL REFERENCES colleges(id),
	name        TEXT NOT NULL,
	email       TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	college_id  INTEGER NOT NULL REFERENCES colleges(id),
	name        TEXT NOT NULL,
	type        TEXT NOT NULL,
	date        TEXT NOT NULL,
	capacity    INTEGER,
	venue       TEXT,
	description TEXT,
	status      TEXT NOT NULL DEFAULT 'Active'
);

CREATE TABLE IF NOT EXISTS registrations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id  INTEGER NOT NULL REFERENCES students(id),
	event_id    INTEGER NOT NULL REFERENCES events(id),
	UNIQUE (student_id, event_id)
);

CREATE TABLE IF NOT EXISTS attendance (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	registration_id  INTEGER NOT NULL UNIQUE REFERENCES registrations(id),
	present          INTEGER NOT NULL DEFAULT 1,
	ts               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feedback (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	registration_id  INTEGER NOT NULL UNIQUE REFERENCES registrations(id),
	rating           INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment          TEXT,
	ts               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_registrations_event   ON registrations(event_id);
CREATE INDEX IF NOT EXISTS idx_registrations_student ON registrations(student_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS colleges (
	id    BIGSERIAL PRIMARY KEY,
	name  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS students (
	id          BIGSERIAL PRIMARY KEY,
	college_id  BIGINT NOT NULL REFERENCES colleges(id),
	name        TEXT NOT NULL,
	email       TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS events (
	id          BIGSERIAL PRIMARY KEY,
	college_id  BIGINT NOT NULL REFERENCES colleges(id),
	name        TEXT NOT NULL,
	type        TEXT NOT NULL,
	date        TEXT NOT NULL,
	capacity    BIGINT,
	venue       TEXT,
	description TEXT,
	status      TEXT NOT NULL DEFAULT 'Active'
);

CREATE TABLE IF NOT EXISTS registrations (
	id          BIGSERIAL PRIMARY KEY,
	student_id  BIGINT NOT NULL REFERENCES students(id),
	event_id    BIGINT NOT NULL REFERENCES events(id),
	UNIQUE (student_id, event_id)
);

CREATE TABLE IF NOT EXISTS attendance (
	id               BIGSERIAL PRIMARY KEY,
	registration_id  BIGINT NOT NULL UNIQUE REFERENCES registrations(id),
	present          BOOLEAN NOT NULL DEFAULT TRUE,
	ts               TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS feedback (
	id               BIGSERIAL PRIMARY KEY,
	registration_id  BIGINT NOT NULL UNIQUE REFERENCES registrations(id),
	rating           INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment          TEXT,
	ts               TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_registrations_event   ON registrations(event_id);
CREATE INDEX IF NOT EXISTS idx_registrations_student ON registrations(student_id);
`

// EnsureSchema creates the six relations and their indexes if absent.
// Safe to call on every start.
func EnsureSchema(ctx context.Context, db *DB) error {
	schema := schemaSQLite
	if db.Driver() == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := db.Client.ExecContext(ctx, schema)
	return err
}
