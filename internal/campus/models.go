package campus

// College is the root scoping entity; name is globally unique.
type College struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Student belongs to exactly one college; email is globally unique.
type Student struct {
	ID        int64  `json:"id"`
	CollegeID int64  `json:"college_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Event belongs to exactly one college. Date is YYYY-MM-DD.
type Event struct {
	ID          int64   `json:"id"`
	CollegeID   int64   `json:"college_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Capacity    *int64  `json:"capacity,omitempty"`
	Venue       *string `json:"venue,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
}

// Registration links a student to an event; at most one per pair.
type Registration struct {
	ID        int64 `json:"id"`
	StudentID int64 `json:"student_id"`
	EventID   int64 `json:"event_id"`
}

// Attendance records presence for a registration; at most one row per
// registration, updated in place on repeat writes.
type Attendance struct {
	ID             int64 `json:"id"`
	RegistrationID int64 `json:"registration_id"`
	Present        bool  `json:"present"`
}

// Feedback records a 1–5 rating for a registration; at most one row per
// registration, updated in place on repeat writes.
type Feedback struct {
	ID             int64   `json:"id"`
	RegistrationID int64   `json:"registration_id"`
	Rating         int     `json:"rating"`
	Comment        *string `json:"comment,omitempty"`
}

// EventPopularityRow is one event with its registration count. Events with
// zero registrations are included with Registrations == 0.
type EventPopularityRow struct {
	EventID       int64  `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Date          string `json:"date"`
	CollegeID     int64  `json:"college_id"`
	Registrations int64  `json:"registrations"`
}

// AttendanceSummary aggregates attendance for a single event. The
// percentage is nil when the event has no registrations.
type AttendanceSummary struct {
	EventID              int64    `json:"event_id"`
	Name                 string   `json:"name"`
	TotalRegistrations   int64    `json:"total_registrations"`
	PresentCount         int64    `json:"present_count"`
	AttendancePercentage *float64 `json:"attendance_percentage"`
}

// FeedbackSummary aggregates feedback for a single event. AvgRating is nil
// when the event has no feedback.
type FeedbackSummary struct {
	EventID       int64    `json:"event_id"`
	Name          string   `json:"name"`
	AvgRating     *float64 `json:"avg_rating"`
	FeedbackCount int64    `json:"feedback_count"`
}

// ParticipationRow counts events a student attended (present only).
type ParticipationRow struct {
	StudentID      int64  `json:"student_id"`
	Name           string `json:"name"`
	EventsAttended int64  `json:"events_attended"`
}

// TopStudentRow is one row of the top-students leaderboard.
type TopStudentRow struct {
	StudentID      int64  `json:"student_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	CollegeID      int64  `json:"college_id"`
	EventsAttended int64  `json:"events_attended"`
}
