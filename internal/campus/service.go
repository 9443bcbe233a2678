package campus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/store"
)

// DefaultTopStudentsLimit is used when TopStudents is asked for zero or
// fewer rows.
const DefaultTopStudentsLimit = 3

// Service is the operation boundary of the core: it validates inputs
// before any store access, delegates to the repository, and folds store
// failures into the error taxonomy. Reports are served through the cache
// when one is configured.
type Service struct {
	repo  *Repository
	cache *ReportCache
}

// NewService creates a service. cache may be nil to disable report caching.
func NewService(repo *Repository, cache *ReportCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateCollegeInput carries the fields for CreateCollege.
type CreateCollegeInput struct {
	Name string `json:"name"`
}

// Validate checks required fields.
func (in CreateCollegeInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("name is required")
	}
	return nil
}

// CreateCollege registers a college with a globally unique name.
func (s *Service) CreateCollege(ctx context.Context, in CreateCollegeInput) (*College, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := s.repo.InsertCollege(ctx, in.Name)
	if err != nil {
		return nil, wrapWriteErr(err, "college name already exists")
	}
	s.cache.Invalidate(ctx)
	return &College{ID: id, Name: in.Name}, nil
}

// CreateStudentInput carries the fields for CreateStudent.
type CreateStudentInput struct {
	CollegeID int64  `json:"college_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Validate checks required fields. Ids are store-assigned starting at 1,
// so 0 can never reference a row and counts as missing.
func (in CreateStudentInput) Validate() error {
	if in.CollegeID <= 0 {
		return validationf("college_id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationf("name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return validationf("email is required")
	}
	return nil
}

// CreateStudent registers a student under an existing college.
func (s *Service) CreateStudent(ctx context.Context, in CreateStudentInput) (*Student, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := s.repo.InsertStudent(ctx, in.CollegeID, in.Name, in.Email)
	if err != nil {
		return nil, wrapWriteErr(err, "email already exists or college_id is unknown")
	}
	s.cache.Invalidate(ctx)
	return &Student{ID: id, CollegeID: in.CollegeID, Name: in.Name, Email: in.Email}, nil
}

// CreateEventInput carries the fields for CreateEvent. Capacity, venue and
// description are optional; a capacity of 0 is stored as 0, not dropped.
type CreateEventInput struct {
	CollegeID   int64   `json:"college_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Capacity    *int64  `json:"capacity"`
	Venue       *string `json:"venue"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// Validate checks required fields and the date format.
func (in CreateEventInput) Validate() error {
	if in.CollegeID <= 0 {
		return validationf("college_id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationf("name is required")
	}
	if strings.TrimSpace(in.Type) == "" {
		return validationf("type is required")
	}
	if in.Date == "" {
		return validationf("date is required")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return validationf("date must be YYYY-MM-DD")
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return validationf("capacity must not be negative")
	}
	return nil
}

// CreateEvent registers an event under an existing college. Status
// defaults to "Active".
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := Event{
		CollegeID:   in.CollegeID,
		Name:        in.Name,
		Type:        in.Type,
		Date:        in.Date,
		Capacity:    in.Capacity,
		Venue:       in.Venue,
		Description: in.Description,
		Status:      in.Status,
	}
	if e.Status == "" {
		e.Status = "Active"
	}
	id, err := s.repo.InsertEvent(ctx, e)
	if err != nil {
		return nil, wrapWriteErr(err, "college_id is unknown")
	}
	e.ID = id
	s.cache.Invalidate(ctx)
	return &e, nil
}

// RegisterStudentInput carries the fields for RegisterStudent.
type RegisterStudentInput struct {
	StudentID int64 `json:"student_id"`
	EventID   int64 `json:"event_id"`
}

// Validate checks required ids.
func (in RegisterStudentInput) Validate() error {
	if in.StudentID <= 0 {
		return validationf("student_id is required")
	}
	if in.EventID <= 0 {
		return validationf("event_id is required")
	}
	return nil
}

// RegisterStudent enrolls a student in an event. At most one registration
// exists per (student, event) pair.
func (s *Service) RegisterStudent(ctx context.Context, in RegisterStudentInput) (*Registration, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := s.repo.InsertRegistration(ctx, in.StudentID, in.EventID)
	if err != nil {
		return nil, wrapWriteErr(err, "duplicate registration or unknown student/event")
	}
	s.cache.Invalidate(ctx)
	return &Registration{ID: id, StudentID: in.StudentID, EventID: in.EventID}, nil
}

// MarkAttendanceInput carries the fields for MarkAttendance. Present
// defaults to true when omitted.
type MarkAttendanceInput struct {
	StudentID int64 `json:"student_id"`
	EventID   int64 `json:"event_id"`
	Present   *bool `json:"present"`
}

// Validate checks required ids.
func (in MarkAttendanceInput) Validate() error {
	if in.StudentID <= 0 {
		return validationf("student_id is required")
	}
	if in.EventID <= 0 {
		return validationf("event_id is required")
	}
	return nil
}

// MarkAttendance upserts the attendance row for the pair's registration.
// Repeated calls keep a single row reflecting the latest present value.
func (s *Service) MarkAttendance(ctx context.Context, in MarkAttendanceInput) (*Attendance, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	present := true
	if in.Present != nil {
		present = *in.Present
	}
	regID, err := s.repo.UpsertAttendance(ctx, in.StudentID, in.EventID, present)
	if err != nil {
		if errors.Is(err, ErrNoRegistration) {
			return nil, &NotFoundError{Reason: "student is not registered for this event"}
		}
		return nil, wrapWriteErr(err, "attendance write rejected")
	}
	s.cache.Invalidate(ctx)
	return &Attendance{RegistrationID: regID, Present: present}, nil
}

// SubmitFeedbackInput carries the fields for SubmitFeedback.
type SubmitFeedbackInput struct {
	StudentID int64   `json:"student_id"`
	EventID   int64   `json:"event_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment"`
}

// Validate checks required ids and the rating range before any store
// access.
func (in SubmitFeedbackInput) Validate() error {
	if in.StudentID <= 0 {
		return validationf("student_id is required")
	}
	if in.EventID <= 0 {
		return validationf("event_id is required")
	}
	if in.Rating == 0 {
		return validationf("rating is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return validationf("rating must be between 1 and 5")
	}
	return nil
}

// SubmitFeedback upserts the feedback row for the pair's registration.
// Repeated calls keep a single row reflecting the latest rating and
// comment.
func (s *Service) SubmitFeedback(ctx context.Context, in SubmitFeedbackInput) (*Feedback, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	regID, err := s.repo.UpsertFeedback(ctx, in.StudentID, in.EventID, in.Rating, in.Comment)
	if err != nil {
		if errors.Is(err, ErrNoRegistration) {
			return nil, &NotFoundError{Reason: "student is not registered for this event"}
		}
		return nil, wrapWriteErr(err, "feedback write rejected")
	}
	s.cache.Invalidate(ctx)
	return &Feedback{RegistrationID: regID, Rating: in.Rating, Comment: in.Comment}, nil
}

// EventPopularity reports registration counts per matching event.
func (s *Service) EventPopularity(ctx context.Context, f EventPopularityFilter) ([]EventPopularityRow, error) {
	key := fmt.Sprintf("popularity:%s:%d", f.Type, f.CollegeID)
	var cached []EventPopularityRow
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.repo.EventPopularity(ctx, f)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, rows)
	return rows, nil
}

// AttendanceReport summarizes attendance for one event. The result is nil
// when the event does not exist.
func (s *Service) AttendanceReport(ctx context.Context, eventID int64) (*AttendanceSummary, error) {
	if eventID <= 0 {
		return nil, validationf("event_id is required")
	}
	key := fmt.Sprintf("attendance:%d", eventID)
	var cached AttendanceSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	sum, err := s.repo.AttendanceSummary(ctx, eventID)
	if err != nil || sum == nil {
		return sum, err
	}
	s.cache.Set(ctx, key, sum)
	return sum, nil
}

// FeedbackReport summarizes feedback for one event. The result is nil
// when the event does not exist.
func (s *Service) FeedbackReport(ctx context.Context, eventID int64) (*FeedbackSummary, error) {
	if eventID <= 0 {
		return nil, validationf("event_id is required")
	}
	key := fmt.Sprintf("feedback:%d", eventID)
	var cached FeedbackSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	sum, err := s.repo.FeedbackSummary(ctx, eventID)
	if err != nil || sum == nil {
		return sum, err
	}
	s.cache.Set(ctx, key, sum)
	return sum, nil
}

// StudentParticipation counts events attended by one student. The result
// is nil when the student does not exist.
func (s *Service) StudentParticipation(ctx context.Context, studentID int64) (*ParticipationRow, error) {
	if studentID <= 0 {
		return nil, validationf("student_id is required")
	}
	key := fmt.Sprintf("participation:%d", studentID)
	var cached ParticipationRow
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := s.repo.StudentParticipation(ctx, studentID)
	if err != nil || p == nil {
		return p, err
	}
	s.cache.Set(ctx, key, p)
	return p, nil
}

// TopStudents returns the attendance leaderboard, at most limit rows.
func (s *Service) TopStudents(ctx context.Context, limit int, collegeID int64) ([]TopStudentRow, error) {
	if limit <= 0 {
		limit = DefaultTopStudentsLimit
	}
	key := fmt.Sprintf("top:%d:%d", limit, collegeID)
	var cached []TopStudentRow
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.repo.TopStudents(ctx, limit, collegeID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, rows)
	return rows, nil
}

func wrapWriteErr(err error, reason string) error {
	if store.IsConstraintViolation(err) {
		return &ConstraintViolation{Reason: reason, Err: err}
	}
	return err
}
