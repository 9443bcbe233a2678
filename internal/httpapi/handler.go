// Package httpapi exposes the campus core over HTTP. It decodes requests
// into the core's input structs, maps the error taxonomy to status codes,
// and never contains domain logic of its own.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"campusevents/internal/campus"
	"campusevents/internal/store"
)

// Handler carries the dependencies of the HTTP surface.
type Handler struct {
	svc   *campus.Service
	db    *store.DB
	redis *store.Redis
}

// New creates a handler.
func New(svc *campus.Service, db *store.DB, redis *store.Redis) *Handler {
	return &Handler{svc: svc, db: db, redis: redis}
}

// Routes registers all endpoints on the engine.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/colleges", h.CreateCollege)
	r.POST("/students", h.CreateStudent)
	r.POST("/events", h.CreateEvent)
	r.POST("/register", h.RegisterStudent)
	r.POST("/attendance", h.MarkAttendance)
	r.POST("/feedback", h.SubmitFeedback)

	reports := r.Group("/reports")
	reports.GET("/event-popularity", h.EventPopularity)
	reports.GET("/attendance", h.AttendanceReport)
	reports.GET("/feedback", h.FeedbackReport)
	reports.GET("/student-participation", h.StudentParticipation)
	reports.GET("/top-students", h.TopStudents)
}

// Health reports process and dependency status.
func (h *Handler) Health(c *gin.Context) {
	dbHealthy := h.db != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	body := gin.H{"status": "ok", "db": dbHealthy}
	if h.redis != nil {
		body["redis"] = h.redis.Healthy(c.Request.Context())
	}
	c.JSON(status, body)
}

func (h *Handler) CreateCollege(c *gin.Context) {
	var in campus.CreateCollegeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	college, err := h.svc.CreateCollege(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, college)
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var in campus.CreateStudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	student, err := h.svc.CreateStudent(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var in campus.CreateEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event, err := h.svc.CreateEvent(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *Handler) RegisterStudent(c *gin.Context) {
	var in campus.RegisterStudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reg, err := h.svc.RegisterStudent(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"registration_id": reg.ID})
}

func (h *Handler) MarkAttendance(c *gin.Context) {
	var in campus.MarkAttendanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	att, err := h.svc.MarkAttendance(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "registration_id": att.RegistrationID, "present": att.Present})
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var in campus.SubmitFeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fb, err := h.svc.SubmitFeedback(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "registration_id": fb.RegistrationID, "rating": fb.Rating})
}

func (h *Handler) EventPopularity(c *gin.Context) {
	var f campus.EventPopularityFilter
	f.Type = c.Query("type")
	if v := c.Query("college_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "college_id must be an integer"})
			return
		}
		f.CollegeID = id
	}
	rows, err := h.svc.EventPopularity(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	if rows == nil {
		rows = []campus.EventPopularityRow{}
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *Handler) AttendanceReport(c *gin.Context) {
	eventID, ok := requireIDParam(c, "event_id")
	if !ok {
		return
	}
	sum, err := h.svc.AttendanceReport(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sum == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sum})
}

func (h *Handler) FeedbackReport(c *gin.Context) {
	eventID, ok := requireIDParam(c, "event_id")
	if !ok {
		return
	}
	sum, err := h.svc.FeedbackReport(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sum == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sum})
}

func (h *Handler) StudentParticipation(c *gin.Context) {
	studentID, ok := requireIDParam(c, "student_id")
	if !ok {
		return
	}
	p, err := h.svc.StudentParticipation(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, err)
		return
	}
	rows := []campus.ParticipationRow{}
	if p != nil {
		rows = append(rows, *p)
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *Handler) TopStudents(c *gin.Context) {
	limit := campus.DefaultTopStudentsLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}
	var collegeID int64
	if v := c.Query("college_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "college_id must be an integer"})
			return
		}
		collegeID = id
	}
	rows, err := h.svc.TopStudents(c.Request.Context(), limit, collegeID)
	if err != nil {
		writeError(c, err)
		return
	}
	if rows == nil {
		rows = []campus.TopStudentRow{}
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func requireIDParam(c *gin.Context, name string) (int64, bool) {
	v := c.Query(name)
	if v == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required"})
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return id, true
}

// writeError maps the campus error taxonomy to HTTP statuses: validation
// 400, constraint conflicts 409, missing targets 404, anything else 500.
func writeError(c *gin.Context, err error) {
	switch {
	case campus.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case campus.IsConstraint(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case campus.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
