package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusevents/internal/campus"
	"campusevents/internal/httpapi"
	"campusevents/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.EnsureSchema(context.Background(), db))

	svc := campus.NewService(campus.NewRepository(db), nil)
	r := gin.New()
	httpapi.New(svc, db, nil).Routes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["db"])
}

func TestStatusMapping(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/colleges", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing name")

	w, _ = doJSON(t, r, http.MethodPost, "/colleges", `{"name":"A"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/colleges", `{"name":"A"}`)
	assert.Equal(t, http.StatusConflict, w.Code, "duplicate name")

	w, _ = doJSON(t, r, http.MethodPost, "/students",
		`{"college_id":1,"name":"Bob","email":"bob@x.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/events",
		`{"college_id":1,"name":"Hack","type":"Hackathon","date":"2024-05-01"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Attendance before registration is a 404, not a constraint conflict.
	w, _ = doJSON(t, r, http.MethodPost, "/attendance", `{"student_id":1,"event_id":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/feedback", `{"student_id":1,"event_id":1,"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "rating out of range")

	w, _ = doJSON(t, r, http.MethodGet, "/reports/attendance", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "event_id required")
}

func TestEndToEndScenario(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/colleges", `{"name":"A"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	collegeID := int64(body["id"].(float64))

	w, body = doJSON(t, r, http.MethodPost, "/students",
		fmt.Sprintf(`{"college_id":%d,"name":"Bob","email":"bob@x.com"}`, collegeID))
	require.Equal(t, http.StatusCreated, w.Code)
	bobID := int64(body["id"].(float64))

	w, body = doJSON(t, r, http.MethodPost, "/events",
		fmt.Sprintf(`{"college_id":%d,"name":"Hack","type":"Hackathon","date":"2024-05-01"}`, collegeID))
	require.Equal(t, http.StatusCreated, w.Code)
	hackID := int64(body["id"].(float64))
	assert.Equal(t, "Active", body["status"])

	w, _ = doJSON(t, r, http.MethodPost, "/register",
		fmt.Sprintf(`{"student_id":%d,"event_id":%d}`, bobID, hackID))
	require.Equal(t, http.StatusCreated, w.Code)

	w, body = doJSON(t, r, http.MethodPost, "/attendance",
		fmt.Sprintf(`{"student_id":%d,"event_id":%d,"present":true}`, bobID, hackID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])

	w, _ = doJSON(t, r, http.MethodPost, "/feedback",
		fmt.Sprintf(`{"student_id":%d,"event_id":%d,"rating":4}`, bobID, hackID))
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/reports/attendance?event_id=%d", hackID), "")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total_registrations"])
	assert.Equal(t, float64(1), data["present_count"])
	assert.Equal(t, float64(100), data["attendance_percentage"])

	w, body = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/reports/feedback?event_id=%d", hackID), "")
	require.Equal(t, http.StatusOK, w.Code)
	data = body["data"].(map[string]any)
	assert.Equal(t, float64(4), data["avg_rating"])
	assert.Equal(t, float64(1), data["feedback_count"])

	w, body = doJSON(t, r, http.MethodGet, "/reports/event-popularity", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows := body["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0].(map[string]any)["registrations"])

	w, body = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/reports/student-participation?student_id=%d", bobID), "")
	require.Equal(t, http.StatusOK, w.Code)
	rows = body["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0].(map[string]any)["events_attended"])

	w, body = doJSON(t, r, http.MethodGet, "/reports/top-students?limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows = body["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].(map[string]any)["name"])
}

func TestReportsForUnknownTargets(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/reports/attendance?event_id=42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["data"])

	w, body = doJSON(t, r, http.MethodGet, "/reports/feedback?event_id=42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["data"])

	w, body = doJSON(t, r, http.MethodGet, "/reports/student-participation?student_id=42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])

	w, body = doJSON(t, r, http.MethodGet, "/reports/event-popularity", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])
}
