package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusbook/internal/database"
	"campusbook/internal/domain"
	"campusbook/internal/middleware"
	"campusbook/internal/modules/appointment"
	"campusbook/internal/modules/auth"
	"campusbook/internal/modules/chat"
	"campusbook/internal/modules/notification"
	"campusbook/internal/modules/schedule"
	jwtsvc "campusbook/internal/pkg/jwt"
	"campusbook/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type server struct {
	router *gin.Engine
	t      *testing.T
}

// newServer wires the full API against a fresh in-memory database, the same
// way cmd/api does.
func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Slot{},
		&domain.Appointment{},
		&domain.Message{},
		&notification.Notification{},
	))

	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	notifRepo := notification.NewRepository(db)
	txManager := repository.NewGormTxManager(db)

	j := jwtsvc.New("e2e-secret", time.Hour)
	hub := chat.NewHub()

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	notifService := notification.NewService(notifRepo, userRepo, hub, nil)
	notifHandler := notification.NewHandler(notifService)
	scheduleHandler := schedule.NewHandler(schedule.NewService(slotRepo, userRepo))
	apptHandler := appointment.NewHandler(appointment.NewService(
		appointment.NewTxRunner(txManager),
		apptRepo,
		slotRepo,
		userRepo,
		notifService,
	))
	chatHandler := chat.NewHandler(chat.NewService(msgRepo, userRepo, hub), hub)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			scheduleHandler.RegisterRoutes(protected)
			apptHandler.RegisterRoutes(protected)
			notifHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)

			admin := protected.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				authHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	return &server{router: r, t: t}
}

func (s *server) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *server) register(email, role string) {
	s.t.Helper()
	w, _ := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     email,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code)
}

func (s *server) login(email string) (string, int64) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	require.Equal(s.t, http.StatusOK, w.Code)

	var data struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.AccessToken, data.User.ID
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

type apptPayload struct {
	Appointment struct {
		ID            int64  `json:"id"`
		Status        string `json:"status"`
		TimeSlot      string `json:"time_slot"`
		StudentRating *int   `json:"student_rating"`
	} `json:"appointment"`
}

func (s *server) book(token string, teacherID int64, date, timeSlot string) (*httptest.ResponseRecorder, envelope) {
	return s.do(http.MethodPost, "/api/v1/appointments", token, map[string]any{
		"teacher_id": teacherID,
		"date":       date,
		"time":       timeSlot,
		"purpose":    "consultation",
		"subject":    "Thesis review",
	})
}

func TestBookingLifecycle(t *testing.T) {
	s := newServer(t)

	s.register("teacher@campus.edu", "teacher")
	s.register("student@campus.edu", "student")
	s.register("rival@campus.edu", "student")

	teacherToken, teacherID := s.login("teacher@campus.edu")
	studentToken, _ := s.login("student@campus.edu")
	rivalToken, _ := s.login("rival@campus.edu")

	date := futureDate(3)

	// Student books 2:00 PM.
	w, env := s.book(studentToken, teacherID, date, "2:00 PM")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created apptPayload
	require.NoError(t, json.Unmarshal(env.Data, &created))
	apptID := created.Appointment.ID
	assert.Equal(t, "pending", created.Appointment.Status)

	// The teacher hears about the request.
	w, env = s.do(http.MethodGet, "/api/v1/notifications", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notifs struct {
		Unread int64 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &notifs))
	assert.EqualValues(t, 1, notifs.Unread)

	// A rival booking the same slot loses.
	w, env = s.book(rivalToken, teacherID, date, "2:00 PM")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_UNAVAILABLE", env.Error.Code)

	// Teacher approves.
	w, env = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/approve", apptID), teacherToken, map[string]any{
		"response": "see you then",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var approved apptPayload
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	assert.Equal(t, "confirmed", approved.Appointment.Status)

	// Approving twice is a conflict, not a silent no-op.
	w, env = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/approve", apptID), teacherToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)

	// Teacher completes, student rates.
	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/complete", apptID), teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodPost, fmt.Sprintf("/api/v1/appointments/%d/rate", apptID), studentToken, map[string]any{
		"rating":   5,
		"feedback": "very helpful",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rated apptPayload
	require.NoError(t, json.Unmarshal(env.Data, &rated))
	require.NotNil(t, rated.Appointment.StudentRating)
	assert.Equal(t, 5, *rated.Appointment.StudentRating)

	// The completed appointment keeps its slot booked for the record.
	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/schedule/%d/%s/stats", teacherID, date), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Stats schedule.DayStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 9, stats.Stats.Total)
	assert.Equal(t, 1, stats.Stats.Booked)
	assert.Equal(t, 8, stats.Stats.Remaining)
}

func TestCancelFreesTheSlot(t *testing.T) {
	s := newServer(t)

	s.register("teacher@campus.edu", "teacher")
	s.register("student@campus.edu", "student")
	s.register("rival@campus.edu", "student")

	_, teacherID := s.login("teacher@campus.edu")
	studentToken, _ := s.login("student@campus.edu")
	rivalToken, _ := s.login("rival@campus.edu")

	date := futureDate(4)

	w, env := s.book(studentToken, teacherID, date, "10:00 AM")
	require.Equal(t, http.StatusCreated, w.Code)
	var created apptPayload
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/cancel", created.Appointment.ID), studentToken, map[string]any{
		"reason": "schedule conflict",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The freed slot is immediately bookable by someone else.
	w, _ = s.book(rivalToken, teacherID, date, "10:00 AM")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRejectFreesTheSlot(t *testing.T) {
	s := newServer(t)

	s.register("teacher@campus.edu", "teacher")
	s.register("student@campus.edu", "student")

	teacherToken, teacherID := s.login("teacher@campus.edu")
	studentToken, _ := s.login("student@campus.edu")

	date := futureDate(5)

	w, env := s.book(studentToken, teacherID, date, "11:00 AM")
	require.Equal(t, http.StatusCreated, w.Code)
	var created apptPayload
	require.NoError(t, json.Unmarshal(env.Data, &created))
	apptID := created.Appointment.ID

	// Reason is mandatory.
	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/reject", apptID), teacherToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/reject", apptID), teacherToken, map[string]any{
		"reason": "out of office that day",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rejected apptPayload
	require.NoError(t, json.Unmarshal(env.Data, &rejected))
	assert.Equal(t, "rejected", rejected.Appointment.Status)

	w, _ = s.book(studentToken, teacherID, date, "11:00 AM")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBlockedSlotIsNotBookable(t *testing.T) {
	s := newServer(t)

	s.register("teacher@campus.edu", "teacher")
	s.register("student@campus.edu", "student")

	teacherToken, teacherID := s.login("teacher@campus.edu")
	studentToken, _ := s.login("student@campus.edu")

	date := futureDate(6)

	// Viewing the schedule seeds the day.
	w, env := s.do(http.MethodGet, fmt.Sprintf("/api/v1/schedule/%d/%s", teacherID, date), teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var day struct {
		Schedule struct {
			Slots []domain.Slot `json:"slots"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &day))
	require.Len(t, day.Schedule.Slots, 9)

	var threePM int64
	for _, slot := range day.Schedule.Slots {
		if slot.TimeSlot == "3:00 PM" {
			threePM = slot.ID
		}
	}
	require.NotZero(t, threePM)

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/schedule/slots/%d", threePM), teacherToken, map[string]any{
		"action": "block",
		"reason": "faculty meeting",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.book(studentToken, teacherID, date, "3:00 PM")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_UNAVAILABLE", env.Error.Code)

	// Students cannot manage the teacher's schedule.
	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/schedule/slots/%d", threePM), studentToken, map[string]any{
		"action": "unblock",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unblock and the slot is bookable again.
	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/schedule/slots/%d", threePM), teacherToken, map[string]any{
		"action": "unblock",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.book(studentToken, teacherID, date, "3:00 PM")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRoleGates(t *testing.T) {
	s := newServer(t)

	s.register("teacher@campus.edu", "teacher")
	s.register("student@campus.edu", "student")

	teacherToken, teacherID := s.login("teacher@campus.edu")
	studentToken, _ := s.login("student@campus.edu")

	// Teachers cannot book appointments.
	w, _ := s.book(teacherToken, teacherID, futureDate(2), "9:00 AM")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Students cannot approve them.
	w, env := s.book(studentToken, teacherID, futureDate(2), "9:00 AM")
	require.Equal(t, http.StatusCreated, w.Code)
	var created apptPayload
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/approve", created.Appointment.ID), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The admin console is closed to both.
	w, _ = s.do(http.MethodGet, "/api/v1/admin/users", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/admin/users", teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// No token at all.
	w, _ = s.do(http.MethodGet, "/api/v1/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessaging(t *testing.T) {
	s := newServer(t)

	s.register("teacher@campus.edu", "teacher")
	s.register("student@campus.edu", "student")

	teacherToken, teacherID := s.login("teacher@campus.edu")
	studentToken, studentID := s.login("student@campus.edu")

	w, _ := s.do(http.MethodPost, "/api/v1/messages", studentToken, map[string]any{
		"recipient_id": teacherID,
		"body":         "Could we move our meeting?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(http.MethodGet, "/api/v1/messages/unread/count", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unread struct {
		Unread int64 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	assert.EqualValues(t, 1, unread.Unread)

	// Reading the conversation marks it read.
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", studentID), teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/messages/unread/count", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	assert.Zero(t, unread.Unread)
}
