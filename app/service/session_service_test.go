package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
)

func sessionTestApp(svc *SessionService, userID primitive.ObjectID, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/sessions", svc.Create)
	app.Post("/sessions/book", svc.Book)
	app.Get("/sessions/student", svc.ListForStudent)
	app.Get("/sessions/mentor/pending", svc.ListPending)
	app.Put("/sessions/:id/approve", svc.Approve)
	app.Put("/sessions/:id/reject", svc.Reject)
	return app
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRequestSessionWithoutMentor(t *testing.T) {
	student := model.User{ID: primitive.NewObjectID(), Name: "Ana", Role: model.RoleStudent, IsActive: true}
	svc := NewSessionService(newFakeUserRepo(student), newFakeStudentRepo(), newFakeSessionRepo(), zap.NewNop())
	app := sessionTestApp(svc, student.ID, model.RoleStudent)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sessions", model.CreateSessionRequest{
		SessionType: "academic", Date: "2026-09-10", Time: "14:00",
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestRequestSessionCreatesPending(t *testing.T) {
	mentorID := primitive.NewObjectID()
	mentor := model.User{ID: mentorID, Name: "Mia", Role: model.RoleMentor, IsActive: true}
	student := model.User{ID: primitive.NewObjectID(), Name: "Ana", Role: model.RoleStudent, IsActive: true, AssignedMentor: &mentorID}
	sessions := newFakeSessionRepo()
	svc := NewSessionService(newFakeUserRepo(student, mentor), newFakeStudentRepo(), sessions, zap.NewNop())
	app := sessionTestApp(svc, student.ID, model.RoleStudent)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sessions", model.CreateSessionRequest{
		SessionType: "academic", Date: "2026-09-10", Time: "14:00", Notes: "midterm prep",
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body model.SuccessResponse[model.SessionResponse]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	got := body.Data
	if got.Status != model.SessionPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.MentorID != mentorID {
		t.Errorf("mentor = %s, want assigned mentor", got.MentorID.Hex())
	}
	if got.Duration != model.DefaultSessionDuration {
		t.Errorf("duration = %d, want %d", got.Duration, model.DefaultSessionDuration)
	}
	if got.Topic != "academic" {
		t.Errorf("topic = %q, want academic", got.Topic)
	}
}

func TestRequestSessionInvalidDate(t *testing.T) {
	mentorID := primitive.NewObjectID()
	student := model.User{ID: primitive.NewObjectID(), Role: model.RoleStudent, IsActive: true, AssignedMentor: &mentorID}
	svc := NewSessionService(newFakeUserRepo(student), newFakeStudentRepo(), newFakeSessionRepo(), zap.NewNop())
	app := sessionTestApp(svc, student.ID, model.RoleStudent)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sessions", model.CreateSessionRequest{
		Date: "next tuesday", Time: "noon",
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestApproveSecondAttemptConflicts(t *testing.T) {
	mentorID := primitive.NewObjectID()
	session := model.Session{
		ID:            primitive.NewObjectID(),
		StudentID:     primitive.NewObjectID(),
		MentorID:      mentorID,
		ScheduledDate: time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		Duration:      60,
		Status:        model.SessionPending,
	}
	svc := NewSessionService(newFakeUserRepo(), newFakeStudentRepo(), newFakeSessionRepo(session), zap.NewNop())
	app := sessionTestApp(svc, mentorID, model.RoleMentor)

	first, err := app.Test(jsonRequest(http.MethodPut, "/sessions/"+session.ID.Hex()+"/approve", nil))
	if err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if first.StatusCode != fiber.StatusOK {
		t.Fatalf("first approve: expected 200, got %d", first.StatusCode)
	}

	second, err := app.Test(jsonRequest(http.MethodPut, "/sessions/"+session.ID.Hex()+"/approve", nil))
	if err != nil {
		t.Fatalf("second approve failed: %v", err)
	}
	if second.StatusCode != fiber.StatusConflict {
		t.Fatalf("second approve: expected 409, got %d", second.StatusCode)
	}
}

func TestRejectAfterApproveConflicts(t *testing.T) {
	mentorID := primitive.NewObjectID()
	session := model.Session{
		ID:        primitive.NewObjectID(),
		StudentID: primitive.NewObjectID(),
		MentorID:  mentorID,
		Status:    model.SessionScheduled,
	}
	svc := NewSessionService(newFakeUserRepo(), newFakeStudentRepo(), newFakeSessionRepo(session), zap.NewNop())
	app := sessionTestApp(svc, mentorID, model.RoleMentor)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/sessions/"+session.ID.Hex()+"/reject", nil))
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRejectKeepsSessionAsCancelled(t *testing.T) {
	mentorID := primitive.NewObjectID()
	session := model.Session{
		ID:        primitive.NewObjectID(),
		StudentID: primitive.NewObjectID(),
		MentorID:  mentorID,
		Status:    model.SessionPending,
	}
	sessions := newFakeSessionRepo(session)
	svc := NewSessionService(newFakeUserRepo(), newFakeStudentRepo(), sessions, zap.NewNop())
	app := sessionTestApp(svc, mentorID, model.RoleMentor)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/sessions/"+session.ID.Hex()+"/reject", nil))
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	stored, err := sessions.FindByID(session.ID)
	if err != nil {
		t.Fatalf("rejected session was removed: %v", err)
	}
	if stored.Status != model.SessionCancelled {
		t.Errorf("status = %q, want cancelled", stored.Status)
	}
}

func TestApproveByOtherMentorForbidden(t *testing.T) {
	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()
	session := model.Session{
		ID:        primitive.NewObjectID(),
		StudentID: primitive.NewObjectID(),
		MentorID:  owner,
		Status:    model.SessionPending,
	}
	sessions := newFakeSessionRepo(session)
	svc := NewSessionService(newFakeUserRepo(), newFakeStudentRepo(), sessions, zap.NewNop())
	app := sessionTestApp(svc, intruder, model.RoleMentor)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/sessions/"+session.ID.Hex()+"/approve", nil))
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	stored, _ := sessions.FindByID(session.ID)
	if stored.Status != model.SessionPending {
		t.Errorf("status = %q, want pending untouched", stored.Status)
	}
}

func TestApproveMissingSession(t *testing.T) {
	svc := NewSessionService(newFakeUserRepo(), newFakeStudentRepo(), newFakeSessionRepo(), zap.NewNop())
	app := sessionTestApp(svc, primitive.NewObjectID(), model.RoleMentor)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/sessions/"+primitive.NewObjectID().Hex()+"/approve", nil))
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestApproveAppliesScheduleOverrides(t *testing.T) {
	mentorID := primitive.NewObjectID()
	session := model.Session{
		ID:            primitive.NewObjectID(),
		StudentID:     primitive.NewObjectID(),
		MentorID:      mentorID,
		ScheduledDate: time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		Duration:      60,
		Status:        model.SessionPending,
	}
	sessions := newFakeSessionRepo(session)
	svc := NewSessionService(newFakeUserRepo(), newFakeStudentRepo(), sessions, zap.NewNop())
	app := sessionTestApp(svc, mentorID, model.RoleMentor)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/sessions/"+session.ID.Hex()+"/approve", model.ApproveSessionRequest{
		ScheduledDate: "2026-09-12T09:30", Duration: 45,
	}))
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	stored, _ := sessions.FindByID(session.ID)
	if stored.Status != model.SessionScheduled {
		t.Errorf("status = %q, want scheduled", stored.Status)
	}
	want := time.Date(2026, 9, 12, 9, 30, 0, 0, time.UTC)
	if !stored.ScheduledDate.Equal(want) {
		t.Errorf("scheduledDate = %v, want %v", stored.ScheduledDate, want)
	}
	if stored.Duration != 45 {
		t.Errorf("duration = %d, want 45", stored.Duration)
	}
}

func TestMentorCannotBookUnassignedStudent(t *testing.T) {
	mentorID := primitive.NewObjectID()
	otherMentor := primitive.NewObjectID()
	studentUser := model.User{ID: primitive.NewObjectID(), Role: model.RoleStudent, IsActive: true, AssignedMentor: &otherMentor}
	profile := model.Student{ID: primitive.NewObjectID(), UserID: studentUser.ID, StudentID: "STU12AB34CD"}
	svc := NewSessionService(newFakeUserRepo(studentUser), newFakeStudentRepo(profile), newFakeSessionRepo(), zap.NewNop())
	app := sessionTestApp(svc, mentorID, model.RoleMentor)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sessions/book", model.BookSessionRequest{
		StudentID:     profile.ID.Hex(),
		ScheduledDate: "2026-09-15T10:00",
		Topic:         "check-in",
	}))
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAdminBookFallsBackToAssignedMentor(t *testing.T) {
	adminID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()
	mentor := model.User{ID: mentorID, Role: model.RoleMentor, IsActive: true}
	studentUser := model.User{ID: primitive.NewObjectID(), Role: model.RoleStudent, IsActive: true, AssignedMentor: &mentorID}
	profile := model.Student{ID: primitive.NewObjectID(), UserID: studentUser.ID, StudentID: "STU12AB34CD"}
	svc := NewSessionService(newFakeUserRepo(studentUser, mentor), newFakeStudentRepo(profile), newFakeSessionRepo(), zap.NewNop())
	app := sessionTestApp(svc, adminID, model.RoleAdmin)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sessions/book", model.BookSessionRequest{
		StudentID:     profile.ID.Hex(),
		ScheduledDate: "2026-09-15T10:00",
		Topic:         "check-in",
	}))
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body model.SuccessResponse[model.SessionResponse]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.MentorID != mentorID {
		t.Errorf("mentor = %s, want assigned mentor", body.Data.MentorID.Hex())
	}
	if body.Data.Status != model.SessionScheduled {
		t.Errorf("status = %q, want scheduled", body.Data.Status)
	}
}

func TestAdminBookWithoutAnyMentor(t *testing.T) {
	adminID := primitive.NewObjectID()
	studentUser := model.User{ID: primitive.NewObjectID(), Role: model.RoleStudent, IsActive: true}
	profile := model.Student{ID: primitive.NewObjectID(), UserID: studentUser.ID, StudentID: "STU12AB34CD"}
	svc := NewSessionService(newFakeUserRepo(studentUser), newFakeStudentRepo(profile), newFakeSessionRepo(), zap.NewNop())
	app := sessionTestApp(svc, adminID, model.RoleAdmin)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sessions/book", model.BookSessionRequest{
		StudentID:     profile.ID.Hex(),
		ScheduledDate: "2026-09-15T10:00",
		Topic:         "check-in",
	}))
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestParseScheduleLayouts(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"2026-09-10T14:00:00Z", false},
		{"2026-09-10T14:00:00", false},
		{"2026-09-10T14:00", false},
		{"10/09/2026", true},
		{"", true},
	}
	for _, tc := range cases {
		_, err := parseSchedule(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseSchedule(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
}
