package service

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
	"fiber/edurisk/helper"
)

type SessionService struct {
	userRepo    repo.UserRepository
	studentRepo repo.StudentRepository
	sessionRepo repo.SessionRepository
	logger      *zap.Logger
}

func NewSessionService(
	userRepo repo.UserRepository,
	studentRepo repo.StudentRepository,
	sessionRepo repo.SessionRepository,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		userRepo:    userRepo,
		studentRepo: studentRepo,
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseSchedule(value string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid date or time")
}

// POST /api/v1/sessions
//
// Student-initiated request: the session targets the student's assigned
// mentor and starts pending until that mentor approves or rejects it.
func (s *SessionService) Create(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	var req model.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid input",
		})
	}

	if req.Date == "" || req.Time == "" {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Date and time are required",
		})
	}

	studentUser, err := s.userRepo.FindByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Student not found",
		})
	}

	if studentUser.AssignedMentor == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(model.ErrorResponse{
			Success: false,
			Message: "No mentor assigned",
		})
	}

	scheduledDate, err := parseSchedule(req.Date + "T" + req.Time)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid date or time",
		})
	}

	topic := req.SessionType
	if topic == "" {
		topic = "Session"
	}

	session := model.Session{
		StudentID:     studentUser.ID,
		MentorID:      *studentUser.AssignedMentor,
		ScheduledDate: scheduledDate,
		Duration:      model.DefaultSessionDuration,
		Topic:         topic,
		Notes:         req.Notes,
		Status:        model.SessionPending,
	}
	if err := s.sessionRepo.Create(&session); err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to create session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(model.SuccessResponse[model.SessionResponse]{
		Success: true,
		Data:    s.withParticipants(session),
	})
}

// POST /api/v1/sessions/book
//
// Mentor/admin booking: skips the approval queue and starts scheduled.
// Mentors may only book their own assigned students and are always the
// session's mentor; admins may name any mentor or fall back to the
// student's assignment.
func (s *SessionService) Book(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(primitive.ObjectID)
	role := c.Locals("role").(string)

	var req model.BookSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid input",
		})
	}

	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "studentId, scheduledDate and topic are required",
			Error:   helper.FormatValidationErrors(err),
		})
	}

	profileID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid student id",
		})
	}

	student, err := s.studentRepo.FindByID(profileID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Student not found",
		})
	}

	studentUser, err := s.userRepo.FindByID(student.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Student user not found",
		})
	}

	if role == model.RoleMentor && !MentorOwnsStudent(studentUser, actorID) {
		return c.Status(fiber.StatusForbidden).JSON(model.ErrorResponse{
			Success: false,
			Message: "Not authorized to book for this student",
		})
	}

	mentorID, errResp := s.resolveMentor(role, actorID, req.MentorID, studentUser)
	if errResp != nil {
		return c.Status(errResp.status).JSON(model.ErrorResponse{
			Success: false,
			Message: errResp.message,
		})
	}

	scheduledDate, err := parseSchedule(req.ScheduledDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid scheduledDate",
		})
	}

	duration := req.Duration
	if duration == 0 {
		duration = model.DefaultSessionDuration
	}

	session := model.Session{
		StudentID:     studentUser.ID,
		MentorID:      mentorID,
		ScheduledDate: scheduledDate,
		Duration:      duration,
		Topic:         req.Topic,
		Notes:         req.Notes,
		MeetingLink:   req.MeetingLink,
		Status:        model.SessionScheduled,
	}
	if err := s.sessionRepo.Create(&session); err != nil {
		s.logger.Error("failed to book session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to book session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(model.SuccessResponse[model.SessionResponse]{
		Success: true,
		Data:    s.withParticipants(session),
	})
}

type bookError struct {
	status  int
	message string
}

func (s *SessionService) resolveMentor(role string, actorID primitive.ObjectID, requested string, studentUser *model.User) (primitive.ObjectID, *bookError) {
	if role == model.RoleMentor {
		// The acting mentor always hosts, whatever the request says.
		return actorID, nil
	}

	var mentorID primitive.ObjectID
	switch {
	case requested != "":
		id, err := primitive.ObjectIDFromHex(requested)
		if err != nil {
			return primitive.NilObjectID, &bookError{fiber.StatusBadRequest, "Invalid mentor provided"}
		}
		mentorID = id
	case studentUser.AssignedMentor != nil:
		mentorID = *studentUser.AssignedMentor
	default:
		return primitive.NilObjectID, &bookError{fiber.StatusBadRequest, "No mentor specified or assigned to student"}
	}

	mentor, err := s.userRepo.FindByID(mentorID)
	if err != nil || mentor.Role != model.RoleMentor {
		return primitive.NilObjectID, &bookError{fiber.StatusBadRequest, "Invalid mentor provided"}
	}
	return mentorID, nil
}

// GET /api/v1/sessions/student
func (s *SessionService) ListForStudent(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	sessions, err := s.sessionRepo.FindByStudent(userID, []model.SessionStatus{
		model.SessionPending, model.SessionScheduled,
	})
	if err != nil {
		s.logger.Error("failed to list student sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch sessions",
		})
	}

	return c.JSON(model.SuccessResponse[[]model.SessionResponse]{
		Success: true,
		Data:    s.withParticipantsAll(sessions),
	})
}

// GET /api/v1/sessions/mentor
func (s *SessionService) ListForMentor(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	sessions, err := s.sessionRepo.FindByMentor(userID, []model.SessionStatus{
		model.SessionPending, model.SessionScheduled,
	})
	if err != nil {
		s.logger.Error("failed to list mentor sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch sessions",
		})
	}

	return c.JSON(model.SuccessResponse[[]model.SessionResponse]{
		Success: true,
		Data:    s.withParticipantsAll(sessions),
	})
}

// GET /api/v1/sessions/mentor/pending
func (s *SessionService) ListPending(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	sessions, err := s.sessionRepo.FindByMentor(userID, []model.SessionStatus{model.SessionPending})
	if err != nil {
		s.logger.Error("failed to list pending sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch sessions",
		})
	}

	return c.JSON(model.SuccessResponse[[]model.SessionResponse]{
		Success: true,
		Data:    s.withParticipantsAll(sessions),
	})
}

// PUT /api/v1/sessions/:id/approve
func (s *SessionService) Approve(c *fiber.Ctx) error {
	mentorID := c.Locals("user_id").(primitive.ObjectID)

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid session id",
		})
	}

	var req model.ApproveSessionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid input",
		})
	}

	session, err := s.sessionRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Session not found",
		})
	}

	if !MentorOwnsSession(session, mentorID) {
		return c.Status(fiber.StatusForbidden).JSON(model.ErrorResponse{
			Success: false,
			Message: "Not authorized",
		})
	}

	// Omitted fields keep the student's original request verbatim.
	var scheduledDate *time.Time
	if req.ScheduledDate != "" {
		parsed, err := parseSchedule(req.ScheduledDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
				Success: false,
				Message: "Invalid scheduledDate",
			})
		}
		scheduledDate = &parsed
	}
	var duration *int
	if req.Duration > 0 {
		duration = &req.Duration
	}

	updated, err := s.sessionRepo.ApproveIfPending(id, scheduledDate, duration)
	if errors.Is(err, repo.ErrAlreadyProcessed) {
		return c.Status(fiber.StatusConflict).JSON(model.ErrorResponse{
			Success: false,
			Message: "Session already processed",
		})
	}
	if err != nil {
		s.logger.Error("failed to approve session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to approve session",
		})
	}

	return c.JSON(model.SuccessResponse[model.SessionResponse]{
		Success: true,
		Data:    s.withParticipants(*updated),
	})
}

// PUT /api/v1/sessions/:id/reject
func (s *SessionService) Reject(c *fiber.Ctx) error {
	mentorID := c.Locals("user_id").(primitive.ObjectID)

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid session id",
		})
	}

	session, err := s.sessionRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Session not found",
		})
	}

	if !MentorOwnsSession(session, mentorID) {
		return c.Status(fiber.StatusForbidden).JSON(model.ErrorResponse{
			Success: false,
			Message: "Not authorized",
		})
	}

	err = s.sessionRepo.RejectIfPending(id)
	if errors.Is(err, repo.ErrAlreadyProcessed) {
		return c.Status(fiber.StatusConflict).JSON(model.ErrorResponse{
			Success: false,
			Message: "Session already processed",
		})
	}
	if err != nil {
		s.logger.Error("failed to reject session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to reject session",
		})
	}

	return c.JSON(model.SuccessMessageResponse{Success: true, Message: "Session request rejected"})
}

func (s *SessionService) withParticipants(session model.Session) model.SessionResponse {
	return s.withParticipantsAll([]model.Session{session})[0]
}

func (s *SessionService) withParticipantsAll(sessions []model.Session) []model.SessionResponse {
	return joinSessionRows(s.userRepo, s.logger, sessions)
}

// joinSessionRows attaches student/mentor contact summaries to sessions in
// one id-set lookup.
func joinSessionRows(userRepo repo.UserRepository, logger *zap.Logger, sessions []model.Session) []model.SessionResponse {
	ids := make([]primitive.ObjectID, 0, len(sessions)*2)
	seen := make(map[primitive.ObjectID]bool, len(sessions)*2)
	for _, sess := range sessions {
		for _, id := range []primitive.ObjectID{sess.StudentID, sess.MentorID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := userRepo.FindByIDs(ids)
	if err != nil {
		logger.Warn("failed to resolve session participants", zap.Error(err))
		users = map[primitive.ObjectID]model.User{}
	}

	out := make([]model.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		row := model.SessionResponse{Session: sess}
		if u, ok := users[sess.StudentID]; ok {
			summary := u.Summary()
			row.Student = &summary
		}
		if u, ok := users[sess.MentorID]; ok {
			summary := u.Summary()
			row.Mentor = &summary
		}
		out = append(out, row)
	}
	return out
}
