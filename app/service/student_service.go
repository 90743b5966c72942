package service

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
	"fiber/edurisk/helper"
)

type StudentService struct {
	userRepo       repo.UserRepository
	studentRepo    repo.StudentRepository
	predictionRepo repo.PredictionRepository
	sessionRepo    repo.SessionRepository
	logger         *zap.Logger
}

func NewStudentService(
	userRepo repo.UserRepository,
	studentRepo repo.StudentRepository,
	predictionRepo repo.PredictionRepository,
	sessionRepo repo.SessionRepository,
	logger *zap.Logger,
) *StudentService {
	return &StudentService{
		userRepo:       userRepo,
		studentRepo:    studentRepo,
		predictionRepo: predictionRepo,
		sessionRepo:    sessionRepo,
		logger:         logger,
	}
}

// GET /api/v1/students/profile
func (s *StudentService) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	student, err := s.studentRepo.FindByUserID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Student profile not found",
		})
	}

	return c.JSON(model.SuccessResponse[*model.Student]{Success: true, Data: student})
}

// POST /api/v1/students/profile
func (s *StudentService) UpsertProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	var req model.UpsertProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid input",
		})
	}

	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Validation failed",
			Error:   helper.FormatValidationErrors(err),
		})
	}

	studentNumber := req.StudentID
	if studentNumber == "" {
		studentNumber = helper.NewStudentNumber()
	}

	student := model.Student{
		UserID:                    userID,
		StudentID:                 studentNumber,
		CurrentGrade:              req.CurrentGrade,
		GPA:                       req.GPA,
		Attendance:                req.Attendance,
		StudyHoursPerWeek:         req.StudyHoursPerWeek,
		TutoringHours:             req.TutoringHours,
		DisciplinaryActions:       req.DisciplinaryActions,
		ExtracurricularActivities: req.ExtracurricularActivities,
		ParentalSupport:           req.ParentalSupport,
		FamilyIncome:              req.FamilyIncome,
		WorkingHours:              req.WorkingHours,
		HealthIssues:              req.HealthIssues,
		MentalHealthSupport:       req.MentalHealthSupport,
		TransportationIssues:      req.TransportationIssues,
		InternetAccess:            req.InternetAccess,
		Notes:                     req.Notes,
	}

	saved, err := s.studentRepo.Upsert(&student)
	if err != nil {
		s.logger.Error("failed to upsert student profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to save profile",
		})
	}

	return c.JSON(model.SuccessResponse[*model.Student]{Success: true, Data: saved})
}

// GET /api/v1/students
func (s *StudentService) List(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	role := c.Locals("role").(string)
	riskLevel := c.Query("riskLevel", "")
	search := c.Query("search", "")

	rows, err := s.buildRoster(userID, role)
	if err != nil {
		s.logger.Error("failed to build student roster", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch students",
		})
	}

	if riskLevel != "" {
		rows = filterByRiskLevel(rows, riskLevel)
	}
	if search != "" {
		rows = searchRoster(rows, search)
	}

	return c.JSON(model.SuccessResponse[[]model.StudentWithRisk]{Success: true, Data: rows})
}

// GET /api/v1/students/:id
func (s *StudentService) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid student id",
		})
	}

	student, err := s.studentRepo.FindByID(id)
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

	if c.Locals("role").(string) == model.RoleMentor {
		mentorID := c.Locals("user_id").(primitive.ObjectID)
		if !MentorOwnsStudent(studentUser, mentorID) {
			return c.Status(fiber.StatusForbidden).JSON(model.ErrorResponse{
				Success: false,
				Message: "Not authorized to view this student",
			})
		}
	}

	predictions, err := s.predictionRepo.TrendByUserID(student.UserID, 10)
	if err != nil {
		s.logger.Error("failed to load prediction history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch student",
		})
	}

	type studentDetail struct {
		Student     *model.Student     `json:"student"`
		User        model.UserSummary  `json:"user"`
		Predictions []model.Prediction `json:"predictions"`
	}

	return c.JSON(model.SuccessResponse[studentDetail]{
		Success: true,
		Data: studentDetail{
			Student:     student,
			User:        studentUser.Summary(),
			Predictions: predictions,
		},
	})
}

// DELETE /api/v1/students/:id
//
// Cascade is an ordered sequence of deletions without transactional
// guarantees: a failure aborts the remainder and earlier steps persist.
func (s *StudentService) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid student id",
		})
	}

	student, err := s.studentRepo.FindByID(id)
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

	if c.Locals("role").(string) == model.RoleMentor {
		mentorID := c.Locals("user_id").(primitive.ObjectID)
		if !MentorOwnsStudent(studentUser, mentorID) {
			return c.Status(fiber.StatusForbidden).JSON(model.ErrorResponse{
				Success: false,
				Message: "Not authorized to delete this student",
			})
		}
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"predictions", func() error { return s.predictionRepo.DeleteByUserID(studentUser.ID) }},
		{"sessions", func() error { return s.sessionRepo.DeleteByStudent(studentUser.ID) }},
		{"profile", func() error { return s.studentRepo.DeleteByUserID(studentUser.ID) }},
		{"user", func() error { return s.userRepo.Delete(studentUser.ID) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			s.logger.Error("student deletion cascade aborted",
				zap.String("step", step.name),
				zap.String("user_id", studentUser.ID.Hex()),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
				Success: false,
				Message: "Failed to delete student at step: " + step.name,
			})
		}
	}

	return c.JSON(model.SuccessMessageResponse{Success: true, Message: "Student deleted successfully"})
}

// buildRoster joins student profiles with their owning users and latest
// predictions. Mentors see only their assigned students, admins all.
func (s *StudentService) buildRoster(actorID primitive.ObjectID, role string) ([]model.StudentWithRisk, error) {
	var students []model.Student
	var users map[primitive.ObjectID]model.User
	var err error

	if role == model.RoleMentor {
		assigned, err := s.userRepo.FindAssignedStudents(actorID)
		if err != nil {
			return nil, err
		}
		users = make(map[primitive.ObjectID]model.User, len(assigned))
		ids := make([]primitive.ObjectID, 0, len(assigned))
		for _, u := range assigned {
			users[u.ID] = u
			ids = append(ids, u.ID)
		}
		students, err = s.studentRepo.FindByUserIDs(ids)
		if err != nil {
			return nil, err
		}
	} else {
		students, err = s.studentRepo.FindAll()
		if err != nil {
			return nil, err
		}
		ids := make([]primitive.ObjectID, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.UserID)
		}
		users, err = s.userRepo.FindByIDs(ids)
		if err != nil {
			return nil, err
		}
	}

	latest, err := s.predictionRepo.LatestPerUser()
	if err != nil {
		return nil, err
	}

	return joinRoster(students, users, latest), nil
}

func joinRoster(
	students []model.Student,
	users map[primitive.ObjectID]model.User,
	latest map[primitive.ObjectID]model.Prediction,
) []model.StudentWithRisk {
	rows := make([]model.StudentWithRisk, 0, len(students))
	for _, st := range students {
		u := users[st.UserID]
		row := model.StudentWithRisk{
			ID:             st.ID,
			UserID:         st.UserID,
			StudentID:      st.StudentID,
			Name:           u.Name,
			Email:          u.Email,
			GPA:            st.GPA,
			Attendance:     st.Attendance,
			AssignedMentor: u.AssignedMentor,
			RiskLevel:      "unknown",
			RiskScore:      0,
			LastUpdated:    st.UpdatedAt,
		}
		if p, ok := latest[st.UserID]; ok {
			row.RiskLevel = p.RiskLevel
			row.RiskScore = p.RiskScore
		}
		rows = append(rows, row)
	}
	return rows
}

func filterByRiskLevel(rows []model.StudentWithRisk, level string) []model.StudentWithRisk {
	out := make([]model.StudentWithRisk, 0, len(rows))
	for _, r := range rows {
		if r.RiskLevel == level {
			out = append(out, r)
		}
	}
	return out
}

func searchRoster(rows []model.StudentWithRisk, search string) []model.StudentWithRisk {
	needle := strings.ToLower(search)
	out := make([]model.StudentWithRisk, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.StudentID), needle) {
			out = append(out, r)
		}
	}
	return out
}
