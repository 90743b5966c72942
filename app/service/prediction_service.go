package service

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
	"fiber/edurisk/app/risk"
	"fiber/edurisk/helper"
)

type PredictionService struct {
	userRepo       repo.UserRepository
	studentRepo    repo.StudentRepository
	predictionRepo repo.PredictionRepository
	logger         *zap.Logger
}

func NewPredictionService(
	userRepo repo.UserRepository,
	studentRepo repo.StudentRepository,
	predictionRepo repo.PredictionRepository,
	logger *zap.Logger,
) *PredictionService {
	return &PredictionService{
		userRepo:       userRepo,
		studentRepo:    studentRepo,
		predictionRepo: predictionRepo,
		logger:         logger,
	}
}

// POST /api/v1/predictions
func (s *PredictionService) Create(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	student, err := s.studentRepo.FindByUserID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Student profile not found. Please complete your profile first.",
		})
	}

	score, factors := risk.Compute(*student)
	level := risk.Level(score)
	recommendations := risk.Recommend(*student, score, factors)

	prediction := model.Prediction{
		StudentID:       student.ID,
		UserID:          userID,
		RiskLevel:       level,
		RiskScore:       score,
		Factors:         factors,
		Recommendations: recommendations,
		InputData:       *student,
	}
	if err := s.predictionRepo.Create(&prediction); err != nil {
		s.logger.Error("failed to persist prediction", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to create prediction",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(model.SuccessResponse[model.Prediction]{
		Success: true,
		Data:    prediction,
	})
}

// GET /api/v1/predictions/history
func (s *PredictionService) History(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	role := c.Locals("role").(string)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	scope, err := s.historyScope(userID, role)
	if err != nil {
		s.logger.Error("failed to resolve history scope", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch predictions",
		})
	}

	predictions, total, err := s.predictionRepo.History(scope, page, limit)
	if err != nil {
		s.logger.Error("failed to fetch prediction history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch predictions",
		})
	}

	rows, err := s.joinPredictions(predictions)
	if err != nil {
		s.logger.Error("failed to join prediction rows", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch predictions",
		})
	}

	return c.JSON(model.PredictionHistoryResponse{
		Success:     true,
		Count:       len(rows),
		Total:       total,
		Page:        page,
		Pages:       int(math.Ceil(float64(total) / float64(limit))),
		Predictions: rows,
	})
}

// GET /api/v1/predictions/latest
func (s *PredictionService) Latest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	prediction, err := s.predictionRepo.LatestByUserID(userID)
	if errors.Is(err, repo.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "No predictions found. Generate your first prediction.",
		})
	}
	if err != nil {
		s.logger.Error("failed to fetch latest prediction", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch prediction",
		})
	}

	return c.JSON(model.SuccessResponse[*model.Prediction]{Success: true, Data: prediction})
}

// GET /api/v1/predictions/:id
func (s *PredictionService) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid prediction id",
		})
	}

	prediction, err := s.predictionRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Prediction not found",
		})
	}

	userID := c.Locals("user_id").(primitive.ObjectID)
	if c.Locals("role").(string) == model.RoleStudent && !StudentOwnsPrediction(prediction, userID) {
		return c.Status(fiber.StatusForbidden).JSON(model.ErrorResponse{
			Success: false,
			Message: "Not authorized",
		})
	}

	return c.JSON(model.SuccessResponse[*model.Prediction]{Success: true, Data: prediction})
}

// GET /api/v1/predictions/export/csv
func (s *PredictionService) ExportCSV(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	role := c.Locals("role").(string)

	scope, err := s.historyScope(userID, role)
	if err != nil {
		s.logger.Error("failed to resolve export scope", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to export predictions",
		})
	}

	predictions, err := s.predictionRepo.FindForExport(scope)
	if err != nil {
		s.logger.Error("failed to fetch predictions for export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to export predictions",
		})
	}

	rows, err := s.joinPredictions(predictions)
	if err != nil {
		s.logger.Error("failed to join export rows", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to export predictions",
		})
	}

	data, err := helper.PredictionsCSV(rows)
	if err != nil {
		s.logger.Error("failed to render csv", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to export predictions",
		})
	}

	filename := "predictions_" + time.Now().UTC().Format("20060102150405") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// historyScope resolves which users' predictions the actor may read. A nil
// slice means unrestricted (admin).
func (s *PredictionService) historyScope(userID primitive.ObjectID, role string) ([]primitive.ObjectID, error) {
	switch role {
	case model.RoleStudent:
		return []primitive.ObjectID{userID}, nil
	case model.RoleMentor:
		assigned, err := s.userRepo.FindAssignedStudents(userID)
		if err != nil {
			return nil, err
		}
		ids := make([]primitive.ObjectID, 0, len(assigned))
		for _, u := range assigned {
			ids = append(ids, u.ID)
		}
		return ids, nil
	default:
		return nil, nil
	}
}

func (s *PredictionService) joinPredictions(predictions []model.Prediction) ([]model.PredictionResponse, error) {
	return joinPredictionRows(s.userRepo, s.studentRepo, predictions)
}

// joinPredictionRows attaches user and profile identifiers to prediction
// snapshots in two id-set lookups.
func joinPredictionRows(
	userRepo repo.UserRepository,
	studentRepo repo.StudentRepository,
	predictions []model.Prediction,
) ([]model.PredictionResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(predictions))
	seen := make(map[primitive.ObjectID]bool, len(predictions))
	for _, p := range predictions {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}

	users, err := userRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	profiles, err := studentRepo.FindByUserIDs(ids)
	if err != nil {
		return nil, err
	}
	profileByUser := make(map[primitive.ObjectID]model.Student, len(profiles))
	for _, st := range profiles {
		profileByUser[st.UserID] = st
	}

	rows := make([]model.PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		row := model.PredictionResponse{Prediction: p}
		if u, ok := users[p.UserID]; ok {
			summary := u.Summary()
			row.User = &summary
		}
		if st, ok := profileByUser[p.UserID]; ok {
			row.StudentNumber = st.StudentID
			row.CurrentGrade = st.CurrentGrade
			row.GPA = st.GPA
			row.AttendancePct = st.Attendance
		}
		rows = append(rows, row)
	}
	return rows, nil
}
