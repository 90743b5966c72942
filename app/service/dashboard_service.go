package service

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
)

type DashboardService struct {
	userRepo       repo.UserRepository
	studentRepo    repo.StudentRepository
	predictionRepo repo.PredictionRepository
	sessionRepo    repo.SessionRepository
	logger         *zap.Logger
}

func NewDashboardService(
	userRepo repo.UserRepository,
	studentRepo repo.StudentRepository,
	predictionRepo repo.PredictionRepository,
	sessionRepo repo.SessionRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		userRepo:       userRepo,
		studentRepo:    studentRepo,
		predictionRepo: predictionRepo,
		sessionRepo:    sessionRepo,
		logger:         logger,
	}
}

// GET /api/v1/dashboard/student
func (s *DashboardService) Student(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	student, err := s.studentRepo.FindByUserID(userID)
	if errors.Is(err, repo.ErrNotFound) {
		return c.JSON(model.SuccessResponse[model.StudentDashboard]{
			Success: true,
			Data: model.StudentDashboard{
				ProfileComplete: false,
				Message:         "Please complete your student profile to see your dashboard",
			},
		})
	}
	if err != nil {
		s.logger.Error("failed to load student profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}

	dashboard := model.StudentDashboard{
		ProfileComplete:  true,
		GPA:              student.GPA,
		Attendance:       student.Attendance,
		CurrentRisk:      "unknown",
		CurrentRiskScore: 0,
	}

	latest, err := s.predictionRepo.LatestByUserID(userID)
	switch {
	case err == nil:
		dashboard.CurrentRisk = latest.RiskLevel
		dashboard.CurrentRiskScore = latest.RiskScore
		dashboard.Recommendations = latest.Recommendations
		factors := latest.Factors
		dashboard.LatestFactors = &factors
	case !errors.Is(err, repo.ErrNotFound):
		s.logger.Error("failed to load latest prediction", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}

	total, err := s.predictionRepo.CountByUserID(userID)
	if err != nil {
		s.logger.Error("failed to count predictions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}
	dashboard.TotalPredictions = total

	trend, err := s.predictionRepo.TrendByUserID(userID, 5)
	if err != nil {
		s.logger.Error("failed to load prediction trend", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}
	dashboard.PredictionTrend = chronological(trend)

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		s.logger.Error("failed to load user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}
	if user.AssignedMentor != nil {
		mentor, err := s.userRepo.FindByID(*user.AssignedMentor)
		switch {
		case err == nil:
			summary := mentor.Summary()
			dashboard.Mentor = &summary
		case !errors.Is(err, repo.ErrNotFound):
			s.logger.Error("failed to load assigned mentor", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
				Success: false,
				Message: "Failed to load dashboard",
			})
		}
	}

	sessions, err := s.sessionRepo.FindByStudent(userID, []model.SessionStatus{
		model.SessionPending, model.SessionScheduled,
	})
	if err != nil {
		s.logger.Error("failed to load sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}
	dashboard.Sessions = joinSessionRows(s.userRepo, s.logger, sessions)

	return c.JSON(model.SuccessResponse[model.StudentDashboard]{Success: true, Data: dashboard})
}

// GET /api/v1/dashboard/mentor
func (s *DashboardService) Mentor(c *fiber.Ctx) error {
	mentorID := c.Locals("user_id").(primitive.ObjectID)

	assigned, err := s.userRepo.FindAssignedStudents(mentorID)
	if err != nil {
		s.logger.Error("failed to load assigned students", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}
	users := make(map[primitive.ObjectID]model.User, len(assigned))
	ids := make([]primitive.ObjectID, 0, len(assigned))
	for _, u := range assigned {
		users[u.ID] = u
		ids = append(ids, u.ID)
	}

	students, err := s.studentRepo.FindByUserIDs(ids)
	if err != nil {
		s.logger.Error("failed to load student profiles", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}

	latest, err := s.predictionRepo.LatestPerUser()
	if err != nil {
		s.logger.Error("failed to load latest predictions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}

	roster := joinRoster(students, users, latest)
	avgGPA, avgAttendance := profileAverages(students)

	pending, err := s.sessionRepo.FindByMentor(mentorID, []model.SessionStatus{model.SessionPending})
	if err != nil {
		s.logger.Error("failed to load pending sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}

	scheduled, err := s.sessionRepo.FindScheduledFrom(mentorID, time.Now())
	if err != nil {
		s.logger.Error("failed to load scheduled sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to load dashboard",
		})
	}

	return c.JSON(model.SuccessResponse[model.MentorDashboard]{
		Success: true,
		Data: model.MentorDashboard{
			TotalStudents:     len(roster),
			RiskDistribution:  distributionOf(roster),
			HighRiskStudents:  highRiskOf(roster, 0),
			AvgGPA:            avgGPA,
			AvgAttendance:     avgAttendance,
			Students:          roster,
			PendingSessions:   joinSessionRows(s.userRepo, s.logger, pending),
			ScheduledSessions: joinSessionRows(s.userRepo, s.logger, scheduled),
		},
	})
}

// GET /api/v1/dashboard/admin
func (s *DashboardService) Admin(c *fiber.Ctx) error {
	totalStudents, err := s.userRepo.CountActiveByRole(model.RoleStudent)
	if err != nil {
		return s.adminFailure(c, err)
	}
	totalMentors, err := s.userRepo.CountActiveByRole(model.RoleMentor)
	if err != nil {
		return s.adminFailure(c, err)
	}
	totalAdmins, err := s.userRepo.CountActiveByRole(model.RoleAdmin)
	if err != nil {
		return s.adminFailure(c, err)
	}

	totalPredictions, err := s.predictionRepo.Count()
	if err != nil {
		return s.adminFailure(c, err)
	}

	latest, err := s.predictionRepo.LatestPerUser()
	if err != nil {
		return s.adminFailure(c, err)
	}

	students, err := s.studentRepo.FindAll()
	if err != nil {
		return s.adminFailure(c, err)
	}
	avgGPA, avgAttendance := profileAverages(students)

	userIDs := make([]primitive.ObjectID, 0, len(students))
	for _, st := range students {
		userIDs = append(userIDs, st.UserID)
	}
	users, err := s.userRepo.FindByIDs(userIDs)
	if err != nil {
		return s.adminFailure(c, err)
	}
	roster := joinRoster(students, users, latest)

	recent, err := s.predictionRepo.Recent(10)
	if err != nil {
		return s.adminFailure(c, err)
	}
	recentRows, err := joinPredictionRows(s.userRepo, s.studentRepo, recent)
	if err != nil {
		return s.adminFailure(c, err)
	}

	return c.JSON(model.SuccessResponse[model.AdminDashboard]{
		Success: true,
		Data: model.AdminDashboard{
			TotalUsers:       totalStudents + totalMentors + totalAdmins,
			TotalStudents:    totalStudents,
			TotalMentors:     totalMentors,
			TotalAdmins:      totalAdmins,
			TotalPredictions: totalPredictions,
			RiskDistribution: distributionFromLatest(latest, totalStudents),
			AvgGPA:           avgGPA,
			AvgAttendance:    avgAttendance,
			RecentActivity:   recentRows,
			HighRiskStudents: highRiskOf(roster, 10),
		},
	})
}

func (s *DashboardService) adminFailure(c *fiber.Ctx, err error) error {
	s.logger.Error("failed to load admin dashboard", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
		Success: false,
		Message: "Failed to load dashboard",
	})
}

// chronological reverses a newest-first trend slice so charts read
// oldest to newest.
func chronological(predictions []model.Prediction) []model.Prediction {
	out := make([]model.Prediction, len(predictions))
	for i, p := range predictions {
		out[len(predictions)-1-i] = p
	}
	return out
}

func distributionOf(rows []model.StudentWithRisk) model.RiskDistribution {
	var dist model.RiskDistribution
	for _, r := range rows {
		switch r.RiskLevel {
		case model.LevelLow:
			dist.Low++
		case model.LevelMedium:
			dist.Medium++
		case model.LevelHigh:
			dist.High++
		default:
			dist.Unknown++
		}
	}
	return dist
}

// distributionFromLatest buckets every student by the risk level of their
// latest prediction; students who never generated one count as unknown.
func distributionFromLatest(latest map[primitive.ObjectID]model.Prediction, totalStudents int64) model.RiskDistribution {
	var dist model.RiskDistribution
	for _, p := range latest {
		switch p.RiskLevel {
		case model.LevelLow:
			dist.Low++
		case model.LevelMedium:
			dist.Medium++
		case model.LevelHigh:
			dist.High++
		}
	}
	if unknown := int(totalStudents) - len(latest); unknown > 0 {
		dist.Unknown = unknown
	}
	return dist
}

// highRiskOf returns high-risk roster rows sorted by score descending.
// A limit of 0 means no cap.
func highRiskOf(rows []model.StudentWithRisk, limit int) []model.StudentWithRisk {
	high := filterByRiskLevel(rows, model.LevelHigh)
	sort.SliceStable(high, func(i, j int) bool {
		return high[i].RiskScore > high[j].RiskScore
	})
	if limit > 0 && len(high) > limit {
		high = high[:limit]
	}
	return high
}

func profileAverages(students []model.Student) (gpa, attendance float64) {
	if len(students) == 0 {
		return 0, 0
	}
	var gpaSum, attSum float64
	for _, st := range students {
		gpaSum += st.GPA
		attSum += st.Attendance
	}
	n := float64(len(students))
	return round2(gpaSum / n), round2(attSum / n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
