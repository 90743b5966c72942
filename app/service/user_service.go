package service

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
	"fiber/edurisk/helper"
)

type UserService struct {
	userRepo    repo.UserRepository
	studentRepo repo.StudentRepository
	logger      *zap.Logger
}

func NewUserService(userRepo repo.UserRepository, studentRepo repo.StudentRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, studentRepo: studentRepo, logger: logger}
}

// GET /api/v1/users
func (s *UserService) List(c *fiber.Ctx) error {
	role := c.Query("role", "")
	search := c.Query("search", "")

	users, err := s.userRepo.FindAll(role, search)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch users",
		})
	}
	if users == nil {
		users = []model.User{}
	}

	return c.JSON(model.SuccessResponse[[]model.User]{Success: true, Data: users})
}

// GET /api/v1/users/mentors
func (s *UserService) ListMentors(c *fiber.Ctx) error {
	mentors, err := s.userRepo.FindMentors()
	if err != nil {
		s.logger.Error("failed to list mentors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to fetch mentors",
		})
	}

	summaries := make([]model.UserSummary, 0, len(mentors))
	for i := range mentors {
		summaries = append(summaries, mentors[i].Summary())
	}

	return c.JSON(model.SuccessResponse[[]model.UserSummary]{Success: true, Data: summaries})
}

// POST /api/v1/users
func (s *UserService) Create(c *fiber.Ctx) error {
	var req model.CreateUserRequest
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

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "User already exists",
		})
	}

	hashed, err := helper.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to create user",
		})
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.userRepo.Create(&user); err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to create user",
		})
	}

	// Admin-created students get a default profile stub so the roster can
	// list them before their first submission.
	if user.Role == model.RoleStudent {
		stub := model.Student{
			UserID:          user.ID,
			StudentID:       helper.NewStudentNumber(),
			CurrentGrade:    "Not Set",
			ParentalSupport: model.LevelMedium,
			FamilyIncome:    model.LevelMedium,
			InternetAccess:  true,
		}
		if err := s.studentRepo.Create(&stub); err != nil {
			s.logger.Error("failed to create student profile stub",
				zap.String("user_id", user.ID.Hex()), zap.Error(err))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(model.SuccessResponse[model.LoginUser]{
		Success: true,
		Data: model.LoginUser{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// PUT /api/v1/users/:id
func (s *UserService) Update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid user id",
		})
	}

	var req model.UpdateUserRequest
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

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "User not found",
		})
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.AssignedMentor != nil {
		if *req.AssignedMentor == "" {
			user.AssignedMentor = nil
		} else {
			mentorID, err := primitive.ObjectIDFromHex(*req.AssignedMentor)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
					Success: false,
					Message: "Invalid mentor id",
				})
			}
			mentor, err := s.userRepo.FindByID(mentorID)
			if err != nil || mentor.Role != model.RoleMentor {
				return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
					Success: false,
					Message: "Assigned mentor must be a mentor",
				})
			}
			user.AssignedMentor = &mentorID
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("failed to update user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to update user",
		})
	}

	return c.JSON(model.SuccessResponse[*model.User]{Success: true, Data: user})
}

// DELETE /api/v1/users/:id
func (s *UserService) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid user id",
		})
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "User not found",
		})
	}

	// Soft delete only; cascading removal happens through the student
	// deletion endpoint.
	user.IsActive = false
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("failed to deactivate user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to deactivate user",
		})
	}

	return c.JSON(model.SuccessMessageResponse{Success: true, Message: "User deactivated successfully"})
}

// PUT /api/v1/users/:studentId/assign-mentor
func (s *UserService) AssignMentor(c *fiber.Ctx) error {
	studentID, err := primitive.ObjectIDFromHex(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid student id",
		})
	}

	var req model.AssignMentorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid input",
		})
	}
	mentorID, err := primitive.ObjectIDFromHex(req.MentorID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid mentor id",
		})
	}

	student, err := s.userRepo.FindByID(studentID)
	if err != nil || student.Role != model.RoleStudent {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Student not found",
		})
	}

	mentor, err := s.userRepo.FindByID(mentorID)
	if err != nil || mentor.Role != model.RoleMentor {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "Mentor not found",
		})
	}

	student.AssignedMentor = &mentorID
	if err := s.userRepo.Update(student); err != nil {
		s.logger.Error("failed to assign mentor", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to assign mentor",
		})
	}

	return c.JSON(model.SuccessResponse[*model.User]{
		Success: true,
		Message: "Mentor assigned successfully",
		Data:    student,
	})
}
