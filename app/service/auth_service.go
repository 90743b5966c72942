package service

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
	"fiber/edurisk/helper"
)

type AuthService struct {
	userRepo repo.UserRepository
	logger   *zap.Logger
}

func NewAuthService(userRepo repo.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, logger: logger}
}

// POST /api/v1/auth/register
func (s *AuthService) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
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
			Message: "Failed to register user",
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
			Message: "Failed to register user",
		})
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

// POST /api/v1/auth/login
func (s *AuthService) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid input",
		})
	}

	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Email and password are required",
		})
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil || !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid credentials",
		})
	}

	if err := helper.CheckPassword(user.Password, req.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid credentials",
		})
	}

	token, err := helper.GenerateToken(*user)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	refreshToken, err := helper.GenerateRefreshToken(*user)
	if err != nil {
		s.logger.Error("failed to sign refresh token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	if err := s.userRepo.SetRefreshToken(user.ID, refreshToken); err != nil {
		s.logger.Error("failed to persist refresh token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(model.SuccessResponse[model.LoginResponse]{
		Success: true,
		Data: model.LoginResponse{
			User: model.LoginUser{
				ID:    user.ID.Hex(),
				Name:  user.Name,
				Email: user.Email,
				Role:  user.Role,
			},
			Token:        token,
			RefreshToken: refreshToken,
		},
	})
}

// POST /api/v1/auth/refresh
func (s *AuthService) Refresh(c *fiber.Ctx) error {
	var req model.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
			Success: false,
			Message: "Refresh token is required",
		})
	}

	claims, err := helper.ValidateToken(req.RefreshToken)
	if err != nil || claims.Type != "refresh" {
		return c.Status(fiber.StatusUnauthorized).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid refresh token",
		})
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(model.ErrorResponse{
			Success: false,
			Message: "Invalid refresh token",
		})
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil || !user.IsActive || user.RefreshToken != req.RefreshToken {
		return c.Status(fiber.StatusUnauthorized).JSON(model.ErrorResponse{
			Success: false,
			Message: "Refresh token revoked",
		})
	}

	token, err := helper.GenerateToken(*user)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	refreshToken, err := helper.GenerateRefreshToken(*user)
	if err != nil {
		s.logger.Error("failed to sign refresh token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	if err := s.userRepo.SetRefreshToken(user.ID, refreshToken); err != nil {
		s.logger.Error("failed to rotate refresh token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(model.SuccessResponse[model.RefreshTokenResponse]{
		Success: true,
		Data:    model.RefreshTokenResponse{Token: token, RefreshToken: refreshToken},
	})
}

// POST /api/v1/auth/logout
func (s *AuthService) Logout(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	if err := s.userRepo.SetRefreshToken(userID, ""); err != nil {
		s.logger.Error("failed to clear refresh token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
			Success: false,
			Message: "Failed to log out",
		})
	}

	return c.JSON(model.SuccessMessageResponse{Success: true, Message: "Logged out"})
}

// GET /api/v1/auth/me
func (s *AuthService) Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{
			Success: false,
			Message: "User not found",
		})
	}

	return c.JSON(model.SuccessResponse[model.LoginUser]{
		Success: true,
		Data: model.LoginUser{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}
