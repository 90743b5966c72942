package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Email          string              `bson:"email" json:"email"`
	Password       string              `bson:"password" json:"-"`
	Role           string              `bson:"role" json:"role"`
	Phone          string              `bson:"phone,omitempty" json:"phone,omitempty"`
	IsActive       bool                `bson:"isActive" json:"is_active"`
	AssignedMentor *primitive.ObjectID `bson:"assignedMentor,omitempty" json:"assigned_mentor,omitempty"`
	RefreshToken   string              `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt      time.Time           `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updated_at"`
}

// UserSummary is the contact shape embedded into session and dashboard
// responses in place of a populated reference.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=student mentor admin"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=student mentor admin"`
	Phone    string `json:"phone"`
}

type UpdateUserRequest struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Role           *string `json:"role,omitempty" validate:"omitempty,oneof=student mentor admin"`
	Phone          *string `json:"phone,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
	AssignedMentor *string `json:"assigned_mentor,omitempty"`
}

type AssignMentorRequest struct {
	MentorID string `json:"mentor_id" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LoginUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}
