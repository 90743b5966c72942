package route

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
	"fiber/edurisk/app/service"
	"fiber/edurisk/middleware"
)

func SetupRoutes(app *fiber.App, mongoDB *mongo.Database, logger *zap.Logger) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	userRepo := repo.NewUserRepo(mongoDB)
	studentRepo := repo.NewStudentRepo(mongoDB)
	predictionRepo := repo.NewPredictionRepo(mongoDB)
	sessionRepo := repo.NewSessionRepo(mongoDB)

	authService := service.NewAuthService(userRepo, logger)
	userService := service.NewUserService(userRepo, studentRepo, logger)
	studentService := service.NewStudentService(userRepo, studentRepo, predictionRepo, sessionRepo, logger)
	predictionService := service.NewPredictionService(userRepo, studentRepo, predictionRepo, logger)
	sessionService := service.NewSessionService(userRepo, studentRepo, sessionRepo, logger)
	dashboardService := service.NewDashboardService(userRepo, studentRepo, predictionRepo, sessionRepo, logger)

	auth := v1.Group("/auth")
	auth.Post("/register", authService.Register)
	auth.Post("/login", authService.Login)
	auth.Post("/refresh", authService.Refresh)

	protected := v1.Group("", middleware.AuthRequired())

	protected.Post("/auth/logout", authService.Logout)
	protected.Get("/auth/me", authService.Me)

	users := protected.Group("/users", middleware.RoleRequired(model.RoleAdmin))
	users.Get("/", userService.List)
	users.Get("/mentors", userService.ListMentors)
	users.Post("/", userService.Create)
	users.Put("/:id", userService.Update)
	users.Delete("/:id", userService.Delete)
	users.Put("/:studentId/assign-mentor", userService.AssignMentor)

	students := protected.Group("/students")
	students.Get("/profile", middleware.RoleRequired(model.RoleStudent), studentService.GetProfile)
	students.Post("/profile", middleware.RoleRequired(model.RoleStudent), studentService.UpsertProfile)
	students.Get("/", middleware.RoleRequired(model.RoleMentor, model.RoleAdmin), studentService.List)
	students.Get("/:id", middleware.RoleRequired(model.RoleMentor, model.RoleAdmin), studentService.Get)
	students.Delete("/:id", middleware.RoleRequired(model.RoleMentor, model.RoleAdmin), studentService.Delete)

	predictions := protected.Group("/predictions")
	predictions.Post("/", middleware.RoleRequired(model.RoleStudent), predictionService.Create)
	predictions.Get("/history", predictionService.History)
	predictions.Get("/latest", middleware.RoleRequired(model.RoleStudent), predictionService.Latest)
	predictions.Get("/export/csv", middleware.RoleRequired(model.RoleMentor, model.RoleAdmin), predictionService.ExportCSV)
	predictions.Get("/:id", predictionService.Get)

	sessions := protected.Group("/sessions")
	sessions.Post("/", middleware.RoleRequired(model.RoleStudent), sessionService.Create)
	sessions.Post("/book", middleware.RoleRequired(model.RoleMentor, model.RoleAdmin), sessionService.Book)
	sessions.Get("/student", middleware.RoleRequired(model.RoleStudent), sessionService.ListForStudent)
	sessions.Get("/mentor", middleware.RoleRequired(model.RoleMentor), sessionService.ListForMentor)
	sessions.Get("/mentor/pending", middleware.RoleRequired(model.RoleMentor), sessionService.ListPending)
	sessions.Put("/:id/approve", middleware.RoleRequired(model.RoleMentor), sessionService.Approve)
	sessions.Put("/:id/reject", middleware.RoleRequired(model.RoleMentor), sessionService.Reject)

	dashboard := protected.Group("/dashboard")
	dashboard.Get("/student", middleware.RoleRequired(model.RoleStudent), dashboardService.Student)
	dashboard.Get("/mentor", middleware.RoleRequired(model.RoleMentor), dashboardService.Mentor)
	dashboard.Get("/admin", middleware.RoleRequired(model.RoleAdmin), dashboardService.Admin)
}
