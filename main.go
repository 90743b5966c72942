package main

import (
	"log"

	"fiber/edurisk/config"
	"fiber/edurisk/db"
	"fiber/edurisk/route"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadEnv()

	logger := config.NewLogger(config.Env.AppEnv)
	defer logger.Sync()

	db.ConnectDB(logger)

	app := config.NewApp()

	route.SetupRoutes(app, db.GetMongo(), logger)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("EduRisk API")
	})

	log.Fatal(app.Listen(":" + config.Env.AppPort))
}
