package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type EnvConfig struct {
	AppEnv    string
	AppPort   string
	MongoURI  string
	MongoDB   string
	JWTSecret string
}

var Env EnvConfig

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	Env.AppEnv = os.Getenv("APP_ENV")
	Env.AppPort = os.Getenv("APP_PORT")
	Env.MongoURI = os.Getenv("MONGO_URI")
	Env.MongoDB = os.Getenv("MONGO_DB_NAME")
	Env.JWTSecret = os.Getenv("JWT_SECRET")

	if Env.AppPort == "" {
		Env.AppPort = "3000"
	}
}

func GetJWTSecret() string {
	return Env.JWTSecret
}
