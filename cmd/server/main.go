package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/stheno/internal/db"
	"github.com/Nixie-Tech-LLC/stheno/internal/mqtt"
	"github.com/Nixie-Tech-LLC/stheno/internal/redis"
)

func main() {
	// local development reads a .env file; deployments set real env vars
	_ = godotenv.Load()

	env := LoadEnvironment()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	if err := mqtt.Init(env.MQTTBrokerURL, "stheno-server"); err != nil {
		// push refresh is best-effort; polling still works without it
		log.Error().Err(err).Msg("mqtt init failed, continuing without push")
	}
	defer mqtt.Cleanup()

	store := db.NewStore()

	if env.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, env, store)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
