package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/stheno/internal/http/api"
	"github.com/Nixie-Tech-LLC/stheno/internal/player"
)

func main() {
	// local development reads a .env file; kiosks set real env vars
	_ = godotenv.Load()

	env := LoadEnvironment()

	level := zerolog.InfoLevel
	if env.Environment == "development" {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("screen", env.ScreenCode).Logger().
		Level(level)
	log.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := player.NewEngine(logger)
	syncer := player.NewSyncer(player.SyncConfig{
		ServerURL:    env.ServerURL,
		ScreenCode:   env.ScreenCode,
		DeviceID:     env.DeviceID,
		PollInterval: env.PollInterval,
	}, engine, logger)

	go func() {
		if err := engine.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("engine exited")
		}
	}()
	go func() {
		if err := syncer.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("syncer exited")
		}
	}()

	if env.MQTTBrokerURL != "" {
		client, err := player.StartCommandListener(env.MQTTBrokerURL, env.DeviceID, syncer, logger)
		if err != nil {
			// polling alone keeps the screen alive
			logger.Error().Err(err).Msg("mqtt unavailable, continuing on polling")
		} else {
			defer client.Disconnect(250)
		}
	}

	if env.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/player",
	},
		player.PlayerModule(engine, syncer),
	)

	logger.Info().Str("address", env.ListenAddress).Msg("player control surface listening")
	if err := r.Run(env.ListenAddress); err != nil {
		log.Fatal().Err(err).Msg("player error")
	}
}
