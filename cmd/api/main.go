package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/restonqwer/energy-dashboard/internal/auth"
	"github.com/restonqwer/energy-dashboard/internal/cloud"
	"github.com/restonqwer/energy-dashboard/internal/config"
	"github.com/restonqwer/energy-dashboard/internal/database"
	httpHandlers "github.com/restonqwer/energy-dashboard/internal/http"
	"github.com/restonqwer/energy-dashboard/internal/predictor"
	"github.com/restonqwer/energy-dashboard/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	var uploader service.ReportUploader
	if config.UseCloudServices() {
		s3, err := cloud.NewS3Client(context.Background(), config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client init failed")
		}
		uploader = s3
	}

	svcs := service.New(db, uploader)
	gate := auth.NewGate(config.JWTSecret(), config.OperatorEmail(), config.OperatorPassword())

	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, httpHandlers.Deps{
		Store:     svcs.Repos,
		Predictor: predictor.New(config.PredictorURL()),
		Reports:   svcs.Reports,
		Gate:      gate,
	})

	addr := viper.GetString("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
