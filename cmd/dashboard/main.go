package main

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/restonqwer/energy-dashboard/internal/config"
	"github.com/restonqwer/energy-dashboard/internal/web"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	client := web.NewClient(config.APIURL())
	s := web.New(client)

	addr := viper.GetString("DASHBOARD_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	log.Info().Str("addr", addr).Msg("dashboard listening")
	log.Fatal().Err(http.ListenAndServe(addr, s)).Msg("server exit")
}
