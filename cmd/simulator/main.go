package main

import (
	"encoding/json"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/restonqwer/energy-dashboard/internal/config"
	"github.com/restonqwer/energy-dashboard/internal/domain"
)

type reading struct {
	Building  string    `json:"building"`
	Timestamp time.Time `json:"timestamp"`
	PowerKW   float64   `json:"power_kw"`
}

// baseLoad gives each building a distinct consumption profile so the
// dashboard has something to show locally.
func baseLoad(name string) float64 {
	switch name {
	case "Hospital":
		return 120
	case "Industry":
		return 200
	case "School":
		return 60
	case "Office":
		return 45
	default:
		return 5
	}
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	for i := 0; i < 100; i++ {
		for _, b := range domain.Catalog {
			r := reading{
				Building:  b.Name,
				Timestamp: time.Now(),
				PowerKW:   baseLoad(b.Name) * (0.8 + rand.Float64()*0.4),
			}
			payload, _ := json.Marshal(r)
			token := client.Publish("energy/readings", 0, false, payload)
			token.Wait()
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
