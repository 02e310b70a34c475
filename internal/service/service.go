package service

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/restonqwer/energy-dashboard/internal/domain"
	"github.com/restonqwer/energy-dashboard/internal/repository"
)

type Services struct {
	Repos    *repository.Repos
	Readings *ReadingService
	Reports  *ReportService
}

func New(db *sqlx.DB, uploader ReportUploader) *Services {
	repos := repository.New(db)
	return &Services{
		Repos:    repos,
		Readings: &ReadingService{repos: repos},
		Reports:  NewReportService(repos, uploader),
	}
}

type ReadingService struct {
	repos *repository.Repos
}

// FromMQTT decodes a reading published on the readings topic and stores it.
func (s *ReadingService) FromMQTT(topic string, payload []byte) error {
	var r struct {
		Building  string    `json:"building"`
		Timestamp time.Time `json:"timestamp"`
		PowerKW   float64   `json:"power_kw"`
	}
	if err := json.Unmarshal(payload, &r); err != nil {
		return err
	}
	rd := &domain.Reading{
		Building:  r.Building,
		Timestamp: r.Timestamp,
		PowerKW:   r.PowerKW,
	}
	return s.repos.InsertReading(rd)
}
