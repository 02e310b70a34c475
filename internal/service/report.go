package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

// ReportUploader pushes a serialized report to object storage and returns a
// download URL. Nil means cloud services are disabled and reports are
// returned inline only.
type ReportUploader interface {
	UploadReport(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// MetricsStore is the slice of the repository the report service needs.
type MetricsStore interface {
	MetricsSummary(building string, start, end time.Time) (*domain.MetricsSummary, error)
	Consumption(building string, start, end time.Time, view domain.ViewType) ([]domain.ConsumptionPoint, error)
}

type Report struct {
	Date      string                    `json:"date"`
	Building  string                    `json:"building"`
	ReportURL string                    `json:"report_url"`
	Analytics *domain.MetricsSummary    `json:"analytics"`
	Hourly    []domain.ConsumptionPoint `json:"hourly"`
}

type ReportService struct {
	store    MetricsStore
	uploader ReportUploader
}

func NewReportService(store MetricsStore, uploader ReportUploader) *ReportService {
	return &ReportService{store: store, uploader: uploader}
}

// Generate computes one building's analytics for a single day and, when an
// uploader is configured, stores the JSON report and fills in ReportURL.
func (s *ReportService) Generate(ctx context.Context, building, date string) (*Report, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	start := day
	end := day.AddDate(0, 0, 1)

	analytics, err := s.store.MetricsSummary(building, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating metrics: %w", err)
	}
	hourly, err := s.store.Consumption(building, start, end, domain.ViewHourly)
	if err != nil {
		return nil, fmt.Errorf("loading consumption: %w", err)
	}

	report := &Report{
		Date:      date,
		Building:  building,
		Analytics: analytics,
		Hourly:    hourly,
	}

	if s.uploader != nil {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("reports/%s/%s.json", building, date)
		url, err := s.uploader.UploadReport(ctx, key, data, "application/json")
		if err != nil {
			// The analytics are still useful without the stored copy.
			log.Error().Err(err).Str("key", key).Msg("report upload failed")
		} else {
			report.ReportURL = url
		}
	}

	return report, nil
}
