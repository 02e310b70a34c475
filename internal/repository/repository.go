package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) InsertReading(rd *domain.Reading) error {
	_, err := r.db.Exec(`INSERT INTO readings(building, timestamp, power_kw) VALUES ($1,$2,$3)`,
		rd.Building, rd.Timestamp, rd.PowerKW)
	return err
}

// MetricsSummary aggregates readings for one building over [start, end).
// Readings are hourly samples, so the sum of power_kw is kWh; x1000 gives Wh.
func (r *Repos) MetricsSummary(building string, start, end time.Time) (*domain.MetricsSummary, error) {
	var row struct {
		Total   float64 `db:"total_consumption"`
		Peak    float64 `db:"peak_demand"`
		Average float64 `db:"average_consumption"`
	}
	err := r.db.Get(&row, `
		SELECT COALESCE(SUM(power_kw),0)*1000 AS total_consumption,
		       COALESCE(MAX(power_kw),0)      AS peak_demand,
		       COALESCE(AVG(power_kw),0)      AS average_consumption
		FROM readings
		WHERE building = $1 AND timestamp >= $2 AND timestamp < $3`,
		building, start, end)
	if err != nil {
		return nil, err
	}

	peakHour, err := r.peakHour(building, start, end)
	if err != nil {
		return nil, err
	}

	return &domain.MetricsSummary{
		TotalConsumption:   row.Total,
		PeakDemand:         row.Peak,
		PeakHour:           peakHour,
		AverageConsumption: row.Average,
	}, nil
}

// peakHour finds the hour of day with the highest average load and formats
// it as a one-hour window on the 24-hour clock, e.g. "17:00-18:00". The
// window ending at midnight is rendered "23:00-24:00".
func (r *Repos) peakHour(building string, start, end time.Time) (string, error) {
	var hour int
	err := r.db.Get(&hour, `
		SELECT EXTRACT(HOUR FROM timestamp)::int AS hour
		FROM readings
		WHERE building = $1 AND timestamp >= $2 AND timestamp < $3
		GROUP BY 1
		ORDER BY AVG(power_kw) DESC, 1
		LIMIT 1`,
		building, start, end)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:00-%02d:00", hour, hour+1), nil
}

// Consumption returns the time series for one building over [start, end).
// Hourly buckets carry average power (kW); daily buckets carry the summed
// consumption for the day.
func (r *Repos) Consumption(building string, start, end time.Time, view domain.ViewType) ([]domain.ConsumptionPoint, error) {
	bucket := `date_trunc('hour', timestamp)`
	agg := `AVG(power_kw)`
	if view == domain.ViewDaily {
		bucket = `date_trunc('day', timestamp)`
		agg = `SUM(power_kw)`
	}

	var rows []struct {
		TS          time.Time `db:"ts"`
		Consumption float64   `db:"consumption"`
	}
	q := fmt.Sprintf(`
		SELECT %s AS ts, %s AS consumption
		FROM readings
		WHERE building = $1 AND timestamp >= $2 AND timestamp < $3
		GROUP BY 1
		ORDER BY 1`, bucket, agg)
	if err := r.db.Select(&rows, q, building, start, end); err != nil {
		return nil, err
	}

	out := make([]domain.ConsumptionPoint, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ConsumptionPoint{
			Timestamp:   row.TS.UTC().Format(time.RFC3339),
			Consumption: row.Consumption,
		})
	}
	return out, nil
}
