package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/restonqwer/energy-dashboard/internal/auth"
	"github.com/restonqwer/energy-dashboard/internal/domain"
	"github.com/restonqwer/energy-dashboard/internal/service"
)

// MetricsStore is what the read endpoints need from the repository.
type MetricsStore interface {
	MetricsSummary(building string, start, end time.Time) (*domain.MetricsSummary, error)
	Consumption(building string, start, end time.Time, view domain.ViewType) ([]domain.ConsumptionPoint, error)
}

// Predictor forwards a feature vector to the model service.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictionRequest) (float64, error)
}

// ReportGenerator builds (and optionally uploads) a daily analytics report.
type ReportGenerator interface {
	Generate(ctx context.Context, building, date string) (*service.Report, error)
}

type Deps struct {
	Store     MetricsStore
	Predictor Predictor
	Reports   ReportGenerator
	Gate      *auth.Gate
}

func Register(app *fiber.App, d Deps) {
	app.Get("/metrics", handleMetrics(d.Store))
	app.Get("/consumption", handleConsumption(d.Store))
	app.Post("/predict", handlePredict(d.Predictor))

	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", handleLogin(d.Gate))
	authGroup.Post("/register", handleRegister(d.Gate))
	authGroup.Get("/profile", d.Gate.Protect(), handleProfile)

	app.Post("/reports/generate", d.Gate.Protect(), handleGenerateReport(d.Reports))
}

// dateRange parses start_date/end_date query params. The end date is
// inclusive, so the returned end bound is the start of the following day.
func dateRange(c *fiber.Ctx) (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		return start, end, errors.New("invalid or missing start_date")
	}
	end, err = time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		return start, end, errors.New("invalid or missing end_date")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func handleMetrics(store MetricsStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		building := c.Query("building")
		if building == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing building"})
		}
		start, end, err := dateRange(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		summary, err := store.MetricsSummary(building, start, end)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(summary)
	}
}

func handleConsumption(store MetricsStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		building := c.Query("building")
		if building == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing building"})
		}
		start, end, err := dateRange(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		view, ok := domain.ParseViewType(c.Query("view_type", string(domain.ViewHourly)))
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "view_type must be hourly or daily"})
		}
		points, err := store.Consumption(building, start, end, view)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(points)
	}
}

func handlePredict(p Predictor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.PredictionRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		value, err := p.Predict(c.Context(), req)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(domain.PredictionResponse{PredictedConsumption: value})
	}
}

func handleLogin(gate *auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var creds domain.Credentials
		if err := c.BodyParser(&creds); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		token, err := gate.Login(creds.Email, creds.Password)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(domain.LoginResponse{Email: creds.Email, Token: token})
	}
}

func handleRegister(gate *auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := gate.Register()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}

func handleProfile(c *fiber.Ctx) error {
	email, _ := c.Locals(auth.LocalsEmail).(string)
	return c.JSON(fiber.Map{"email": email})
}

func handleGenerateReport(reports ReportGenerator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Building string `json:"building"`
			Date     string `json:"date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Building == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing building"})
		}
		if req.Date == "" {
			req.Date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		}
		report, err := reports.Generate(c.Context(), req.Building, req.Date)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(report)
	}
}
