package web

import (
	"context"
	"sync"
	"time"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

// DataSource is the slice of Client the view state needs. It exists so the
// fetch lifecycle can be tested without a live backend.
type DataSource interface {
	FetchMetrics(ctx context.Context, building string, start, end time.Time) (*domain.MetricsSummary, error)
	FetchConsumption(ctx context.Context, building string, start, end time.Time, view domain.ViewType) ([]domain.ConsumptionPoint, error)
}

// FetchState tracks one call family: loading flag, last error, and the
// latest data. Metrics and consumption each get their own so one failing
// does not block the other's display.
type FetchState struct {
	Loading bool
	Err     string
}

// Snapshot is an immutable copy of the view for rendering and for pushing
// over the live-update socket.
type Snapshot struct {
	Building  domain.Building
	Buildings []domain.Building
	From, To  time.Time
	ViewType  domain.ViewType

	Metrics      *domain.MetricsSummary
	MetricsState FetchState

	Consumption      []domain.ConsumptionPoint
	ConsumptionState FetchState

	Prediction *float64
	Flash      string
}

// View holds the dashboard's selection and fetch state. Each selection
// change bumps a per-family sequence token; a fetch completing under a
// stale token is discarded, so a slow superseded response can never
// overwrite a newer one.
type View struct {
	mu     sync.Mutex
	source DataSource

	building domain.Building
	from, to time.Time
	viewType domain.ViewType

	metricsSeq   uint64
	metricsState FetchState
	metrics      *domain.MetricsSummary

	consumptionSeq   uint64
	consumptionState FetchState
	consumption      []domain.ConsumptionPoint

	prediction *float64
	flash      string

	onChange func(Snapshot)
}

// NewView starts on the first catalog building with the last seven days
// selected, hourly granularity, and both fetch families in flight.
func NewView(source DataSource) *View {
	now := time.Now()
	v := &View{
		source:   source,
		building: domain.Catalog[0],
		from:     now.AddDate(0, 0, -7),
		to:       now,
		viewType: domain.ViewHourly,
	}
	v.mu.Lock()
	v.startMetricsLocked()
	v.startConsumptionLocked()
	v.mu.Unlock()
	return v
}

// OnChange registers a callback invoked with a fresh snapshot after every
// completed fetch. Used by the server to push live updates.
func (v *View) OnChange(fn func(Snapshot)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

func (v *View) SetBuilding(id string) bool {
	b, ok := domain.FindBuilding(id)
	if !ok {
		return false
	}
	v.mu.Lock()
	v.building = b
	v.startMetricsLocked()
	v.startConsumptionLocked()
	v.mu.Unlock()
	return true
}

func (v *View) SetDateRange(from, to time.Time) {
	v.mu.Lock()
	v.from, v.to = from, to
	v.startMetricsLocked()
	v.startConsumptionLocked()
	v.mu.Unlock()
}

// SetViewType re-triggers only the consumption fetch; the displayed
// metrics summary is untouched.
func (v *View) SetViewType(vt domain.ViewType) {
	v.mu.Lock()
	if vt != v.viewType {
		v.viewType = vt
		v.startConsumptionLocked()
	}
	v.mu.Unlock()
}

// Refresh re-runs both fetch families for the current selection.
func (v *View) Refresh() {
	v.mu.Lock()
	v.startMetricsLocked()
	v.startConsumptionLocked()
	v.mu.Unlock()
}

func (v *View) SetPrediction(value float64) {
	v.mu.Lock()
	v.prediction = &value
	v.flash = ""
	v.mu.Unlock()
}

// SetFlash records a transient notification. A failed prediction leaves the
// previous prediction in place and only sets this.
func (v *View) SetFlash(msg string) {
	v.mu.Lock()
	v.flash = msg
	v.mu.Unlock()
}

// ClearFlash returns the pending notification and resets it.
func (v *View) ClearFlash() string {
	v.mu.Lock()
	msg := v.flash
	v.flash = ""
	v.mu.Unlock()
	return msg
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	return Snapshot{
		Building:         v.building,
		Buildings:        domain.Catalog,
		From:             v.from,
		To:               v.to,
		ViewType:         v.viewType,
		Metrics:          v.metrics,
		MetricsState:     v.metricsState,
		Consumption:      v.consumption,
		ConsumptionState: v.consumptionState,
		Prediction:       v.prediction,
		Flash:            v.flash,
	}
}

func (v *View) startMetricsLocked() {
	v.metricsSeq++
	seq := v.metricsSeq
	v.metricsState = FetchState{Loading: true}
	go v.fetchMetrics(seq, v.building.Name, v.from, v.to)
}

func (v *View) startConsumptionLocked() {
	v.consumptionSeq++
	seq := v.consumptionSeq
	v.consumptionState = FetchState{Loading: true}
	go v.fetchConsumption(seq, v.building.Name, v.from, v.to, v.viewType)
}

func (v *View) fetchMetrics(seq uint64, building string, from, to time.Time) {
	m, err := v.source.FetchMetrics(context.Background(), building, from, to)

	v.mu.Lock()
	if seq != v.metricsSeq {
		// A newer request for this family was issued; drop the result.
		v.mu.Unlock()
		return
	}
	if err != nil {
		v.metricsState = FetchState{Err: err.Error()}
	} else {
		v.metricsState = FetchState{}
		v.metrics = m
	}
	v.notifyLocked()
}

func (v *View) fetchConsumption(seq uint64, building string, from, to time.Time, vt domain.ViewType) {
	points, err := v.source.FetchConsumption(context.Background(), building, from, to, vt)

	v.mu.Lock()
	if seq != v.consumptionSeq {
		v.mu.Unlock()
		return
	}
	if err != nil {
		v.consumptionState = FetchState{Err: err.Error()}
	} else {
		v.consumptionState = FetchState{}
		v.consumption = points
	}
	v.notifyLocked()
}

// notifyLocked snapshots under the lock, then invokes the callback outside
// it. Releases v.mu.
func (v *View) notifyLocked() {
	fn := v.onChange
	snap := v.snapshotLocked()
	v.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
