package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

const sessionCookie = "session"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server renders the dashboard and login views and pushes live updates to
// connected browsers over a websocket.
type Server struct {
	mux    *http.ServeMux
	tmpl   *template.Template
	client *Client
	view   *View

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
	broadcast chan Snapshot
}

func New(client *Client) *Server {
	funcMap := template.FuncMap{
		"toJSON":           toJSON,
		"formatTotal":      FormatTotalConsumption,
		"formatPeakDemand": FormatPeakDemand,
		"formatPeakHour":   FormatPeakHour,
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}
	tmpl := template.Must(template.New("base").Funcs(funcMap).ParseGlob("templates/*.html"))

	s := &Server{
		mux:       http.NewServeMux(),
		tmpl:      tmpl,
		client:    client,
		view:      NewView(client),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Snapshot, 256),
	}
	s.view.OnChange(func(snap Snapshot) {
		select {
		case s.broadcast <- snap:
		default:
		}
	})

	s.routes()
	go s.handleBroadcast()
	go s.periodicRefresh()

	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/logout", s.handleLogout)
	s.mux.HandleFunc("/select", s.requireSession(s.handleSelect))
	s.mux.HandleFunc("/predict", s.requireSession(s.handlePredict))
	s.mux.HandleFunc("/ws", s.requireSession(s.handleWebSocket))
	s.mux.HandleFunc("/", s.requireSession(s.handleDashboard))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// requireSession restores the session token from the cookie and verifies
// it against the API's protected profile route. Unauthenticated requests
// are redirected to the login view.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if _, err := s.client.Profile(r.Context(), cookie.Value); err != nil {
			clearSession(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, "login.html", map[string]any{
			"Title": "Admin Portal",
		})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	res, err := s.client.Login(r.Context(), email, password)
	if err != nil {
		msg := "Login failed. Please try again."
		if errors.Is(err, ErrInvalidCredentials) {
			msg = "Invalid email or password. Please try again."
		}
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "login.html", map[string]any{
			"Title": "Admin Portal",
			"Error": msg,
			"Email": email,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.view.Snapshot()
	flash := s.view.ClearFlash()

	prediction := ""
	if snap.Prediction != nil {
		prediction = fmt.Sprintf("%.2f kWh", *snap.Prediction)
	}

	s.render(w, "dashboard.html", map[string]any{
		"Title":           "Energy Consumption Dashboard",
		"Snapshot":        snap,
		"Flash":           flash,
		"Prediction":      prediction,
		"ConsumptionJSON": toJSON(snap.Consumption),
	})
}

// handleSelect applies a selection change. Building and date range changes
// re-trigger both fetch families; a granularity change only consumption.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := r.FormValue("building"); id != "" {
		if !s.view.SetBuilding(id) {
			http.Error(w, "unknown building", http.StatusBadRequest)
			return
		}
	}
	fromStr, toStr := r.FormValue("from"), r.FormValue("to")
	if fromStr != "" && toStr != "" {
		from, err1 := time.Parse(dateFormat, fromStr)
		to, err2 := time.Parse(dateFormat, toStr)
		if err1 != nil || err2 != nil {
			http.Error(w, "invalid date range", http.StatusBadRequest)
			return
		}
		s.view.SetDateRange(from, to)
	}
	if vt := r.FormValue("view_type"); vt != "" {
		view, ok := domain.ParseViewType(vt)
		if !ok {
			http.Error(w, "invalid view type", http.StatusBadRequest)
			return
		}
		s.view.SetViewType(view)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	in, err := predictionInputFromForm(r)
	if err != nil {
		s.view.SetFlash(err.Error())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	value, err := s.client.Predict(r.Context(), in)
	if err != nil {
		// Keep the previous prediction; only surface a notification.
		log.Error().Err(err).Msg("prediction failed")
		s.view.SetFlash("Failed to generate prediction. Please try again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.view.SetPrediction(value)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func predictionInputFromForm(r *http.Request) (PredictionInput, error) {
	var in PredictionInput
	var err error

	in.HoursAhead, err = strconv.Atoi(r.FormValue("hours_ahead"))
	if err != nil {
		return in, errors.New("hours ahead must be a number")
	}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"outdoor_temp", &in.OutdoorTemp},
		{"humidity", &in.Humidity},
		{"cloud_cover", &in.CloudCover},
		{"occupancy", &in.Occupancy},
		{"special_equipment", &in.SpecialEquipment},
		{"lighting", &in.Lighting},
		{"hvac", &in.HVAC},
	}
	for _, f := range fields {
		*f.dst, err = strconv.ParseFloat(r.FormValue(f.name), 64)
		if err != nil {
			return in, errors.New("all feature values must be numbers")
		}
	}
	in.Season = r.FormValue("season")

	return in, in.Validate()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	conn.WriteJSON(map[string]any{"type": "init", "data": s.view.Snapshot()})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) handleBroadcast() {
	for snap := range s.broadcast {
		msg := map[string]any{"type": "update", "data": snap}
		s.clientsMu.Lock()
		for conn := range s.clients {
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				delete(s.clients, conn)
			}
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) periodicRefresh() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		s.view.Refresh()
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func toJSON(v any) template.JS {
	b, _ := json.Marshal(v)
	return template.JS(b)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
