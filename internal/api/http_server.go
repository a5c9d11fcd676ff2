package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/config"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/domain"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/metrics"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/search"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/service"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/workflow"
)

// HTTPServer is the thin JSON facade the UI layer drives the booking
// workflow through. All semantics live in the service and workflow
// packages; handlers only decode, dispatch and encode.
type HTTPServer struct {
	cfg    *config.APIConfig
	svc    *service.SessionService
	geo    domain.Geocoder
	logger *zerolog.Logger
	server *http.Server
	auth   *HTTPAuth
}

func NewHTTPServer(cfg *config.APIConfig, svc *service.SessionService, geo domain.Geocoder, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, svc: svc, geo: geo, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/sessions", srv.handleSessions)
	mux.HandleFunc("/api/v1/sessions/", srv.handleSession)
	mux.HandleFunc("/api/v1/geocode", srv.handleGeocode)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap, err := s.svc.StartSession(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/sessions/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(rest, "/", 3)
	id := strings.TrimSpace(parts[0])
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	action := ""
	if len(parts) > 1 {
		action = strings.Join(parts[1:], "/")
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.snapshot(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		s.discard(w, r, id)
	case action == "patch" && r.Method == http.MethodPost:
		s.patch(w, r, id)
	case action == "select" && r.Method == http.MethodPost:
		s.selectOption(w, r, id)
	case action == "clear" && r.Method == http.MethodPost:
		s.clear(w, r, id)
	case action == "advance" && r.Method == http.MethodPost:
		s.advance(w, r, id)
	case action == "retreat" && r.Method == http.MethodPost:
		s.retreat(w, r, id)
	case action == "goto" && r.Method == http.MethodPost:
		s.goTo(w, r, id)
	case action == "search/flights" && r.Method == http.MethodPost:
		s.searchFlights(w, r, id)
	case action == "search/hotels" && r.Method == http.MethodPost:
		s.searchHotels(w, r, id)
	case action == "results/flights" && r.Method == http.MethodGet:
		s.flightResults(w, r, id)
	case action == "results/hotels" && r.Method == http.MethodGet:
		s.hotelResults(w, r, id)
	case action == "submit" && r.Method == http.MethodPost:
		s.submit(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) snapshot(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.svc.Snapshot(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) discard(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.svc.Discard(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}

func (s *HTTPServer) patch(w http.ResponseWriter, r *http.Request, id string) {
	var p models.FormPatch
	if !decodeBody(w, r, &p) {
		return
	}
	snap, err := s.svc.Patch(r.Context(), id, p)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type selectRequest struct {
	Kind   models.SelectionKind `json:"kind"`
	Flight *models.FlightOption `json:"flight,omitempty"`
	Hotel  *models.HotelOption  `json:"hotel,omitempty"`
	Room   *models.RoomType     `json:"room,omitempty"`
}

func (s *HTTPServer) selectOption(w http.ResponseWriter, r *http.Request, id string) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var snap models.SessionSnapshot
	var err error
	switch req.Kind {
	case models.SelectOutboundFlight:
		if req.Flight == nil {
			writeError(w, http.StatusBadRequest, "flight option is required")
			return
		}
		snap, err = s.svc.SelectOutbound(r.Context(), id, *req.Flight)
	case models.SelectReturnFlight:
		if req.Flight == nil {
			writeError(w, http.StatusBadRequest, "flight option is required")
			return
		}
		snap, err = s.svc.SelectReturn(r.Context(), id, *req.Flight)
	case models.SelectHotel:
		if req.Hotel == nil {
			writeError(w, http.StatusBadRequest, "hotel option is required")
			return
		}
		snap, err = s.svc.SelectHotel(r.Context(), id, *req.Hotel)
	case models.SelectRoomType:
		if req.Room == nil {
			writeError(w, http.StatusBadRequest, "room type is required")
			return
		}
		snap, err = s.svc.SelectRoom(r.Context(), id, *req.Room)
	default:
		writeError(w, http.StatusBadRequest, "unknown selection kind")
		return
	}

	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) clear(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Kind models.SelectionKind `json:"kind"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := s.svc.Clear(r.Context(), id, req.Kind)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) advance(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.svc.Advance(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) retreat(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.svc.Retreat(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) goTo(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Step models.Step `json:"step"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := s.svc.GoTo(r.Context(), id, req.Step)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) searchFlights(w http.ResponseWriter, r *http.Request, id string) {
	var params models.FlightSearchParams
	if !decodeBody(w, r, &params) {
		return
	}
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.SearchFlights(r.Context(), id, params); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "search scheduled"})
}

func (s *HTTPServer) searchHotels(w http.ResponseWriter, r *http.Request, id string) {
	var params models.HotelSearchParams
	if !decodeBody(w, r, &params) {
		return
	}
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.SearchHotels(r.Context(), id, params); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "search scheduled"})
}

func (s *HTTPServer) flightResults(w http.ResponseWriter, r *http.Request, id string) {
	result, err := s.svc.FlightResults(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *HTTPServer) hotelResults(w http.ResponseWriter, r *http.Request, id string) {
	result, err := s.svc.HotelResults(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *HTTPServer) submit(w http.ResponseWriter, r *http.Request, id string) {
	bookingID, snap, err := s.svc.Submit(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"bookingId": bookingID,
		"total":     snap.Total,
	})
}

func (s *HTTPServer) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	points, err := s.geo.Lookup(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadGateway, "geocoding failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": points})
}

// writeServiceError maps typed workflow errors onto status codes.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
			"first":  verr.First(),
		})
		return
	}

	var serr *workflow.InvalidSelectionError
	if errors.As(err, &serr) {
		writeError(w, http.StatusConflict, serr.Error())
		return
	}

	var suberr *service.SubmissionError
	if errors.As(err, &suberr) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":     suberr.Error(),
			"retryable": true,
		})
		return
	}

	if se, ok := search.AsSearchError(err); ok && se.Kind == search.KindValidation {
		writeError(w, http.StatusBadRequest, se.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrNotOnConfirmation):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.IncHTTP(r.URL.Path)
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
