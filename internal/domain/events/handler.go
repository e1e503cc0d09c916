package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"event-attendance/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Registro plano: /events/{eventID}/attend lo registra el módulo de
	// attendance sobre el mismo router, así que acá no se montan subrouters.
	r.Post("/events", createEventHandler(svc))
	r.Get("/events", listEventsHandler(svc))
	r.Get("/events/upcoming", listUpcomingHandler(svc))

	r.Get("/events/{eventID}", getEventHandler(svc))
	r.Patch("/events/{eventID}", updateEventHandler(svc))
	r.Get("/events/{eventID}/status", statusHandler(svc))

	// Eventos asociados a un canal de la plataforma externa (para el bot).
	r.Get("/external/events/channel/{channelTag}", listChannelEventsHandler(svc))
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"` // RFC3339
	EndTime     string `json:"end_time"`   // RFC3339
	ChannelTag  string `json:"channel_tag"`
}

type updateEventRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"start_time"` // RFC3339
	EndTime     *string `json:"end_time"`   // RFC3339
	ChannelTag  *string `json:"channel_tag"`
	Active      *bool   `json:"active"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	ChannelTag  string    `json:"channel_tag,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// statusResponse es el snapshot derivado; nunca sale de un campo almacenado.
type statusResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Phase     `json:"status" enums:"upcoming,active,ended"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CanAttend bool      `json:"can_attend"`

	SecondsUntilStart *int64 `json:"seconds_until_start,omitempty"`
	SecondsUntilEnd   *int64 `json:"seconds_until_end,omitempty"`
}

// createEventHandler godoc
// @Summary Crear evento
// @Description Crea un evento con ventana de asistencia. end_time <= start_time => 400.
// @Tags events
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createEventRequest true "Datos del evento; instantes en RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / ventana inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			http.Error(w, "start_time must be RFC3339", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			http.Error(w, "end_time must be RFC3339", http.StatusBadRequest)
			return
		}

		e, err := svc.Create(r.Context(), CreateInput{
			Title:       req.Title,
			Description: req.Description,
			StartTime:   start,
			EndTime:     end,
			ChannelTag:  req.ChannelTag,
		})
		if err != nil {
			writeEventError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// listEventsHandler godoc
// @Summary Listar eventos
// @Description active_only filtra por flag; attendable=true filtra por fase activa
// @Description aplicando el status derivado a cada candidato al momento de la consulta.
// @Tags events
// @Produce json
// @Param active_only query bool false "Solo eventos activos (default true)"
// @Param attendable query bool false "Solo eventos en fase activa ahora"
// @Param limit query int false "Máximo de eventos a devolver"
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Router /events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var (
			items []Event
			err   error
		)
		if boolQuery(r, "attendable", false) {
			items, err = svc.ListAttendable(r.Context(), requestNow(r))
		} else {
			items, err = svc.List(r.Context(), boolQuery(r, "active_only", true), intQuery(r, "limit", 100))
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

func listUpcomingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListUpcoming(r.Context(), requestNow(r), intQuery(r, "limit", 10))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// updateEventHandler godoc
// @Summary Actualizar evento (PATCH parcial)
// @Description Valida la ventana resultante antes de escribir: si end <= start
// @Description se rechaza todo el update y el evento queda intacto.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param payload body updateEventRequest true "Campos a tocar"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "ventana inválida"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [patch]
func updateEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Title:       req.Title,
			Description: req.Description,
			ChannelTag:  req.ChannelTag,
			Active:      req.Active,
		}
		if req.StartTime != nil {
			t, err := time.Parse(time.RFC3339, *req.StartTime)
			if err != nil {
				http.Error(w, "start_time must be RFC3339", http.StatusBadRequest)
				return
			}
			in.StartTime = &t
		}
		if req.EndTime != nil {
			t, err := time.Parse(time.RFC3339, *req.EndTime)
			if err != nil {
				http.Error(w, "end_time must be RFC3339", http.StatusBadRequest)
				return
			}
			in.EndTime = &t
		}

		e, err := svc.Update(r.Context(), chi.URLParam(r, "eventID"), in)
		if err != nil {
			writeEventError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// statusHandler godoc
// @Summary Status derivado del evento
// @Description Clasifica la ventana contra "now" (query param at en RFC3339,
// @Description default el instante del request). Bordes inclusivos.
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param at query string false "Instante a evaluar (RFC3339)"
// @Success 200 {object} statusResponse
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/status [get]
func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, st, err := svc.StatusOf(r.Context(), chi.URLParam(r, "eventID"), requestNow(r))
		if err != nil {
			writeEventError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStatusResponse(e, st))
	}
}

func listChannelEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByChannel(r.Context(), chi.URLParam(r, "channelTag"))
		if err != nil {
			writeEventError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

// requestNow define "now" en el boundary: o viene explícito (?at=RFC3339)
// o es el instante de ejecución del request. El core nunca consulta el reloj.
func requestNow(r *http.Request) time.Time {
	if v := strings.TrimSpace(r.URL.Query().Get("at")); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func toEventResponse(e Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		ChannelTag:  e.ChannelTag,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEventResponses(items []Event) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEventResponse(e))
	}
	return out
}

func toStatusResponse(e Event, st Status) statusResponse {
	return statusResponse{
		ID:                e.ID,
		Title:             e.Title,
		Status:            st.Phase,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		CanAttend:         st.CanAttend,
		SecondsUntilStart: st.SecondsUntilStart,
		SecondsUntilEnd:   st.SecondsUntilEnd,
	}
}

func writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidWindow):
		http.Error(w, "end time must be after start time", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func boolQuery(r *http.Request, key string, fallback bool) bool {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func intQuery(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
