package attendance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"event-attendance/internal/domain/events"
	"event-attendance/internal/domain/persons"
	"event-attendance/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, eventsSvc *events.Service, personsSvc *persons.Service) {
	// Path autenticado
	r.Post("/events/{eventID}/attend", attendHandler(svc))
	r.Get("/events/{eventID}/attendees", listAttendeesHandler(svc))
	r.Get("/events/{eventID}/attendance", checkAttendanceHandler(svc))
	r.Get("/me/events", myAttendedEventsHandler(svc))

	// Path externo (bot): resuelve la identidad y registra en una llamada.
	r.Post("/external/events/{eventID}/attend", externalAttendHandler(svc, personsSvc))
	r.Post("/external/attend-current", externalAttendCurrentHandler(svc, eventsSvc, personsSvc))
	r.Get("/external/persons/{externalID}/events", externalAttendedEventsHandler(svc, personsSvc))
}

type attendResponse struct {
	Message         string          `json:"message"`
	AlreadyRecorded bool            `json:"already_recorded"`
	AttendedAt      time.Time       `json:"attended_at"`
	Event           attendEvent     `json:"event"`
	Person          attendPerson    `json:"person"`
	Status          *statusSnapshot `json:"status,omitempty"`
}

type attendEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type attendPerson struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ExternalID *string `json:"external_id,omitempty"`
}

// statusSnapshot acompaña todo rechazo por fase: con esto el caller arma el
// mensaje "empieza en N minutos" sin volver a consultar.
type statusSnapshot struct {
	Status            events.Phase `json:"status" enums:"upcoming,active,ended"`
	CanAttend         bool         `json:"can_attend"`
	SecondsUntilStart *int64       `json:"seconds_until_start,omitempty"`
	SecondsUntilEnd   *int64       `json:"seconds_until_end,omitempty"`
}

type gateRejection struct {
	Message string         `json:"message"`
	Status  statusSnapshot `json:"status"`
}

type externalAttendRequest struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

type attendedEventRow struct {
	Event      attendEvent `json:"event"`
	AttendedAt time.Time   `json:"attended_at"`
}

type attendeeRow struct {
	Person     attendPerson `json:"person"`
	AttendedAt time.Time    `json:"attended_at"`
}

// attendHandler godoc
// @Summary Registrar asistencia (path autenticado)
// @Description Registra asistencia si la ventana del evento está abierta.
// @Description Reintentos del mismo par (persona, evento) devuelven el registro
// @Description original (idempotente), nunca un duplicado ni un error.
// @Tags attendance
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param eventID path string true "ID del evento"
// @Success 200 {object} attendResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "person or event not found"
// @Failure 409 {object} gateRejection "fuera de ventana (upcoming/ended)"
// @Router /events/{eventID}/attend [post]
func attendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.Record(r.Context(), claims.PersonID, chi.URLParam(r, "eventID"), requestNow(r))
		if err != nil {
			writeAttendError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAttendResponse(res))
	}
}

func listAttendeesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attendees, err := svc.ListAttendees(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			writeAttendError(w, err)
			return
		}

		out := make([]attendeeRow, 0, len(attendees))
		for _, a := range attendees {
			out = append(out, attendeeRow{
				Person:     toAttendPerson(a.Person),
				AttendedAt: a.AttendedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func checkAttendanceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		attended, err := svc.HasAttended(r.Context(), claims.PersonID, chi.URLParam(r, "eventID"))
		if err != nil {
			writeAttendError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"attended":  attended,
			"person_id": claims.PersonID,
			"event_id":  chi.URLParam(r, "eventID"),
		})
	}
}

func myAttendedEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeAttendedEvents(w, r, svc, claims.PersonID)
	}
}

// externalAttendHandler godoc
// @Summary Registrar asistencia (path externo)
// @Description Resuelve el identificador externo (auto-registrando si hace
// @Description falta) y registra asistencia al evento indicado.
// @Tags external
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param payload body externalAttendRequest true "Identidad externa"
// @Success 200 {object} attendResponse
// @Failure 404 {string} string "event not found"
// @Failure 409 {object} gateRejection "fuera de ventana"
// @Router /external/events/{eventID}/attend [post]
func externalAttendHandler(svc *Service, personsSvc *persons.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := resolveExternalCaller(w, r, personsSvc)
		if !ok {
			return
		}

		res, err := svc.Record(r.Context(), p.ID, chi.URLParam(r, "eventID"), requestNow(r))
		if err != nil {
			writeAttendError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAttendResponse(res))
	}
}

// externalAttendCurrentHandler godoc
// @Summary Asistir al único evento en curso (path externo)
// @Description Shortcut del bot: si hay exactamente un evento activo ahora,
// @Description registra asistencia ahí. Cero o más de uno => 409.
// @Tags external
// @Accept json
// @Produce json
// @Param payload body externalAttendRequest true "Identidad externa"
// @Success 200 {object} attendResponse
// @Failure 409 {string} string "no event / more than one event active"
// @Router /external/attend-current [post]
func externalAttendCurrentHandler(svc *Service, eventsSvc *events.Service, personsSvc *persons.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := resolveExternalCaller(w, r, personsSvc)
		if !ok {
			return
		}

		now := requestNow(r)
		e, err := eventsSvc.Current(r.Context(), now)
		if errors.Is(err, events.ErrNoCurrentEvent) {
			http.Error(w, "no event is currently active", http.StatusConflict)
			return
		}
		if errors.Is(err, events.ErrAmbiguousCurrentEvent) {
			http.Error(w, "more than one event is currently active", http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		res, err := svc.Record(r.Context(), p.ID, e.ID, now)
		if err != nil {
			writeAttendError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAttendResponse(res))
	}
}

func externalAttendedEventsHandler(svc *Service, personsSvc *persons.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := personsSvc.GetByExternalID(r.Context(), chi.URLParam(r, "externalID"))
		if err != nil {
			http.Error(w, "person not found", http.StatusNotFound)
			return
		}

		writeAttendedEvents(w, r, svc, p.ID)
	}
}

func writeAttendedEvents(w http.ResponseWriter, r *http.Request, svc *Service, personID string) {
	rows, err := svc.ListAttendedEvents(r.Context(), personID)
	if err != nil {
		writeAttendError(w, err)
		return
	}

	out := make([]attendedEventRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, attendedEventRow{
			Event:      toAttendEvent(row.Event),
			AttendedAt: row.AttendedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attended_events": out,
		"total_attended":  len(out),
	})
}

// resolveExternalCaller lee la identidad externa del body y la resuelve,
// auto-registrando en el primer contacto. Escribe la respuesta de error si falla.
func resolveExternalCaller(w http.ResponseWriter, r *http.Request, personsSvc *persons.Service) (persons.Person, bool) {
	var req externalAttendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return persons.Person{}, false
	}

	p, _, _, err := personsSvc.ResolveExternal(r.Context(), persons.ResolveExternalInput{
		ExternalID:  req.ExternalID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, persons.ErrInvalidInput) {
			http.Error(w, "external_id required", http.StatusBadRequest)
		} else {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return persons.Person{}, false
	}
	return p, true
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

func toAttendResponse(res Result) attendResponse {
	msg := fmt.Sprintf("attendance recorded for %q", res.Event.Title)
	if res.AlreadyRecorded {
		msg = fmt.Sprintf("already recorded for %q", res.Event.Title)
	}

	return attendResponse{
		Message:         msg,
		AlreadyRecorded: res.AlreadyRecorded,
		AttendedAt:      res.Attendance.AttendedAt,
		Event:           toAttendEvent(res.Event),
		Person:          toAttendPerson(res.Person),
		Status:          toStatusSnapshot(res.Status),
	}
}

func toAttendEvent(e events.Event) attendEvent {
	return attendEvent{
		ID:        e.ID,
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}

func toAttendPerson(p persons.Person) attendPerson {
	return attendPerson{
		ID:         p.ID,
		Name:       p.Name,
		ExternalID: p.ExternalID,
	}
}

func toStatusSnapshot(st events.Status) *statusSnapshot {
	return &statusSnapshot{
		Status:            st.Phase,
		CanAttend:         st.CanAttend,
		SecondsUntilStart: st.SecondsUntilStart,
		SecondsUntilEnd:   st.SecondsUntilEnd,
	}
}

func writeAttendError(w http.ResponseWriter, err error) {
	var gate *GateError
	if errors.As(err, &gate) {
		msg := "event has already ended"
		if errors.Is(err, ErrTooEarly) && gate.Status.SecondsUntilStart != nil {
			msg = fmt.Sprintf("event hasn't started yet, starts in %d minutes", *gate.Status.SecondsUntilStart/60)
		}
		writeJSON(w, http.StatusConflict, gateRejection{
			Message: msg,
			Status:  *toStatusSnapshot(gate.Status),
		})
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "person or event not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
