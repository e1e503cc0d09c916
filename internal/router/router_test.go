package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-attendance/internal/router"
)

func TestHTTP_EndToEnd_AttendanceWindow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// 1) Ana se registra por el path web
	anaID := registerPerson(t, ts.URL, map[string]any{
		"email":    "ana@example.com",
		"name":     "Ana",
		"password": "s3cret",
	})

	// 2) Se crea un evento con ventana 19:00–21:00 UTC
	eventID := createEvent(t, ts.URL, anaID, map[string]any{
		"title":      "Demo night",
		"start_time": "2024-06-20T19:00:00Z",
		"end_time":   "2024-06-20T21:00:00Z",
	})

	// 3) Antes de empezar: status upcoming con countdown
	{
		st, body := doReq(t, ts.URL, "GET", "/events/"+eventID+"/status?at=2024-06-20T18:30:00Z", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 status, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status            string `json:"status"`
			CanAttend         bool   `json:"can_attend"`
			SecondsUntilStart *int64 `json:"seconds_until_start"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "upcoming" || resp.CanAttend {
			t.Fatalf("expected upcoming not attendable, got %s", string(body))
		}
		if resp.SecondsUntilStart == nil || *resp.SecondsUntilStart != 1800 {
			t.Fatalf("expected 1800s until start, got %s", string(body))
		}
	}

	// 4) Intento temprano => 409 con snapshot, sin registro
	{
		st, body := doReq(t, ts.URL, "POST", "/events/"+eventID+"/attend?at=2024-06-20T18:30:00Z", anaID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 too early, got %d body=%s", st, string(body))
		}
		var resp struct {
			Message string `json:"message"`
			Status  struct {
				Status            string `json:"status"`
				SecondsUntilStart *int64 `json:"seconds_until_start"`
			} `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status.Status != "upcoming" {
			t.Fatalf("expected upcoming snapshot in rejection, got %s", string(body))
		}
		if resp.Message == "" {
			t.Fatalf("expected human message in rejection, got %s", string(body))
		}
	}

	// 5) Dentro de ventana => 200
	attendedAt := attend(t, ts.URL, anaID, eventID, "2024-06-20T19:30:00Z", false)

	// 6) Reintento => 200 idempotente, conserva el timestamp original
	attendedAt2 := attend(t, ts.URL, anaID, eventID, "2024-06-20T20:00:00Z", true)
	if !attendedAt2.Equal(attendedAt) {
		t.Fatalf("repeat attend must keep original timestamp: %s vs %s", attendedAt2, attendedAt)
	}

	// 7) Lista de asistentes con exactamente una fila
	{
		st, body := doReq(t, ts.URL, "GET", "/events/"+eventID+"/attendees", anaID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 attendees, got %d body=%s", st, string(body))
		}
		var rows []struct {
			Person struct {
				ID string `json:"id"`
			} `json:"person"`
		}
		_ = json.Unmarshal(body, &rows)
		if len(rows) != 1 || rows[0].Person.ID != anaID {
			t.Fatalf("expected one attendee (ana), got %s", string(body))
		}
	}

	// 8) Después del fin => 409 too late (borde exclusivo pasado end)
	{
		benID := registerPerson(t, ts.URL, map[string]any{
			"email":    "ben@example.com",
			"name":     "Ben",
			"password": "s3cret",
		})
		st, body := doReq(t, ts.URL, "POST", "/events/"+eventID+"/attend?at=2024-06-20T21:00:01Z", benID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 too late, got %d body=%s", st, string(body))
		}
	}

	// 9) Historial propio
	{
		st, body := doReq(t, ts.URL, "GET", "/me/events", anaID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 my events, got %d body=%s", st, string(body))
		}
		var resp struct {
			TotalAttended int `json:"total_attended"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.TotalAttended != 1 {
			t.Fatalf("expected 1 attended event, got %s", string(body))
		}
	}
}

func TestHTTP_ExternalBotFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	adminID := registerPerson(t, ts.URL, map[string]any{
		"email":    "admin@example.com",
		"name":     "Admin",
		"password": "s3cret",
	})
	eventID := createEvent(t, ts.URL, adminID, map[string]any{
		"title":       "Demo night",
		"start_time":  "2024-06-20T19:00:00Z",
		"end_time":    "2024-06-20T21:00:00Z",
		"channel_tag": "general",
	})

	// 1) Primer contacto: auto-registro transparente
	{
		st, body := doReq(t, ts.URL, "POST", "/external/resolve", "", map[string]any{
			"external_id":  "ext-42",
			"display_name": "Ana",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 resolve, got %d body=%s", st, string(body))
		}
		var resp struct {
			IsNew  bool `json:"is_new"`
			Person struct {
				ID     string `json:"id"`
				Linked bool   `json:"linked"`
				Email  string `json:"email"`
			} `json:"person"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.IsNew {
			t.Fatalf("first resolve must report is_new, got %s", string(body))
		}
		if resp.Person.Linked || resp.Person.Email != "" {
			t.Fatalf("auto-registered person must not expose a credential, got %s", string(body))
		}

		// repetir devuelve la misma persona sin crear
		st, body2 := doReq(t, ts.URL, "POST", "/external/resolve", "", map[string]any{
			"external_id": "ext-42",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 resolve #2, got %d body=%s", st, string(body2))
		}
		var resp2 struct {
			IsNew  bool `json:"is_new"`
			Person struct {
				ID string `json:"id"`
			} `json:"person"`
		}
		_ = json.Unmarshal(body2, &resp2)
		if resp2.IsNew || resp2.Person.ID != resp.Person.ID {
			t.Fatalf("repeat resolve must return the same person, got %s", string(body2))
		}
	}

	// 2) El placeholder no puede loguearse
	{
		st, _ := doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
			"email":    "ext-42@external.invalid",
			"password": "",
		})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 for placeholder credential, got %d", st)
		}
	}

	// 3) Asistencia en una sola llamada, identidad resuelta en el body
	{
		st, body := doReq(t, ts.URL, "POST", "/external/events/"+eventID+"/attend?at=2024-06-20T19:30:00Z", "", map[string]any{
			"external_id":  "ext-42",
			"display_name": "Ana",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 external attend, got %d body=%s", st, string(body))
		}
	}

	// 4) Shortcut "attend-current": único evento activo => registra ahí (idempotente)
	{
		st, body := doReq(t, ts.URL, "POST", "/external/attend-current?at=2024-06-20T19:45:00Z", "", map[string]any{
			"external_id": "ext-42",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 attend-current, got %d body=%s", st, string(body))
		}
		var resp struct {
			AlreadyRecorded bool `json:"already_recorded"`
			Event           struct {
				ID string `json:"id"`
			} `json:"event"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.AlreadyRecorded || resp.Event.ID != eventID {
			t.Fatalf("expected idempotent hit on the ongoing event, got %s", string(body))
		}
	}

	// 5) Con dos eventos en curso el shortcut es ambiguo => 409
	{
		createEvent(t, ts.URL, adminID, map[string]any{
			"title":      "Overlapping",
			"start_time": "2024-06-20T19:30:00Z",
			"end_time":   "2024-06-20T22:00:00Z",
		})
		st, _ := doReq(t, ts.URL, "POST", "/external/attend-current?at=2024-06-20T19:45:00Z", "", map[string]any{
			"external_id": "ext-42",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 for ambiguous current event, got %d", st)
		}
	}

	// 6) Historial por identidad externa
	{
		st, body := doReq(t, ts.URL, "GET", "/external/persons/ext-42/events", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 external history, got %d body=%s", st, string(body))
		}
		var resp struct {
			TotalAttended int `json:"total_attended"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.TotalAttended != 1 {
			t.Fatalf("expected 1 attended event, got %s", string(body))
		}
	}

	// 7) Eventos del canal
	{
		st, body := doReq(t, ts.URL, "GET", "/external/events/channel/general", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 channel events, got %d body=%s", st, string(body))
		}
		var rows []struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &rows)
		if len(rows) != 1 || rows[0].ID != eventID {
			t.Fatalf("expected the tagged event only, got %s", string(body))
		}
	}
}

func TestHTTP_CreateEvent_RejectsInvalidWindow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	adminID := registerPerson(t, ts.URL, map[string]any{
		"email":    "admin@example.com",
		"name":     "Admin",
		"password": "s3cret",
	})

	st, _ := doReq(t, ts.URL, "POST", "/events", adminID, map[string]any{
		"title":      "Backwards",
		"start_time": "2024-06-20T21:00:00Z",
		"end_time":   "2024-06-20T19:00:00Z",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted window, got %d", st)
	}
}

func TestHTTP_Login_IssuesToken(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	registerPerson(t, ts.URL, map[string]any{
		"email":    "ana@example.com",
		"name":     "Ana",
		"password": "s3cret",
	})

	st, body := doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "s3cret",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("expected bearer token, got %s", string(body))
	}

	st, _ = doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", st)
	}
}

func registerPerson(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/auth/register", "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("register: missing id body=%s", string(body))
	}
	return resp.ID
}

func createEvent(t *testing.T, baseURL, debugPersonID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/events", debugPersonID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create event: missing id body=%s", string(body))
	}
	return resp.ID
}

func attend(t *testing.T, baseURL, personID, eventID, at string, wantRepeat bool) time.Time {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/events/"+eventID+"/attend?at="+at, personID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 attend, got %d body=%s", st, string(body))
	}

	var resp struct {
		AlreadyRecorded bool      `json:"already_recorded"`
		AttendedAt      time.Time `json:"attended_at"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.AlreadyRecorded != wantRepeat {
		t.Fatalf("expected already_recorded=%v, got %s", wantRepeat, string(body))
	}
	return resp.AttendedAt
}

func doReq(t *testing.T, baseURL, method, path, debugPersonID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugPersonID != "" {
		req.Header.Set("X-Debug-Person-ID", debugPersonID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
