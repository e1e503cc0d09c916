package persons

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"event-attendance/internal/middleware"
	"event-attendance/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, issuer auth.TokenIssuer) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc))
		ar.Post("/login", loginHandler(svc, issuer))
	})

	r.Get("/me", getMeHandler(svc))
	r.Patch("/me", updateMeHandler(svc))

	r.Get("/persons", listPersonsHandler(svc))
	r.Get("/persons/{personID}", getPersonHandler(svc))

	// Reclamar una cuenta auto-registrada por el path externo.
	r.Post("/persons/{personID}/link", linkHandler(svc))

	// Superficie server-to-server para la plataforma externa (bot).
	r.Post("/external/resolve", resolveExternalHandler(svc))
	r.Get("/external/persons/{externalID}", getExternalPersonHandler(svc))
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// personResponse nunca expone el hash ni el email placeholder de cuentas
// externas sin reclamar.
type personResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name"`
	ExternalID *string   `json:"external_id,omitempty"`
	Linked     bool      `json:"linked"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type updateMeRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type linkRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resolveExternalRequest struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

type resolveExternalResponse struct {
	Person  personResponse `json:"person"`
	IsNew   bool           `json:"is_new"`
	Changes []string       `json:"changes,omitempty"`
	Message string         `json:"message"`
}

// registerHandler godoc
// @Summary Registrar persona (path autenticado)
// @Description Crea una persona con credencial de login real. Email duplicado => 409.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de registro"
// @Success 201 {object} personResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 409 {string} string "email already in use"
// @Router /auth/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Register(r.Context(), RegisterInput{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
		})
		if err != nil {
			writePersonError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPersonResponse(p))
	}
}

// loginHandler godoc
// @Summary Login
// @Description Autentica por credencial y devuelve un access token. Las credenciales
// @Description placeholder de cuentas auto-registradas nunca pasan: 401.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "invalid credentials"
// @Router /auth/login [post]
func loginHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, expiresAt, err := issuer.Issue(auth.Claims{PersonID: p.ID, Email: p.Email})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresAt:   expiresAt,
		})
	}
}

// getMeHandler godoc
// @Summary Perfil propio
// @Tags persons
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} personResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me [get]
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), claims.PersonID)
		if err != nil {
			http.Error(w, "person not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPersonResponse(p))
	}
}

// updateMeHandler godoc
// @Summary Actualizar perfil propio (PATCH parcial)
// @Tags persons
// @Accept json
// @Produce json
// @Param payload body updateMeRequest true "Campos a tocar"
// @Success 200 {object} personResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me [patch]
func updateMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateMeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), claims.PersonID, UpdateInput{
			Name:   req.Name,
			Active: req.Active,
		})
		if err != nil {
			writePersonError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPersonResponse(p))
	}
}

func listPersonsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := intQuery(r, "limit", 100)
		offset := intQuery(r, "offset", 0)

		items, err := svc.List(r.Context(), limit, offset)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]personResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPersonResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPersonHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.PersonID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "personID"))
		if err != nil {
			http.Error(w, "person not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPersonResponse(p))
	}
}

// linkHandler godoc
// @Summary Vincular credencial real a una cuenta auto-registrada
// @Description Falla con 409 si la persona ya tiene credencial (AlreadyLinked)
// @Description o si el email está en uso por otra persona (CredentialTaken).
// @Tags persons
// @Accept json
// @Produce json
// @Param personID path string true "ID de la persona"
// @Param payload body linkRequest true "Credencial a vincular"
// @Success 200 {object} personResponse
// @Failure 404 {string} string "person not found"
// @Failure 409 {string} string "already linked / email already in use"
// @Router /persons/{personID}/link [post]
func linkHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req linkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Link(r.Context(), chi.URLParam(r, "personID"), req.Email, req.Password)
		if err != nil {
			writePersonError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPersonResponse(p))
	}
}

// resolveExternalHandler godoc
// @Summary Resolver identidad de plataforma externa (auto-registro)
// @Description Devuelve la persona asociada al identificador externo, creándola
// @Description de forma transparente en el primer contacto. Repetir el mismo
// @Description identificador devuelve siempre la misma persona.
// @Tags external
// @Accept json
// @Produce json
// @Param payload body resolveExternalRequest true "Identidad externa"
// @Success 200 {object} resolveExternalResponse
// @Failure 400 {string} string "invalid json / external_id requerido"
// @Router /external/resolve [post]
func resolveExternalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveExternalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, created, changes, err := svc.ResolveExternal(r.Context(), ResolveExternalInput{
			ExternalID:  req.ExternalID,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			writePersonError(w, err)
			return
		}

		msg := "welcome back"
		if created {
			msg = "registered"
		} else if len(changes) > 0 {
			msg = "profile updated"
		}

		writeJSON(w, http.StatusOK, resolveExternalResponse{
			Person:  toPersonResponse(p),
			IsNew:   created,
			Changes: changes,
			Message: msg,
		})
	}
}

func getExternalPersonHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByExternalID(r.Context(), chi.URLParam(r, "externalID"))
		if err != nil {
			http.Error(w, "person not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPersonResponse(p))
	}
}

func toPersonResponse(p Person) personResponse {
	out := personResponse{
		ID:         p.ID,
		Name:       p.Name,
		ExternalID: p.ExternalID,
		Linked:     p.HasLoginCredential(),
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.HasLoginCredential() {
		out.Email = p.Email
	}
	return out
}

func writePersonError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "person not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyLinked):
		http.Error(w, "person already has a login credential", http.StatusConflict)
	case errors.Is(err, ErrCredentialTaken):
		http.Error(w, "email already in use", http.StatusConflict)
	case errors.Is(err, ErrUnauthenticated):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func intQuery(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
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
