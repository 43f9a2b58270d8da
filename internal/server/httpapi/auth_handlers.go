package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message   string            `json:"message"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

type UserResponse struct {
	User models.PublicUser `json:"user"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: a.now().UTC().Format(time.RFC3339)})
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[RegisterRequest](w, r)
	if !ok {
		return
	}

	res, err := a.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	a.countTokenIssued()
	writeJSON(w, http.StatusCreated, AuthResponse{Message: "User registered successfully", Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}

	res, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			a.countAuthFailure("password")
		}
		a.mapError(w, r, err)
		return
	}

	a.countTokenIssued()
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Login successful", Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := a.users.Profile(r.Context(), userID)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

func (a *API) countTokenIssued() {
	if a.metrics != nil {
		a.metrics.TokensIssued.Inc()
	}
}

var _ UserService = (*services.UserService)(nil)
