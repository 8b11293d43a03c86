package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/food-ordering/internal/auth"
	"github.com/vasiliy-maslov/food-ordering/internal/user"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=15"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

type AuthHandler struct {
	service  user.Service
	sessions *Sessions
	validate *validator.Validate
}

func NewAuthHandler(service user.Service, sessions *Sessions) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/register", h.handleRegister)
	router.Post("/login", h.handleLogin)
	router.Post("/logout", h.handleLogout)
	router.With(h.sessions.RequireAuth).Get("/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	created, err := h.service.Register(r.Context(), user.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user via service")

		var clientMessage string
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			clientMessage = "Username already taken"
		case errors.Is(err, user.ErrEmailTaken):
			clientMessage = "Email already registered"
		default:
			clientMessage = "Failed to register"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, toUserResponse(created))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	u, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Error().Err(err).Msg("Failed to authenticate user via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := h.sessions.SignIn(w, r, u); err != nil {
		log.Error().Err(err).Msg("Failed to save session")
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to clear session")
		respondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	u, err := h.service.GetByID(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("Failed to get user via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get user")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(u))
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Address:  u.Address,
		IsAdmin:  u.IsAdmin,
	}
}
