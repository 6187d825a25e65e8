package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/apperr"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/auth"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/models"
)

// UserStore is the slice of the store the user handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type UsersHandler struct {
	store  UserStore
	tokens *auth.TokenService
	logger zerolog.Logger
}

func NewUsersHandler(store UserStore, tokens *auth.TokenService, logger zerolog.Logger) *UsersHandler {
	return &UsersHandler{store: store, tokens: tokens, logger: logger}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list users")
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	views := make([]models.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, user.View())
	}
	respondJSON(w, http.StatusOK, views)
}

// Register creates a user. Each rejection carries its own message;
// usernames must be unused and both fields longer than 3 characters.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validateRegistration(req); err != nil {
		respondAppError(w, err)
		return
	}

	existing, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("check username")
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if existing != nil {
		respondAppError(w, apperr.New(apperr.Conflict, "a user with that username already exists"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error().Err(err).Msg("hash password")
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	created, err := h.store.CreateUser(r.Context(), models.User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("create user")
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respondJSON(w, http.StatusCreated, created.View())
}

func validateRegistration(req RegisterRequest) error {
	if req.Username == "" {
		return apperr.New(apperr.Validation, "no username provided")
	}
	if req.Password == "" {
		return apperr.New(apperr.Validation, "no password provided")
	}
	if len(req.Username) <= 3 {
		return apperr.New(apperr.Validation, "username should be at least 3 characters long")
	}
	if len(req.Password) <= 3 {
		return apperr.New(apperr.Validation, "password should be at least 3 characters long")
	}
	return nil
}

// Login answers every failure with the same generic message so a
// caller cannot tell an unknown username from a wrong password.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(req.Username) <= 3 || len(req.Password) <= 3 {
		respondAppError(w, errBadLogin())
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("login lookup")
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondAppError(w, errBadLogin())
		return
	}

	token, err := h.tokens.Sign(user.ID, user.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("sign token")
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		ID:       user.ID,
		Username: user.Username,
	})
}

func errBadLogin() error {
	return apperr.New(apperr.Authentication, "invalid username or password")
}
