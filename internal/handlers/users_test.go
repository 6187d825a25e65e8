package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/auth"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/models"
)

func TestRegister(t *testing.T) {
	t.Run("valid user is created", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.request(t, http.MethodPost, "/api/users", "", map[string]string{
			"username": "MrSir", "name": "Mister Sir", "password": "shakenmartini",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var view models.UserView
		decodeBody(t, rec, &view)
		assert.NotEmpty(t, view.ID)
		assert.Equal(t, "MrSir", view.Username)
		assert.Equal(t, "Mister Sir", view.Name)
	})

	t.Run("password hash never leaves the server", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.request(t, http.MethodPost, "/api/users", "", map[string]string{
			"username": "MrSir", "password": "shakenmartini",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "hash")
		assert.NotContains(t, rec.Body.String(), "password")

		list := env.request(t, http.MethodGet, "/api/users", "", nil)
		assert.NotContains(t, list.Body.String(), "hash")
	})

	t.Run("missing name defaults to empty", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.request(t, http.MethodPost, "/api/users", "", map[string]string{
			"username": "MrSir", "password": "shakenmartini",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var view models.UserView
		decodeBody(t, rec, &view)
		assert.Equal(t, "", view.Name)
	})

	t.Run("stored password is bcrypt-hashed", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.request(t, http.MethodPost, "/api/users", "", map[string]string{
			"username": "MrSir", "password": "shakenmartini",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		stored := env.users.users["MrSir"]
		assert.NotEqual(t, "shakenmartini", stored.PasswordHash)
		assert.True(t, auth.CheckPassword("shakenmartini", stored.PasswordHash))
	})

	t.Run("validation messages are distinct", func(t *testing.T) {
		env := newTestEnv(t)

		tests := []struct {
			name    string
			body    map[string]string
			message string
		}{
			{"no username", map[string]string{"name": "Mister Sir", "password": "shakenmartini"}, "no username provided"},
			{"no password", map[string]string{"username": "MrSir", "name": "Mister Sir"}, "no password provided"},
			{"short username", map[string]string{"username": "Do", "password": "shakenmartini"}, "username should be at least 3 characters long"},
			{"short password", map[string]string{"username": "MrSr", "password": "sh"}, "password should be at least 3 characters long"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				rec := env.request(t, http.MethodPost, "/api/users", "", tc.body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, tc.message, errorMessage(t, rec))
			})
		}
	})

	t.Run("length boundary sits between 3 and 4", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.request(t, http.MethodPost, "/api/users", "", map[string]string{
			"username": strings.Repeat("a", 3), "password": "shakenmartini",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.request(t, http.MethodPost, "/api/users", "", map[string]string{
			"username": strings.Repeat("a", 4), "password": "shakenmartini",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		env := newTestEnv(t)
		body := map[string]string{"username": "MrSir", "name": "Mister Sir", "password": "shakenmartini"}

		first := env.request(t, http.MethodPost, "/api/users", "", body)
		require.Equal(t, http.StatusCreated, first.Code)

		second := env.request(t, http.MethodPost, "/api/users", "", body)
		assert.Equal(t, http.StatusBadRequest, second.Code)
		assert.Equal(t, "a user with that username already exists", errorMessage(t, second))
	})
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.users.add(models.User{Username: "root", Name: "Super User", PasswordHash: "x"})
	env.users.add(models.User{Username: "guest", PasswordHash: "y"})

	rec := env.request(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []models.UserView
	decodeBody(t, rec, &views)
	require.Len(t, views, 2)
	assert.Equal(t, "root", views[0].Username)
	assert.Equal(t, "Super User", views[0].Name)
}

func TestLogin(t *testing.T) {
	register := func(t *testing.T, env *testEnv) {
		rec := env.request(t, http.MethodPost, "/api/users", "", map[string]string{
			"username": "LoginSir", "name": "Login Sir", "password": "shakenmartini",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("valid login returns a resolvable token", func(t *testing.T) {
		env := newTestEnv(t)
		register(t, env)

		rec := env.request(t, http.MethodPost, "/api/users/login", "", map[string]string{
			"username": "LoginSir", "password": "shakenmartini",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "LoginSir", resp.Username)
		assert.NotEmpty(t, resp.ID)

		caller, ok := env.tokens.ResolveCaller(resp.Token)
		require.True(t, ok)
		assert.Equal(t, resp.ID, caller.ID)
		assert.Equal(t, "LoginSir", caller.Username)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		env := newTestEnv(t)
		register(t, env)

		unknownUser := env.request(t, http.MethodPost, "/api/users/login", "", map[string]string{
			"username": "NobodySir", "password": "shakenmartini",
		})
		wrongPassword := env.request(t, http.MethodPost, "/api/users/login", "", map[string]string{
			"username": "LoginSir", "password": "stirredmartini",
		})
		shortFields := env.request(t, http.MethodPost, "/api/users/login", "", map[string]string{
			"username": "", "password": "shakenmartini",
		})

		assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, shortFields.Code)
		assert.Equal(t, unknownUser.Body.String(), wrongPassword.Body.String())
		assert.Equal(t, unknownUser.Body.String(), shortFields.Body.String())
		assert.Equal(t, "invalid username or password", errorMessage(t, unknownUser))
	})
}
