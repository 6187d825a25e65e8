package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/auth"
	appmiddleware "github.com/TinyGandalf/FullstackOpen-part4/internal/middleware"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/models"
)

type fakeBlogStore struct {
	blogs map[string]models.Blog
	order []string
}

func newFakeBlogStore() *fakeBlogStore {
	return &fakeBlogStore{blogs: make(map[string]models.Blog)}
}

func (s *fakeBlogStore) add(blog models.Blog) models.Blog {
	if blog.ID == "" {
		blog.ID = uuid.NewString()
	}
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = time.Now()
	}
	s.blogs[blog.ID] = blog
	s.order = append(s.order, blog.ID)
	return blog
}

func (s *fakeBlogStore) ListBlogs(context.Context) ([]models.Blog, error) {
	out := make([]models.Blog, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.blogs[id])
	}
	return out, nil
}

func (s *fakeBlogStore) GetBlogByID(_ context.Context, id string) (*models.Blog, error) {
	blog, ok := s.blogs[id]
	if !ok {
		return nil, nil
	}
	return &blog, nil
}

func (s *fakeBlogStore) CreateBlog(_ context.Context, blog models.Blog) (*models.Blog, error) {
	created := s.add(blog)
	return &created, nil
}

func (s *fakeBlogStore) ReplaceBlog(_ context.Context, blog models.Blog) (*models.Blog, error) {
	existing, ok := s.blogs[blog.ID]
	if !ok {
		return nil, nil
	}
	existing.Title = blog.Title
	existing.Likes = blog.Likes
	s.blogs[blog.ID] = existing
	return &existing, nil
}

func (s *fakeBlogStore) DeleteBlog(_ context.Context, id string) error {
	delete(s.blogs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeUserStore struct {
	users map[string]models.User
	order []string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) add(user models.User) models.User {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.Username] = user
	s.order = append(s.order, user.Username)
	return user
}

func (s *fakeUserStore) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	created := s.add(user)
	return &created, nil
}

func (s *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) ListUsers(context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.order))
	for _, username := range s.order {
		out = append(out, s.users[username])
	}
	return out, nil
}

type testEnv struct {
	router *chi.Mux
	blogs  *fakeBlogStore
	users  *fakeUserStore
	tokens *auth.TokenService
}

// newTestEnv wires the handlers the way main does, minus rate limits.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		blogs:  newFakeBlogStore(),
		users:  newFakeUserStore(),
		tokens: auth.NewTokenService("test-secret"),
	}
	logger := zerolog.Nop()
	blogsHandler := NewBlogsHandler(env.blogs, env.users, logger)
	usersHandler := NewUsersHandler(env.users, env.tokens, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(appmiddleware.CallerExtractor(env.tokens))
		r.Post("/users/login", usersHandler.Login)
		r.Get("/users", usersHandler.List)
		r.Post("/users", usersHandler.Register)
		r.Get("/blogs", blogsHandler.List)
		r.Get("/blogs/stats", blogsHandler.Stats)
		r.Post("/blogs", blogsHandler.Create)
		r.Put("/blogs/{id}", blogsHandler.Update)
		r.Delete("/blogs/{id}", blogsHandler.Delete)
	})
	env.router = r
	return env
}

func (e *testEnv) request(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) tokenFor(t *testing.T, userID, username string) string {
	t.Helper()
	token, err := e.tokens.Sign(userID, username)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rec, &body)
	return body["error"]
}
