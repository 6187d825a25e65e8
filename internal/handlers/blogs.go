package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/apperr"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/authz"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/middleware"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/models"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/stats"
)

// BlogStore is the slice of the store the blog handlers need.
type BlogStore interface {
	ListBlogs(ctx context.Context) ([]models.Blog, error)
	GetBlogByID(ctx context.Context, id string) (*models.Blog, error)
	CreateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error)
	ReplaceBlog(ctx context.Context, blog models.Blog) (*models.Blog, error)
	DeleteBlog(ctx context.Context, id string) error
}

// UserFinder resolves blog owners for response projections.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type BlogsHandler struct {
	store  BlogStore
	users  UserFinder
	logger zerolog.Logger
}

func NewBlogsHandler(store BlogStore, users UserFinder, logger zerolog.Logger) *BlogsHandler {
	return &BlogsHandler{store: store, users: users, logger: logger}
}

type CreateBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

type StatsResponse struct {
	TotalLikes int                `json:"totalLikes"`
	Favorite   *stats.BlogSummary `json:"favorite,omitempty"`
	MostBlogs  *stats.AuthorCount `json:"mostBlogs,omitempty"`
}

func (h *BlogsHandler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.store.ListBlogs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list blogs")
		respondError(w, http.StatusInternalServerError, "failed to load blogs")
		return
	}
	respondJSON(w, http.StatusOK, blogs)
}

// Create requires a resolved caller; the new blog is owned by them.
func (h *BlogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondAppError(w, apperr.New(apperr.Authorization, "token missing or invalid"))
		return
	}

	var req CreateBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validateCreateBlog(req); err != nil {
		respondAppError(w, err)
		return
	}

	likes := 0
	if req.Likes != nil {
		likes = *req.Likes
	}
	created, err := h.store.CreateBlog(r.Context(), models.Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  likes,
		UserID: caller.ID,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("create blog")
		respondError(w, http.StatusInternalServerError, "failed to create blog")
		return
	}

	// Join the owner projection onto the response, like the list does.
	// Best effort: the blog is already created, a lookup hiccup only
	// drops the projection.
	owner, err := h.users.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		h.logger.Warn().Err(err).Str("id", caller.ID).Msg("load blog owner")
	} else if owner != nil {
		created.User = &models.UserRef{Username: owner.Username, Name: owner.Name}
	}
	respondJSON(w, http.StatusCreated, created)
}

func validateCreateBlog(req CreateBlogRequest) error {
	if req.Title == "" {
		return apperr.New(apperr.Validation, "title is required")
	}
	if req.URL == "" {
		return apperr.New(apperr.Validation, "url is required")
	}
	if req.Likes != nil && *req.Likes < 0 {
		return apperr.New(apperr.Validation, "likes must not be negative")
	}
	return nil
}

// Update merges a partial {title, likes} payload onto the stored blog.
// Anyone may update an existing blog; ownership is only enforced on
// delete.
func (h *BlogsHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, present := middleware.CallerFrom(r.Context())

	// The target is resolved before the payload is even looked at: a
	// missing blog is NOT_FOUND no matter what the body contains.
	existing, err := h.lookupBlog(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load blog")
		return
	}
	if err := authz.Authorize(authz.OpUpdate, existing, caller, present); err != nil {
		respondAppError(w, err)
		return
	}

	var patch models.BlogPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if patch.Title != nil && *patch.Title == "" {
		respondAppError(w, apperr.New(apperr.Validation, "title must not be empty"))
		return
	}
	if patch.Likes != nil && *patch.Likes < 0 {
		respondAppError(w, apperr.New(apperr.Validation, "likes must not be negative"))
		return
	}

	merged := patch.Apply(*existing)
	updated, err := h.store.ReplaceBlog(r.Context(), merged)
	if err != nil {
		h.logger.Error().Err(err).Msg("replace blog")
		respondError(w, http.StatusInternalServerError, "failed to update blog")
		return
	}
	if updated == nil {
		// deleted between the find and the replace
		respondAppError(w, apperr.New(apperr.NotFound, "blog not found"))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a blog, owner only. A blog that does not resolve is
// rejected with the same authorization error a non-owner gets, so the
// delete path never reveals whether an id exists.
func (h *BlogsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, present := middleware.CallerFrom(r.Context())

	existing, err := h.lookupBlog(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load blog")
		return
	}
	if err := authz.Authorize(authz.OpDelete, existing, caller, present); err != nil {
		respondAppError(w, err)
		return
	}

	if err := h.store.DeleteBlog(r.Context(), existing.ID); err != nil {
		h.logger.Error().Err(err).Msg("delete blog")
		respondError(w, http.StatusInternalServerError, "failed to delete blog")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats reduces the whole collection to summary figures.
func (h *BlogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.store.ListBlogs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("load blogs for stats")
		respondError(w, http.StatusInternalServerError, "failed to load blogs")
		return
	}

	resp := StatsResponse{TotalLikes: stats.TotalLikes(blogs)}
	if favorite, ok := stats.FavoriteBlog(blogs); ok {
		resp.Favorite = &favorite
	}
	if top, ok := stats.MostBlogs(blogs); ok {
		resp.MostBlogs = &top
	}
	respondJSON(w, http.StatusOK, resp)
}

// lookupBlog fetches the path-parameter blog, nil when it does not
// resolve. A syntactically invalid id counts as not resolving rather
// than surfacing a driver error.
func (h *BlogsHandler) lookupBlog(r *http.Request) (*models.Blog, error) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	blog, err := h.store.GetBlogByID(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("get blog")
		return nil, err
	}
	return blog, nil
}
