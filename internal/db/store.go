package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ListBlogs returns every blog, oldest first, with the owner joined as
// a reduced {username, name} projection when one exists.
func (s *Store) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT
			b.id::text,
			b.title,
			COALESCE(b.author, ''),
			b.url,
			b.likes,
			COALESCE(b.user_id::text, ''),
			u.username,
			u.name,
			b.created_at
		FROM blogs b
		LEFT JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]models.Blog, 0)
	for rows.Next() {
		var blog models.Blog
		var username, name *string
		if err := rows.Scan(
			&blog.ID,
			&blog.Title,
			&blog.Author,
			&blog.URL,
			&blog.Likes,
			&blog.UserID,
			&username,
			&name,
			&blog.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		if username != nil {
			owner := models.UserRef{Username: *username}
			if name != nil {
				owner.Name = *name
			}
			blog.User = &owner
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return blogs, nil
}

func (s *Store) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT
			id::text,
			title,
			COALESCE(author, ''),
			url,
			likes,
			COALESCE(user_id::text, ''),
			created_at
		FROM blogs
		WHERE id = $1
	`
	var blog models.Blog
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&blog.ID,
		&blog.Title,
		&blog.Author,
		&blog.URL,
		&blog.Likes,
		&blog.UserID,
		&blog.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return &blog, nil
}

func (s *Store) CreateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO blogs (title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
		RETURNING
			id::text,
			title,
			COALESCE(author, ''),
			url,
			likes,
			COALESCE(user_id::text, ''),
			created_at
	`

	var created models.Blog
	err := s.pool.QueryRow(
		ctx,
		query,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.UserID,
	).Scan(
		&created.ID,
		&created.Title,
		&created.Author,
		&created.URL,
		&created.Likes,
		&created.UserID,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}
	return &created, nil
}

// ReplaceBlog writes the merged title/likes of an already-fetched blog.
// The preceding find and this write are two statements, not one
// transaction, so a concurrent mutation between them can win — same
// posture as a find-then-replace against a document store.
func (s *Store) ReplaceBlog(ctx context.Context, blog models.Blog) (*models.Blog, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		UPDATE blogs
		SET title = $2, likes = $3
		WHERE id = $1
		RETURNING
			id::text,
			title,
			COALESCE(author, ''),
			url,
			likes,
			COALESCE(user_id::text, ''),
			created_at
	`
	var updated models.Blog
	err := s.pool.QueryRow(ctx, query, blog.ID, blog.Title, blog.Likes).Scan(
		&updated.ID,
		&updated.Title,
		&updated.Author,
		&updated.URL,
		&updated.Likes,
		&updated.UserID,
		&updated.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("replace blog: %w", err)
	}
	return &updated, nil
}

func (s *Store) DeleteBlog(ctx context.Context, id string) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	return nil
}

// User persistence
func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO users (username, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text, username, name, password_hash, created_at
	`

	var created models.User
	err := s.pool.QueryRow(ctx, query, user.Username, user.Name, user.PasswordHash).Scan(
		&created.ID,
		&created.Username,
		&created.Name,
		&created.PasswordHash,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id::text, username, name, password_hash, created_at
		FROM users
		ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Name,
			&user.PasswordHash,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return users, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id::text, username, name, password_hash, created_at
		FROM users
		WHERE username = $1
	`
	var user models.User
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id::text, username, name, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}
