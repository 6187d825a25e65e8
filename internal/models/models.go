package models

import "time"

// Blog is a catalog entry. UserID is empty for rows created before
// ownership existed; once set it never changes.
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	UserID    string    `json:"userId,omitempty"`
	User      *UserRef  `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRef is the reduced owner projection joined onto listed blogs.
type UserRef struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// View strips everything a client should not see.
func (u User) View() UserView {
	return UserView{ID: u.ID, Username: u.Username, Name: u.Name}
}

type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
