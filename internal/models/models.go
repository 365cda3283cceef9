package models

import "time"

// User represents an account within the StreamGate platform. PasswordHash
// never leaves the server; clients only ever see the PublicUser projection.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the client-facing view of a user.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the client-safe projection of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Video is a catalog entry. SourceID identifies the video at the upstream
// media provider and must never leave the server; PublicVideo has no field
// for it, so it cannot be serialized outward by construction.
type Video struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	SourceID     string
	IsActive     bool
}

// PublicVideo is the client-facing view of a catalog entry.
type PublicVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Public returns the client-safe projection of the video.
func (v Video) Public() PublicVideo {
	return PublicVideo{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		ThumbnailURL: v.ThumbnailURL,
	}
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
