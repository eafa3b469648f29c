package models

import "time"

// User represents a User node in the graph store.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Bio               string     `json:"bio"`
	ProfilePic        string     `json:"profile_pic"`
	EmailVerified     bool       `json:"email_verified"`
	VerificationToken *string    `json:"-"` // present only while unverified and a token has been issued
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Author is the subset of user fields embedded in post responses.
type Author struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Bio        string `json:"bio,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// AsAuthor projects a user into the shape embedded in posts.
func (u *User) AsAuthor() Author {
	return Author{
		ID:         u.ID,
		Username:   u.Username,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
	}
}
