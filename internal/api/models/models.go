package models

import (
	"github.com/jon4hz/whispr/internal/database"
)

// Response is the uniform envelope returned by every API endpoint.
type Response struct {
	Success            bool               `json:"success"`
	Message            string             `json:"message"`
	Data               any                `json:"data,omitempty"`
	IsAcceptingMessage *bool              `json:"isAcceptingMessage,omitempty"`
	Messages           []database.Message `json:"messages,omitempty"`
}

// PublicUser is the directory listing shape, stripped of anything sensitive.
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"userName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ProfileUser is the public profile shape for a verified user.
type ProfileUser struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Username           string `json:"userName"`
	IsAcceptingMessage bool   `json:"isAcceptingMessage"`
	AvatarURL          string `json:"avatarUrl,omitempty"`
}
