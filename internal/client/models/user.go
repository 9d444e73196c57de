package models

import (
	"encoding/json"
	"time"
)

// User is the authenticated account as returned by the backend.
// The backend may identify it by either "id" or "_id".
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Bio               string     `json:"bio,omitempty"`
	Location          string     `json:"location,omitempty"`
	Website           string     `json:"website,omitempty"`
	FavoriteCountries []string   `json:"favoriteCountries,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// Merge overlays the non-empty fields of other on top of u and returns the
// result. The identity (ID) of u is kept unless it is empty.
func (u User) Merge(other User) User {
	if u.ID == "" {
		u.ID = other.ID
	}
	if other.Name != "" {
		u.Name = other.Name
	}
	if other.Email != "" {
		u.Email = other.Email
	}
	if other.Bio != "" {
		u.Bio = other.Bio
	}
	if other.Location != "" {
		u.Location = other.Location
	}
	if other.Website != "" {
		u.Website = other.Website
	}
	if other.FavoriteCountries != nil {
		u.FavoriteCountries = other.FavoriteCountries
	}
	if other.CreatedAt != nil {
		u.CreatedAt = other.CreatedAt
	}
	return u
}

// ProfileUpdate is the editable subset of User sent with PUT /users.
type ProfileUpdate struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Bio      string `json:"bio" validate:"max=500"`
	Location string `json:"location" validate:"max=100"`
	Website  string `json:"website" validate:"omitempty,url"`
}

// AuthResponse is the payload of both /auth/login and /auth/register.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
