package user

import (
	"time"

	"danceslot/internal/auth"
)

// User is a registered dancer. Bookings made while logged in carry the
// user's ID so they show up under /me/bookings.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         auth.Role `db:"role" json:"role" swaggertype:"string" example:"user"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50" example:"Олена"`
	Email    string `json:"email" validate:"required,max=100,email" example:"olena@example.com"`
	Phone    string `json:"phone" validate:"omitempty,min=10,max=20,phone" example:"+380991234567"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateProfileRequest is a partial update. Omitted fields keep their value;
// an empty phone clears it.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// Profile is the editable part of a user.
type Profile struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Phone string `json:"phone" validate:"omitempty,min=10,max=20,phone"`
}

// AuthResponse is returned on registration: tokens plus the new account.
type AuthResponse struct {
	auth.TokenPair
	User *User `json:"user"`
}
