package models

import "time"

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash []byte     `json:"-"`
	PersonID     string     `json:"person_id"`
	Manager      bool       `json:"manager"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	PersonID string `json:"person_id"`
	Manager  bool   `json:"manager"`
}

// Invitation admits one email address to registration and binds the new
// account to a person in the team directory.
type Invitation struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	PersonID  string    `json:"person_id"`
	Manager   bool      `json:"manager"`
	CreatedAt time.Time `json:"created_at"`
}
