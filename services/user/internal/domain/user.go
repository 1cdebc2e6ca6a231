package domain

import (
	"encoding/json"
	"time"
)

// UserStatus enumerates the account lifecycle states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// IsValid reports whether the status is one of the known states.
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusBanned:
		return true
	}
	return false
}

// User represents an identity scoped to one application. The (email, appId)
// pair is unique; the same email may exist under different applications.
type User struct {
	ID           string          `json:"id"`
	AppID        string          `json:"appId"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	IsVerified   bool            `json:"isVerified"`
	Status       UserStatus      `json:"status"`
	Profile      json.RawMessage `json:"profile,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// UserDetail is the enriched representation returned by single-user reads.
type UserDetail struct {
	User
	Roles       []string     `json:"roles"`
	Permissions []string     `json:"permissions"`
	Application *Application `json:"application,omitempty"`
	Devices     []Device     `json:"devices"`
}

// UserFilter narrows user list queries.
type UserFilter struct {
	Email         string
	Status        UserStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortDesc      bool
}
