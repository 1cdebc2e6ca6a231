package domain

import "time"

// Device is a client fingerprint a token may reference, enabling
// "log out this device" semantics.
type Device struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserAgent string    `json:"userAgent,omitempty"`
	OS        string    `json:"os,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
