package domain

import "time"

// Application is the tenant boundary. Users and tokens belong to exactly one
// application.
type Application struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
