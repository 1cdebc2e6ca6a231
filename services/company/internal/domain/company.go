package domain

import "time"

// Company is the top-level organization entity. Access to employees is
// membership based: a user is related to a company when an employee record
// links them to it.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
