package domain

import "time"

// Client is an external party a company does business with.
type Client struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClientFilter narrows client list queries. Name matches case-insensitively
// on a substring.
type ClientFilter struct {
	CompanyID     string
	Name          string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortDesc      bool
}
