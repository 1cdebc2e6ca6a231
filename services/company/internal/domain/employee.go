package domain

import "time"

// Employee links a user-service account to a company. UserID is nullable:
// an employee may be invited by email before an account exists.
type Employee struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	UserID    *string   `json:"userId,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmployeeFilter narrows employee list queries. Email matches
// case-insensitively on a substring.
type EmployeeFilter struct {
	CompanyID     string
	Email         string
	Role          string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortDesc      bool
}
