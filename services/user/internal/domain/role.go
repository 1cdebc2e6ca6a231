package domain

import "time"

// Role is a named grant bundle. Users acquire permissions exclusively through
// role membership; the grant model is purely additive.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RoleDetail includes the names of the permissions the role grants.
type RoleDetail struct {
	Role
	Permissions []string `json:"permissions"`
}

// Permission is a named capability following the
// "<service>:<verb>:any:<resource>" convention.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RolesAndPermissions is the resolved, de-duplicated grant view of a user.
type RolesAndPermissions struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}
