package view

import "time"

type UserRole string

const (
	RoleStudent     UserRole = "student"
	RoleFaculty     UserRole = "faculty"
	RoleCoordinator UserRole = "coordinator"
	RoleAdmin       UserRole = "admin"
)

// UserSnapshot is the copy of the user row embedded into a deferred deletion record.
type UserSnapshot struct {
	Id         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       UserRole  `json:"role"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
