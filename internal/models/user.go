package models

import "strings"

// User is a person an asset can be checked out to.
type User struct {
	FirstName  string `json:"first_name" yaml:"first_name"`
	LastName   string `json:"last_name" yaml:"last_name"`
	Email      string `json:"email" yaml:"email"`
	Username   string `json:"username" yaml:"username"`
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
	Location   string `json:"location,omitempty" yaml:"location,omitempty"`
}

// FullName joins first and last name, skipping whichever is empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
