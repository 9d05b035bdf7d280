package models

// User is a dashboard account allowed to edit schedules and read logs.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // never expose the hash
}
