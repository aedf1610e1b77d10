package models

import "time"

// User is a row of the users table, including the salted password hash.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is what an authenticated session knows about its user: the stored
// record without the password hash.
type Profile struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// Profile strips the password hash from the record.
func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		AvatarURL:    u.AvatarURL,
	}
}

// FullName joins first and last name for display.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
