package entity

import "time"

// User is a registered account in the local credential store.
// PasswordHash holds a bcrypt hash, never the plaintext.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name"`
	Email         string    `json:"email" gorm:"uniqueIndex"`
	AadhaarNumber string    `json:"aadhaar_number" gorm:"uniqueIndex"`
	PasswordHash  string    `json:"-"`
	UserType      string    `json:"user_type" gorm:"default:CA"`
	CreatedAt     time.Time `json:"created_at"`
}
