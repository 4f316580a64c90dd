package domain

import (
	"strings"
	"time"
)

// User is a durable directory record. Email is the natural key
// (unique, case-insensitive); role and blocked are mutable by admins only.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Role      Role      `json:"role" dynamodbav:"role"`
	Blocked   bool      `json:"blocked" dynamodbav:"blocked"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// UpdateUserRequest carries admin mutations of a directory record.
type UpdateUserRequest struct {
	Role    *string `json:"role" validate:"omitempty,oneof=user admin"`
	Blocked *bool   `json:"blocked"`
}

// NormalizeEmail canonicalizes an address for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
