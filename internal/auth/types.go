package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// context keys set by Identify
const (
	KeyOwner  = "owner"
	KeyUserID = "user_id"
	KeyEmail  = "user_email"
)

// header a browser or terminal client can use to keep its own history
const ClientIDHeader = "X-Client-ID"

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
