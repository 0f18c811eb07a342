package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for route protection.
type UserRole string

// Supported roles. Authentication itself lives in an external identity
// service; this API only validates the tokens it issues.
const (
	RoleAdmin       UserRole = "ADMIN"
	RoleOrganizer   UserRole = "ORGANIZER"
	RoleParticipant UserRole = "PARTICIPANT"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
