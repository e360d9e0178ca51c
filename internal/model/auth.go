package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for the operator account that manages the
// catalog and mints user tokens.
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// UserClaims are JWT claims for annotators, reviewers, project admins and
// model users. Roles are never carried in the token; they come from project
// assignments.
type UserClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for operator login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful operator login
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}

// MintTokenRequest asks the operator account for a user token.
type MintTokenRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// MintTokenResponse carries the minted user token.
type MintTokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
