package model

import "github.com/golang-jwt/jwt"

// UserClaims carries the authenticated user identity inside the JWT.
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
