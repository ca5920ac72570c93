package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims представляет собой данные, хранящиеся в JWT токене
type UserClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Profile описывает текущего пользователя для GET /me
type Profile struct {
	ID                string `json:"id"`
	UserPrincipalName string `json:"userPrincipalName"`
}
