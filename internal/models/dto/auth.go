package dto

import "github.com/hongminglow/storefront/internal/models"

type RegisterRequest struct {
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

type ValidationErrorResponse struct {
	Field string `json:"field"`
}
