package dto

import "time"

// LoginRequest credenciales del formulario de login.
type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required,max=150"`
	Password string `form:"password" json:"password" validate:"required"`
}

// LoginResponse token de sesión + identidad.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterRequest auto-registro (sólo si está habilitado).
type RegisterRequest struct {
	Username  string `form:"username" validate:"required,max=150"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1"`
	Password2 string `form:"password2"`
}

// SuperuserRequest alta de superusuario desde la CLI.
type SuperuserRequest struct {
	Username         string `validate:"required,max=150"`
	Email            string `validate:"omitempty,email,max=254"`
	Password         string
	RegistrationCode string `validate:"omitempty,max=20"`
}

// UserResponse identidad sin hash de password.
type UserResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}
