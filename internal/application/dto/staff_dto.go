package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/pkg/pagination"
)

// StaffForm campos crudos del formulario de inventariante (identidad + datos propios).
type StaffForm struct {
	Username         string `form:"username" validate:"required,max=150"`
	FirstName        string `form:"first_name" validate:"max=150"`
	LastName         string `form:"last_name" validate:"max=150"`
	Email            string `form:"email" validate:"omitempty,email,max=254"`
	Password1        string `form:"password1"`
	Password2        string `form:"password2"`
	IsActive         string `form:"is_active"`
	RegistrationCode string `form:"registration_code" validate:"required,max=20"`
	RoleTitle        string `form:"role_title" validate:"max=50"`
	Phone            string `form:"phone" validate:"max=15"`
	IsPresident      string `form:"is_president"`
	ActiveYear       string `form:"active_year" validate:"omitempty,numeric,max=4"`
}

// StaffInput valores tipados para crear/editar un inventariante.
type StaffInput struct {
	Username         string
	FirstName        string
	LastName         string
	Email            string
	Password1        string
	Password2        string
	IsActive         bool
	RegistrationCode string
	RoleTitle        string
	Phone            string
	IsPresident      bool
	ActiveYear       *int64
}

// ToInput convierte el formulario. Checkbox marcado = "on", "true" o "1".
func (f StaffForm) ToInput() (StaffInput, error) {
	in := StaffInput{
		Username:         strings.TrimSpace(f.Username),
		FirstName:        strings.TrimSpace(f.FirstName),
		LastName:         strings.TrimSpace(f.LastName),
		Email:            strings.TrimSpace(f.Email),
		Password1:        f.Password1,
		Password2:        f.Password2,
		IsActive:         checked(f.IsActive),
		RegistrationCode: strings.TrimSpace(f.RegistrationCode),
		RoleTitle:        strings.TrimSpace(f.RoleTitle),
		Phone:            strings.TrimSpace(f.Phone),
		IsPresident:      checked(f.IsPresident),
	}
	if raw := strings.TrimSpace(f.ActiveYear); raw != "" {
		y, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || y <= 0 {
			return in, domain.NewValidationError("active_year", "Informe um ano positivo.")
		}
		in.ActiveYear = &y
	}
	return in, nil
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// StaffFormFrom rellena el formulario de edición (passwords vacíos).
func StaffFormFrom(s *entity.StaffMember) StaffForm {
	f := StaffForm{
		RegistrationCode: s.RegistrationCode,
		RoleTitle:        s.RoleTitle,
		Phone:            s.Phone,
	}
	if s.IsPresident {
		f.IsPresident = "on"
	}
	if s.ActiveYear != nil {
		f.ActiveYear = strconv.FormatInt(*s.ActiveYear, 10)
	}
	if s.User != nil {
		f.Username = s.User.Username
		f.FirstName = s.User.FirstName
		f.LastName = s.User.LastName
		f.Email = s.User.Email
		if s.User.IsActive {
			f.IsActive = "on"
		}
	}
	return f
}

// StaffResponse inventariante listo para presentar.
type StaffResponse struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Username         string     `json:"username"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	IsActive         bool       `json:"is_active"`
	IsSuperuser      bool       `json:"is_superuser"`
	RegistrationCode string     `json:"registration_code"`
	RoleTitle        string     `json:"role_title"`
	Phone            string     `json:"phone"`
	IsPresident      bool       `json:"is_president"`
	ActiveYear       *int64     `json:"active_year,omitempty"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	DisplayName      string     `json:"display_name"`
}

// ToStaffResponse mapea la entidad (con su identidad cargada).
func ToStaffResponse(s *entity.StaffMember) StaffResponse {
	r := StaffResponse{
		ID:               s.ID,
		UserID:           s.UserID,
		RegistrationCode: s.RegistrationCode,
		RoleTitle:        s.RoleTitle,
		Phone:            s.Phone,
		IsPresident:      s.IsPresident,
		ActiveYear:       s.ActiveYear,
		DisplayName:      s.DisplayName(),
	}
	if u := s.User; u != nil {
		r.Username = u.Username
		r.FullName = u.FullName()
		r.Email = u.Email
		r.IsActive = u.IsActive
		r.IsSuperuser = u.IsSuperuser
		r.LastLogin = u.LastLogin
	}
	return r
}

// StaffListResponse una página del listado.
type StaffListResponse struct {
	Items []StaffResponse
	Page  pagination.Page
	Query string
}

// StaffOption opción del selector de responsable (formulario de patrimonio, Admin).
type StaffOption struct {
	ID    int64
	Label string
}
