package entity

import (
	"fmt"
	"time"
)

// Valores por defecto del alta explícita de inventariantes.
const (
	DefaultRoleTitle     = "Colaborador"
	SuperuserRoleTitle   = "Administrador"
	SignupCodePrefix     = "USR-"
	DefaultSuperuserCode = "0000"
	MaxRegistrationCode  = 20
	MaxRoleTitle         = 50
	MaxPhone             = 15
)

// StaffMember inventariante: responsable por un subconjunto de patrimonios.
type StaffMember struct {
	ID               int64
	UserID           int64
	RegistrationCode string // matrícula, única global
	RoleTitle        string // função
	Phone            string
	IsPresident      bool
	ActiveYear       *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// User identidad vinculada; los repositorios la cargan junto con el inventariante.
	User *User
}

// DisplayName "Nome (matrícula)".
func (s *StaffMember) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.User == nil {
		return s.RegistrationCode
	}
	return fmt.Sprintf("%s (%s)", s.User.FullName(), s.RegistrationCode)
}

// SignupRegistrationCode matrícula generada para altas por auto-registro.
func SignupRegistrationCode(userID int64) string {
	return fmt.Sprintf("%s%d", SignupCodePrefix, userID)
}

// StaffFilter criterios de listado de inventariantes.
type StaffFilter struct {
	Query string // subcadena sobre username, nombre y matrícula
}
