// Package access concentra las reglas de autorización del inventario: quién es
// administrador (superusuario o inventariante presidente) y qué puede hacer cada
// rol sobre patrimonios, inventariantes y la planilha.
//
// Todas las reglas viven aquí; los casos de uso llaman a Authorize antes de tocar
// los repositorios y los handlers traducen el error devuelto a la respuesta HTTP.
package access

import (
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
)

// Role rol efectivo de quien hace la petición.
type Role int

const (
	RoleRegular Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "regular"
}

// Subject resultado de resolver una identidad autenticada.
type Subject struct {
	User  *entity.User
	Staff *entity.StaffMember // nil si la identidad no tiene inventariante
	Role  Role
}

// Resolve determina el rol: Admin si la identidad es superusuario o su inventariante
// es presidente; Regular en otro caso. No tiene efectos secundarios.
func Resolve(user *entity.User, staff *entity.StaffMember) Subject {
	s := Subject{User: user, Staff: staff, Role: RoleRegular}
	if (user != nil && user.IsSuperuser) || (staff != nil && staff.IsPresident) {
		s.Role = RoleAdmin
	}
	return s
}

// IsAdmin atajo para plantillas y handlers.
func (s Subject) IsAdmin() bool { return s.Role == RoleAdmin }

// StaffID inventariante propio; domain.ErrNotAStaffMember si no existe.
func (s Subject) StaffID() (int64, error) {
	if s.Staff == nil {
		return 0, domain.ErrNotAStaffMember
	}
	return s.Staff.ID, nil
}

// Operation acción sujeta a autorización.
type Operation int

const (
	OpListAssets Operation = iota
	OpCreateAsset
	OpUpdateAsset
	OpDeleteAsset
	OpQuickAddAsset
	OpListStaff
	OpCreateStaff
	OpUpdateStaff
	OpDeleteStaff
	OpImportSpreadsheet
	OpPurgeSpreadsheet
	OpDownloadSpreadsheet
)

// Authorize decide si s puede ejecutar op sobre target (solo para operaciones sobre
// un patrimonio existente). Devuelve nil si se permite; en otro caso:
//   - domain.ErrNotFound: patrimonio de otro responsable (no revela que existe).
//   - domain.ErrForbidden: rol insuficiente.
//   - domain.ErrNotAStaffMember: rol regular sin inventariante vinculado.
func Authorize(s Subject, op Operation, target *entity.Asset) error {
	switch op {
	case OpListAssets:
		return nil
	case OpCreateAsset, OpQuickAddAsset:
		if s.IsAdmin() && op == OpCreateAsset {
			return nil
		}
		_, err := s.StaffID()
		return err
	case OpUpdateAsset, OpDeleteAsset:
		if target == nil {
			return domain.ErrNotFound
		}
		if s.IsAdmin() {
			return nil
		}
		if s.Staff == nil || target.StaffID != s.Staff.ID {
			return domain.ErrNotFound
		}
		return nil
	case OpListStaff, OpCreateStaff, OpUpdateStaff, OpDeleteStaff,
		OpImportSpreadsheet, OpPurgeSpreadsheet, OpDownloadSpreadsheet:
		if s.IsAdmin() {
			return nil
		}
		return domain.ErrForbidden
	}
	return domain.ErrForbidden
}

// AssetScope filtro de responsable para listados: 0 (todos) para Admin, el inventariante
// propio para Regular. Un Regular sin inventariante recibe ErrNotAStaffMember y debe
// tratarse como "sin registros accesibles".
func AssetScope(s Subject) (int64, error) {
	if s.IsAdmin() {
		return 0, nil
	}
	return s.StaffID()
}

// AssetOwner responsable efectivo de un patrimonio nuevo. Para Regular se fuerza el
// inventariante propio e ignora lo pedido; Admin usa el pedido y, si no hay, el propio.
func AssetOwner(s Subject, requested int64) (int64, error) {
	if s.IsAdmin() && requested > 0 {
		return requested, nil
	}
	return s.StaffID()
}
