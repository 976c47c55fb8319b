package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
	"github.com/jhoicas/inventario-patrimonio/pkg/pagination"
)

// StaffUseCase administración de inventariantes (sólo Admin). Identidad e inventariante
// se crean y editan juntos dentro de una transacción.
type StaffUseCase struct {
	users repository.UserRepository
	staff repository.StaffRepository
	tx    repository.TxRunner
	log   *logger.Logger
	now   func() time.Time
}

// NewStaffUseCase construye el caso de uso.
func NewStaffUseCase(users repository.UserRepository, staff repository.StaffRepository, tx repository.TxRunner, log *logger.Logger) *StaffUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StaffUseCase{users: users, staff: staff, tx: tx, log: log.Component("staff"), now: time.Now}
}

// List página de inventariantes que coinciden con query.
func (uc *StaffUseCase) List(ctx context.Context, s access.Subject, query, page string) (*dto.StaffListResponse, error) {
	if err := access.Authorize(s, access.OpListStaff, nil); err != nil {
		return nil, err
	}
	filter := entity.StaffFilter{Query: strings.TrimSpace(query)}
	total, err := uc.staff.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	p := pagination.New(page, total, pagination.DefaultSize)
	list, err := uc.staff.List(ctx, filter, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.StaffResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.ToStaffResponse(m))
	}
	return &dto.StaffListResponse{Items: items, Page: p, Query: filter.Query}, nil
}

// Get inventariante por id.
func (uc *StaffUseCase) Get(ctx context.Context, s access.Subject, id int64) (*entity.StaffMember, error) {
	if err := access.Authorize(s, access.OpUpdateStaff, nil); err != nil {
		return nil, err
	}
	m, err := uc.staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// Create crea identidad + inventariante de forma atómica. Password obligatorio.
func (uc *StaffUseCase) Create(ctx context.Context, s access.Subject, in dto.StaffInput) (*dto.StaffResponse, error) {
	if err := access.Authorize(s, access.OpCreateStaff, nil); err != nil {
		return nil, err
	}
	hash, _, err := auth.HashPassword(in.Password1, in.Password2, true)
	if err != nil {
		return nil, err
	}
	if err := uc.CleanRegistrationCode(ctx, in.RegistrationCode, 0); err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     in.IsActive,
		DateJoined:   uc.now(),
	}
	m := &entity.StaffMember{
		RegistrationCode: in.RegistrationCode,
		RoleTitle:        in.RoleTitle,
		Phone:            in.Phone,
		IsPresident:      in.IsPresident,
		ActiveYear:       in.ActiveYear,
	}
	err = uc.tx.Run(ctx, func(users repository.UserRepository, staff repository.StaffRepository, _ repository.AssetRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		m.UserID = user.ID
		return staff.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	m.User = user
	uc.log.Info().Int64("staff_id", m.ID).Str("matricula", m.RegistrationCode).Msg("inventariante criado")
	resp := dto.ToStaffResponse(m)
	return &resp, nil
}

// Update edita identidad + inventariante de forma atómica. Password vacío = sin cambios.
func (uc *StaffUseCase) Update(ctx context.Context, s access.Subject, id int64, in dto.StaffInput) (*dto.StaffResponse, error) {
	m, err := uc.Get(ctx, s, id)
	if err != nil {
		return nil, err
	}
	hash, changed, err := auth.HashPassword(in.Password1, in.Password2, false)
	if err != nil {
		return nil, err
	}
	if err := uc.CleanRegistrationCode(ctx, in.RegistrationCode, id); err != nil {
		return nil, err
	}

	user := *m.User
	user.Username = in.Username
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email
	user.IsActive = in.IsActive
	if changed {
		user.PasswordHash = hash
	}
	m.RegistrationCode = in.RegistrationCode
	m.RoleTitle = in.RoleTitle
	m.Phone = in.Phone
	m.IsPresident = in.IsPresident
	m.ActiveYear = in.ActiveYear

	err = uc.tx.Run(ctx, func(users repository.UserRepository, staff repository.StaffRepository, _ repository.AssetRepository) error {
		if err := users.Update(ctx, &user); err != nil {
			return err
		}
		return staff.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	m.User = &user
	uc.log.Info().Int64("staff_id", id).Bool("senha_alterada", changed).Msg("inventariante atualizado")
	resp := dto.ToStaffResponse(m)
	return &resp, nil
}

// Delete borra el inventariante, su identidad y sus patrimonios.
func (uc *StaffUseCase) Delete(ctx context.Context, s access.Subject, id int64) error {
	if err := access.Authorize(s, access.OpDeleteStaff, nil); err != nil {
		return err
	}
	if err := uc.staff.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Int64("staff_id", id).Msg("inventariante excluído")
	return nil
}

// CleanRegistrationCode ErrDuplicateRegistrationCode si otro inventariante ya usa code.
func (uc *StaffUseCase) CleanRegistrationCode(ctx context.Context, code string, excludingID int64) error {
	if strings.TrimSpace(code) == "" {
		return domain.NewValidationError("registration_code", "Informe a matrícula.")
	}
	existing, err := uc.staff.GetByRegistrationCode(ctx, code)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludingID {
		return domain.ErrDuplicateRegistrationCode
	}
	return nil
}
