package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
	"github.com/jhoicas/inventario-patrimonio/pkg/jwt"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login, resolución de rol, registro.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	staffRepo repository.StaffRepository
	tx        repository.TxRunner
	jwtCfg    JWTConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	staffRepo repository.StaffRepository,
	tx repository.TxRunner,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		userRepo:  userRepo,
		staffRepo: staffRepo,
		tx:        tx,
		jwtCfg:    jwtCfg,
		log:       log.Component("auth"),
		now:       time.Now,
	}
}

// Login verifica username/password, registra el acceso y genera el token de sesión.
// Usuario inexistente y password incorrecto devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(user.PasswordHash, in.Password) {
		uc.log.Warn().Str("username", in.Username).Msg("login rechazado")
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	now := uc.now()
	if err := uc.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.IsSuperuser, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("login")
	return &dto.LoginResponse{Token: token, User: ToUserResponse(user)}, nil
}

// ParseToken valida el token de sesión y devuelve el id de la identidad.
func (uc *AuthUseCase) ParseToken(token string) (int64, error) {
	sess, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return sess.UserID, nil
}

// Resolve carga la identidad y su inventariante y determina el rol. Se ejecuta en cada
// petición: un cambio de rol o la desactivación tienen efecto inmediato.
func (uc *AuthUseCase) Resolve(ctx context.Context, userID int64) (access.Subject, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return access.Subject{}, err
	}
	if user == nil || !user.IsActive {
		return access.Subject{}, domain.ErrUnauthorized
	}
	staff, err := uc.staffRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return access.Subject{}, err
	}
	if staff != nil {
		staff.User = user
	}
	return access.Resolve(user, staff), nil
}

// Register auto-registro: crea identidad + inventariante por el único camino explícito,
// con función "Colaborador" y matrícula "USR-<id>".
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	hash, _, err := HashPassword(in.Password1, in.Password2, true)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:     strings.TrimSpace(in.Username),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		IsActive:     true,
		DateJoined:   uc.now(),
	}
	err = uc.tx.Run(ctx, func(users repository.UserRepository, staff repository.StaffRepository, _ repository.AssetRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return staff.Create(ctx, &entity.StaffMember{
			UserID:           user.ID,
			RegistrationCode: entity.SignupRegistrationCode(user.ID),
			RoleTitle:        entity.DefaultRoleTitle,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("usuário registrado")
	resp := ToUserResponse(user)
	return &resp, nil
}

// CreateSuperuser crea un superusuario con su inventariante (función "Administrador",
// matrícula "0000" por defecto).
func (uc *AuthUseCase) CreateSuperuser(ctx context.Context, in dto.SuperuserRequest) (*dto.StaffResponse, error) {
	hash, _, err := HashPassword(in.Password, in.Password, true)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.RegistrationCode)
	if code == "" {
		code = entity.DefaultSuperuserCode
	}
	existing, err := uc.staffRepo.GetByRegistrationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateRegistrationCode
	}

	user := &entity.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		IsSuperuser:  true,
		IsActive:     true,
		DateJoined:   uc.now(),
	}
	staff := &entity.StaffMember{RegistrationCode: code, RoleTitle: entity.SuperuserRoleTitle}
	err = uc.tx.Run(ctx, func(users repository.UserRepository, sr repository.StaffRepository, _ repository.AssetRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		staff.UserID = user.ID
		return sr.Create(ctx, staff)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("criar superusuário: %w", err)
	}
	staff.User = user
	uc.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("superusuário criado")
	resp := dto.ToStaffResponse(staff)
	return &resp, nil
}

// ToUserResponse mapea la identidad sin el hash.
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName(),
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
	}
}
