package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hivcare-booking/internal/converter"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"
	"hivcare-booking/internal/service"
	"hivcare-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrRoleNotFound       = errors.New("role not found")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, role string) (*dto.UserListResponse, error)
}

type authUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	auditService service.AuditService
}

func NewAuthUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		jwtService:   jwtService,
		redisClient:  redisClient,
		auditService: auditService,
	}
}

func accessKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

func refreshKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID.String(), tokenID)
}

// Register opens a patient account.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	return u.createAccount(ctx, req.Email, req.Password, req.FullName, req.PhoneNumber, entity.RoleIDUser, entity.AuditActionUserRegister)
}

// CreateStaff opens an admin, staff or tester account on behalf of an admin.
func (u *authUsecase) CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.UserResponse, error) {
	role, err := u.roleRepo.FindByName(ctx, u.tx.DB(ctx), req.Role)
	if err != nil {
		u.log.Warnf("Failed to find role %s: %+v", req.Role, err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	return u.createAccount(ctx, req.Email, req.Password, req.FullName, req.PhoneNumber, role.ID, entity.AuditActionUserCreate)
}

func (u *authUsecase) createAccount(ctx context.Context, email, password, fullName, phone string, roleID int, action string) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    string(hashedPassword),
		FullName:    strings.TrimSpace(fullName),
		PhoneNumber: phone,
		RoleID:      roleID,
		IsActive:    true,
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.userRepo.FindByEmail(tx, user.Email)
		if err != nil {
			u.log.Warnf("Failed to find user by email: %+v", err)
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		if err := u.userRepo.Create(tx, user); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			if isForeignKeyError(err, "role") {
				return ErrRoleNotFound
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		actor := actorID(ctx)
		if actor == nil {
			actor = &user.ID
		}
		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actor,
			Action:   action,
			Entity:   "user",
			EntityID: user.ID.String(),
			NewValue: map[string]interface{}{"email": user.Email, "role": entity.RoleNameByID(roleID)},
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Account created: id=%s, role=%s", user.ID, entity.RoleNameByID(roleID))
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(u.tx.DB(ctx), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.Record(ctx, u.tx.DB(ctx), service.AuditEntry{
		UserID:   &user.ID,
		Action:   entity.AuditActionUserLogin,
		Entity:   "user",
		EntityID: user.ID.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return tokens, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	sub := jwt.Subject{
		UserID: user.ID,
		Email:  user.Email,
		RoleID: user.RoleID,
		Role:   user.RoleName(),
	}

	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	_, err = u.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, accessKey(user.ID, accessTokenID), "valid", u.jwtService.GetAccessExpiry())
		pipe.Set(ctx, refreshKey(user.ID, refreshTokenID), "valid", u.jwtService.GetRefreshExpiry())
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to store tokens in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// Logout revokes the caller's access token and, when known, the paired
// refresh token.
func (u *authUsecase) Logout(ctx context.Context, accessTokenID, refreshTokenID string) error {
	id, err := currentIdentity(ctx)
	if err != nil {
		return err
	}

	keys := []string{accessKey(id.UserID, accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, refreshKey(id.UserID, refreshTokenID))
	}
	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}

	if err := u.auditService.Record(ctx, u.tx.DB(ctx), service.AuditEntry{
		UserID:   &id.UserID,
		Action:   entity.AuditActionUserLogout,
		Entity:   "user",
		EntityID: id.UserID.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Deleting the key is the single-use check: only one caller gets 1 back.
	deleted, err := u.redisClient.Del(ctx, refreshKey(claims.UserID, claims.TokenID)).Result()
	if err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrTokenRevoked
	}

	// Role or activation may have changed since the token was issued.
	user, err := u.userRepo.FindByID(u.tx.DB(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.tx.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// ListUsers lists accounts, optionally of one role.
func (u *authUsecase) ListUsers(ctx context.Context, role string) (*dto.UserListResponse, error) {
	roleID := 0
	if role != "" {
		roleID = entity.RoleIDByName(role)
		if roleID == 0 {
			return nil, ErrRoleNotFound
		}
	}

	users, err := u.userRepo.FindAll(u.tx.DB(ctx), roleID)
	if err != nil {
		u.log.Warnf("Failed to find users: %+v", err)
		return nil, err
	}

	return &dto.UserListResponse{
		Users: converter.UsersToResponses(users),
		Total: len(users),
	}, nil
}
