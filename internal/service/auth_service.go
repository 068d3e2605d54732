package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/pkg/auth"
)

// A flat never holds more than this many approved residents
const maxResidentsPerFlat = 4

// AuthUserStore is the slice of the user repository the auth flow needs
type AuthUserStore interface {
	Create(user *model.User) error
	FindByID(id uuid.UUID) (*model.User, error)
	FindByPhone(phone string) (*model.User, error)
	FindApprovedByRole(role model.Role) ([]model.User, error)
	CountApprovedResidentsByFlat(flatID uuid.UUID) (int64, error)
	UpdateProfile(id uuid.UUID, name, phone string) error
	UpdatePassword(id uuid.UUID, hashedPassword string) error
}

// HousingStore resolves the apartment/block/flat hierarchy during
// registration and profile reads
type HousingStore interface {
	FindApartmentByID(id uuid.UUID) (*model.Apartment, error)
	FindBlockByID(id uuid.UUID) (*model.Block, error)
	FindFlatByID(id uuid.UUID) (*model.Flat, error)
}

// RegistrationNotifier informs admins about registrations awaiting approval
type RegistrationNotifier interface {
	NotifyNewUser(ctx context.Context, adminID uuid.UUID, userName, phone string) *model.Notification
}

// AuthService handles registration, login, session revocation and profile
type AuthService struct {
	users      AuthUserStore
	housing    HousingStore
	jwtManager *auth.JWTManager
	rdb        *redis.Client
	notifier   RegistrationNotifier
	presence   Presence
}

func NewAuthService(
	users AuthUserStore,
	housing HousingStore,
	jwtManager *auth.JWTManager,
	rdb *redis.Client,
	notifier RegistrationNotifier,
	presence Presence,
) *AuthService {
	return &AuthService{
		users:      users,
		housing:    housing,
		jwtManager: jwtManager,
		rdb:        rdb,
		notifier:   notifier,
		presence:   presence,
	}
}

// ==================== Register ====================

// Register creates an account. Residents must name a valid apartment and flat
// and start unapproved; security and admin accounts are live immediately.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterResponse, error) {
	if _, err := s.users.FindByPhone(req.Phone); err == nil {
		return nil, ErrPhoneRegistered
	}

	if req.Role == model.RoleResident {
		if err := s.validateHousing(req); err != nil {
			return nil, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:       req.Name,
		Phone:      req.Phone,
		Password:   string(hashedPassword),
		Role:       req.Role,
		IsApproved: req.Role != model.RoleResident,
	}
	if req.Role == model.RoleResident {
		user.ApartmentID = req.ApartmentID
		user.FlatID = req.FlatID
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	message := "Registration successful"
	if req.Role == model.RoleResident {
		message = "Registration successful. Your account is pending approval."
		s.notifyAdminsNewUser(ctx, user)
	}

	return &model.RegisterResponse{
		Message: message,
		User:    user.ToResponse(),
	}, nil
}

// validateHousing checks the resident's claimed apartment/flat assignment
func (s *AuthService) validateHousing(req model.RegisterRequest) error {
	if req.ApartmentID == nil {
		return ErrApartmentRequired
	}
	if req.FlatID == nil {
		return ErrFlatRequired
	}
	apartment, err := s.housing.FindApartmentByID(*req.ApartmentID)
	if err != nil {
		return ErrInvalidApartment
	}
	flat, err := s.housing.FindFlatByID(*req.FlatID)
	if err != nil || flat.ApartmentID != apartment.ID {
		return ErrInvalidFlat
	}
	if req.BlockID != nil {
		if flat.BlockID == nil || *flat.BlockID != *req.BlockID {
			return ErrBlockMismatch
		}
	}
	count, err := s.users.CountApprovedResidentsByFlat(flat.ID)
	if err != nil {
		return err
	}
	if count >= maxResidentsPerFlat {
		return ErrFlatFull
	}
	return nil
}

// notifyAdminsNewUser fans the pending registration out to every admin
func (s *AuthService) notifyAdminsNewUser(ctx context.Context, user *model.User) {
	admins, err := s.users.FindApprovedByRole(model.RoleAdmin)
	if err != nil {
		return
	}
	for _, admin := range admins {
		s.notifier.NotifyNewUser(ctx, admin.ID, user.Name, user.Phone)
	}
	s.presence.BroadcastToRole(model.RoleAdmin, model.WSEventRefreshPendingUsers, nil)
}

// ==================== Login / Logout ====================

// Login authenticates by phone and password. Unapproved accounts are told so
// without revealing anything else.
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.FindByPhone(req.Phone)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsApproved {
		return nil, ErrAccountPending
	}

	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

// Logout blacklists the session token until its natural expiry
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	expiresIn := time.Until(claims.ExpiresAt.Time)
	if expiresIn <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, "blacklist:"+tokenString, "revoked", expiresIn).Err()
}

// ==================== Profile ====================

// GetProfile returns the user along with their housing assignment
func (s *AuthService) GetProfile(userID uuid.UUID) (*model.ProfileResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	resp := &model.ProfileResponse{UserResponse: user.ToResponse()}
	if user.ApartmentID != nil {
		resp.Apartment, _ = s.housing.FindApartmentByID(*user.ApartmentID)
	}
	if user.FlatID != nil {
		if flat, err := s.housing.FindFlatByID(*user.FlatID); err == nil {
			resp.Flat = flat
			if flat.BlockID != nil {
				resp.Block, _ = s.housing.FindBlockByID(*flat.BlockID)
			}
		}
	}
	return resp, nil
}

// UpdateProfile changes name and phone. The new phone must not belong to
// anyone else.
func (s *AuthService) UpdateProfile(userID uuid.UUID, req model.UpdateProfileRequest) (*model.ProfileResponse, error) {
	if existing, err := s.users.FindByPhone(req.Phone); err == nil && existing.ID != userID {
		return nil, ErrPhoneRegistered
	}
	if err := s.users.UpdateProfile(userID, req.Name, req.Phone); err != nil {
		return nil, err
	}
	return s.GetProfile(userID)
}

// ChangePassword verifies the current password before setting the new one
func (s *AuthService) ChangePassword(userID uuid.UUID, req model.ChangePasswordRequest) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongCurrentPassword
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(userID, string(hashedPassword))
}
