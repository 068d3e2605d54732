package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/pkg/auth"
)

// ==================== Fakes ====================

type fakeAuthUsers struct {
	users map[uuid.UUID]*model.User
}

func newFakeAuthUsers() *fakeAuthUsers {
	return &fakeAuthUsers{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeAuthUsers) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeAuthUsers) FindByID(id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeAuthUsers) FindByPhone(phone string) (*model.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthUsers) FindApprovedByRole(role model.Role) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.Role == role && u.IsApproved {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeAuthUsers) CountApprovedResidentsByFlat(flatID uuid.UUID) (int64, error) {
	var count int64
	for _, u := range f.users {
		if u.Role == model.RoleResident && u.IsApproved && u.FlatID != nil && *u.FlatID == flatID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAuthUsers) UpdateProfile(id uuid.UUID, name, phone string) error {
	if user, ok := f.users[id]; ok {
		user.Name = name
		user.Phone = phone
	}
	return nil
}

func (f *fakeAuthUsers) UpdatePassword(id uuid.UUID, hashedPassword string) error {
	if user, ok := f.users[id]; ok {
		user.Password = hashedPassword
	}
	return nil
}

type fakeHousing struct {
	apartments map[uuid.UUID]*model.Apartment
	blocks     map[uuid.UUID]*model.Block
	flats      map[uuid.UUID]*model.Flat
}

func (f *fakeHousing) FindApartmentByID(id uuid.UUID) (*model.Apartment, error) {
	apartment, ok := f.apartments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return apartment, nil
}

func (f *fakeHousing) FindBlockByID(id uuid.UUID) (*model.Block, error) {
	block, ok := f.blocks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return block, nil
}

func (f *fakeHousing) FindFlatByID(id uuid.UUID) (*model.Flat, error) {
	flat, ok := f.flats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return flat, nil
}

func (f *fakeNotifier) NotifyNewUser(ctx context.Context, adminID uuid.UUID, userName, phone string) *model.Notification {
	f.record("NotifyNewUser", adminID)
	return &model.Notification{}
}

// ==================== Fixture ====================

type authFixture struct {
	service  *AuthService
	users    *fakeAuthUsers
	housing  *fakeHousing
	notifier *fakeNotifier
	presence *fakePresence

	apartment *model.Apartment
	block     *model.Block
	flat      *model.Flat
	admin     *model.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	apartment := &model.Apartment{ID: uuid.New(), Name: "Green Meadows"}
	block := &model.Block{ID: uuid.New(), Name: "A", ApartmentID: apartment.ID}
	flat := &model.Flat{ID: uuid.New(), Number: "101", UniqueID: "A101", BlockID: &block.ID, ApartmentID: apartment.ID}

	users := newFakeAuthUsers()
	admin := &model.User{Name: "Admin", Phone: "9000000001", Role: model.RoleAdmin, IsApproved: true}
	require.NoError(t, users.Create(admin))

	housing := &fakeHousing{
		apartments: map[uuid.UUID]*model.Apartment{apartment.ID: apartment},
		blocks:     map[uuid.UUID]*model.Block{block.ID: block},
		flats:      map[uuid.UUID]*model.Flat{flat.ID: flat},
	}
	notifier := &fakeNotifier{}
	presence := &fakePresence{online: map[uuid.UUID]bool{}}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	return &authFixture{
		service:   NewAuthService(users, housing, jwtManager, nil, notifier, presence),
		users:     users,
		housing:   housing,
		notifier:  notifier,
		presence:  presence,
		apartment: apartment,
		block:     block,
		flat:      flat,
		admin:     admin,
	}
}

func (fx *authFixture) residentRequest() model.RegisterRequest {
	return model.RegisterRequest{
		Name:        "Resident",
		Phone:       "9111111111",
		Password:    "password123",
		Role:        model.RoleResident,
		ApartmentID: &fx.apartment.ID,
		FlatID:      &fx.flat.ID,
	}
}

func (fx *authFixture) addApprovedResident(t *testing.T, phone string) *model.User {
	t.Helper()
	user := &model.User{
		Name:        "Resident " + phone,
		Phone:       phone,
		Role:        model.RoleResident,
		ApartmentID: &fx.apartment.ID,
		FlatID:      &fx.flat.ID,
		IsApproved:  true,
	}
	require.NoError(t, fx.users.Create(user))
	return user
}

// ==================== Register ====================

func TestRegister_ResidentStartsPending(t *testing.T) {
	fx := newAuthFixture(t)

	resp, err := fx.service.Register(context.Background(), fx.residentRequest())
	require.NoError(t, err)

	assert.Equal(t, "Registration successful. Your account is pending approval.", resp.Message)
	assert.False(t, resp.User.IsApproved)

	stored, err := fx.users.FindByPhone("9111111111")
	require.NoError(t, err)
	assert.False(t, stored.IsApproved)
	assert.NotEqual(t, "password123", stored.Password)

	// Admins learn about the pending registration
	calls := fx.notifier.callsFor("NotifyNewUser")
	require.Len(t, calls, 1)
	assert.Equal(t, fx.admin.ID, calls[0].userID)
	assert.Contains(t, fx.presence.events(), model.WSEventRefreshPendingUsers)
}

func TestRegister_SecurityIsLiveImmediately(t *testing.T) {
	fx := newAuthFixture(t)

	resp, err := fx.service.Register(context.Background(), model.RegisterRequest{
		Name: "Guard", Phone: "9222222222", Password: "password123", Role: model.RoleSecurity,
	})
	require.NoError(t, err)

	assert.Equal(t, "Registration successful", resp.Message)
	assert.True(t, resp.User.IsApproved)
	assert.Empty(t, fx.notifier.callsFor("NotifyNewUser"))
}

func TestRegister_DuplicatePhone(t *testing.T) {
	fx := newAuthFixture(t)

	req := fx.residentRequest()
	req.Phone = fx.admin.Phone
	_, err := fx.service.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrPhoneRegistered)
}

func TestRegister_HousingValidation(t *testing.T) {
	fx := newAuthFixture(t)

	tests := []struct {
		name   string
		mutate func(*model.RegisterRequest)
		want   error
	}{
		{"missing apartment", func(r *model.RegisterRequest) { r.ApartmentID = nil }, ErrApartmentRequired},
		{"missing flat", func(r *model.RegisterRequest) { r.FlatID = nil }, ErrFlatRequired},
		{"unknown apartment", func(r *model.RegisterRequest) { id := uuid.New(); r.ApartmentID = &id }, ErrInvalidApartment},
		{"unknown flat", func(r *model.RegisterRequest) { id := uuid.New(); r.FlatID = &id }, ErrInvalidFlat},
		{"block mismatch", func(r *model.RegisterRequest) { id := uuid.New(); r.BlockID = &id }, ErrBlockMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fx.residentRequest()
			tt.mutate(&req)
			_, err := fx.service.Register(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_FlatAtCapacity(t *testing.T) {
	fx := newAuthFixture(t)
	for i := 0; i < maxResidentsPerFlat; i++ {
		fx.addApprovedResident(t, "930000000"+string(rune('1'+i)))
	}

	_, err := fx.service.Register(context.Background(), fx.residentRequest())
	assert.ErrorIs(t, err, ErrFlatFull)
}

func TestRegister_PendingResidentsDoNotCountTowardCapacity(t *testing.T) {
	fx := newAuthFixture(t)
	for i := 0; i < maxResidentsPerFlat; i++ {
		user := fx.addApprovedResident(t, "940000000"+string(rune('1'+i)))
		user.IsApproved = false
	}

	_, err := fx.service.Register(context.Background(), fx.residentRequest())
	assert.NoError(t, err)
}

// ==================== Login ====================

func TestLogin_Succeeds(t *testing.T) {
	fx := newAuthFixture(t)
	resident := fx.addApprovedResident(t, "9111111111")
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	resident.Password = string(hash)

	resp, err := fx.service.Login(model.LoginRequest{Phone: "9111111111", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, resident.ID, resp.User.ID)
}

func TestLogin_WrongPasswordAndUnknownPhoneIndistinguishable(t *testing.T) {
	fx := newAuthFixture(t)
	resident := fx.addApprovedResident(t, "9111111111")
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	resident.Password = string(hash)

	_, wrongPassword := fx.service.Login(model.LoginRequest{Phone: "9111111111", Password: "nope"})
	_, unknownPhone := fx.service.Login(model.LoginRequest{Phone: "0000000000", Password: "password123"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownPhone, ErrInvalidCredentials)
}

func TestLogin_PendingAccountRefused(t *testing.T) {
	fx := newAuthFixture(t)
	resident := fx.addApprovedResident(t, "9111111111")
	resident.IsApproved = false
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	resident.Password = string(hash)

	_, err = fx.service.Login(model.LoginRequest{Phone: "9111111111", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountPending)
}

// ==================== Profile ====================

func TestGetProfile_IncludesHousing(t *testing.T) {
	fx := newAuthFixture(t)
	resident := fx.addApprovedResident(t, "9111111111")

	resp, err := fx.service.GetProfile(resident.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.Apartment)
	assert.Equal(t, fx.apartment.ID, resp.Apartment.ID)
	require.NotNil(t, resp.Flat)
	assert.Equal(t, "101", resp.Flat.Number)
	require.NotNil(t, resp.Block)
	assert.Equal(t, "A", resp.Block.Name)
}

func TestUpdateProfile_RejectsTakenPhone(t *testing.T) {
	fx := newAuthFixture(t)
	resident := fx.addApprovedResident(t, "9111111111")

	_, err := fx.service.UpdateProfile(resident.ID, model.UpdateProfileRequest{
		Name: "Resident", Phone: fx.admin.Phone,
	})
	assert.ErrorIs(t, err, ErrPhoneRegistered)

	// Keeping your own phone is not a conflict
	resp, err := fx.service.UpdateProfile(resident.ID, model.UpdateProfileRequest{
		Name: "Renamed", Phone: "9111111111",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Name)
}

func TestChangePassword_VerifiesCurrent(t *testing.T) {
	fx := newAuthFixture(t)
	resident := fx.addApprovedResident(t, "9111111111")
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	resident.Password = string(hash)

	err = fx.service.ChangePassword(resident.ID, model.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newpassword",
	})
	assert.ErrorIs(t, err, ErrWrongCurrentPassword)

	err = fx.service.ChangePassword(resident.ID, model.ChangePasswordRequest{
		CurrentPassword: "password123", NewPassword: "newpassword",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resident.Password), []byte("newpassword")))
}
