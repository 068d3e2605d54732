package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatepass/backend/internal/model"
)

// AdminUserStore is the user repository surface of the admin console
type AdminUserStore interface {
	Create(user *model.User) error
	FindByID(id uuid.UUID) (*model.User, error)
	FindByPhone(phone string) (*model.User, error)
	CountApprovedResidentsByFlat(flatID uuid.UUID) (int64, error)
	ListPendingResidents() ([]model.User, error)
	Approve(id uuid.UUID) (bool, error)
	DeleteUnapproved(id uuid.UUID) (bool, error)
	Delete(id uuid.UUID) (bool, error)
	List(role, search string) ([]model.AdminUserEntry, error)
	ListGuards() ([]model.User, error)
	UpdateGuard(id uuid.UUID, name, phone string) (bool, error)
	DeleteGuard(id uuid.UUID) (bool, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*model.User, error)
}

// HierarchyStore is the full apartment/block/flat repository surface
type HierarchyStore interface {
	CreateApartment(a *model.Apartment) error
	FindApartmentByID(id uuid.UUID) (*model.Apartment, error)
	ListApartments() ([]model.Apartment, error)
	UpdateApartment(id uuid.UUID, name string) (*model.Apartment, error)
	DeleteApartment(id uuid.UUID) error
	CreateBlock(b *model.Block) error
	FindBlockByID(id uuid.UUID) (*model.Block, error)
	ListBlocksByApartment(apartmentID uuid.UUID) ([]model.Block, error)
	UpdateBlock(id uuid.UUID, name string) (*model.Block, error)
	DeleteBlock(id uuid.UUID) error
	CreateFlat(f *model.Flat) error
	FindFlatByID(id uuid.UUID) (*model.Flat, error)
	FlatNumberExistsInBlock(blockID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)
	FlatNumberExistsInApartment(apartmentID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)
	UniqueIDExists(uniqueID string) (bool, error)
	ListFlatsByBlock(blockID uuid.UUID) ([]model.Flat, error)
	ListFlats(apartmentID *uuid.UUID) ([]model.Flat, error)
	UpdateFlat(id uuid.UUID, number, uniqueID string) (*model.Flat, error)
	DeleteFlat(id uuid.UUID) error
}

// ApprovalNotifier tells a resident their registration went through
type ApprovalNotifier interface {
	NotifyUserApproved(ctx context.Context, userID uuid.UUID, userName string) *model.Notification
}

// AdminService covers user approval and the housing hierarchy
type AdminService struct {
	users    AdminUserStore
	housing  HierarchyStore
	notifier ApprovalNotifier
	presence Presence
}

func NewAdminService(users AdminUserStore, housing HierarchyStore, notifier ApprovalNotifier, presence Presence) *AdminService {
	return &AdminService{
		users:    users,
		housing:  housing,
		notifier: notifier,
		presence: presence,
	}
}

// ==================== User approval ====================

// PendingUsers lists unapproved resident registrations, oldest first
func (s *AdminService) PendingUsers() ([]model.User, error) {
	return s.users.ListPendingResidents()
}

// ApproveUser approves a pending registration. The flat's occupancy cap is
// re-checked here because other approvals may have landed since registration.
func (s *AdminService) ApproveUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.IsApproved {
		return nil, ErrUserNotPending
	}
	if user.FlatID != nil {
		count, err := s.users.CountApprovedResidentsByFlat(*user.FlatID)
		if err != nil {
			return nil, err
		}
		if count >= maxResidentsPerFlat {
			return nil, ErrFlatNowFull
		}
	}

	ok, err := s.users.Approve(userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotPending
	}
	user.IsApproved = true

	s.notifier.NotifyUserApproved(ctx, user.ID, user.Name)
	s.presence.SendToUser(user.ID, model.WSEventUserApproved, s.approvalEvent(user))
	s.presence.BroadcastToRole(model.RoleAdmin, model.WSEventRefreshPendingUsers, nil)

	return user, nil
}

// RejectUser deletes a pending registration outright
func (s *AdminService) RejectUser(userID uuid.UUID) error {
	ok, err := s.users.DeleteUnapproved(userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotPending
	}
	s.presence.BroadcastToRole(model.RoleAdmin, model.WSEventRefreshPendingUsers, nil)
	return nil
}

// approvalEvent decorates the approval with the user's housing assignment so
// the client can render it without another round-trip
func (s *AdminService) approvalEvent(user *model.User) model.UserApprovedEvent {
	event := model.UserApprovedEvent{Message: "Your account has been approved"}
	if user.ApartmentID != nil {
		event.Apartment, _ = s.housing.FindApartmentByID(*user.ApartmentID)
	}
	if user.FlatID != nil {
		if flat, err := s.housing.FindFlatByID(*user.FlatID); err == nil {
			event.Flat = flat
			if flat.BlockID != nil {
				event.Block, _ = s.housing.FindBlockByID(*flat.BlockID)
			}
		}
	}
	return event
}

// ==================== Apartments ====================

func (s *AdminService) CreateApartment(name string) (*model.Apartment, error) {
	apartment := &model.Apartment{Name: name}
	if err := s.housing.CreateApartment(apartment); err != nil {
		return nil, err
	}
	return apartment, nil
}

func (s *AdminService) ListApartments() ([]model.Apartment, error) {
	return s.housing.ListApartments()
}

func (s *AdminService) UpdateApartment(id uuid.UUID, name string) (*model.Apartment, error) {
	apartment, err := s.housing.UpdateApartment(id, name)
	if err != nil {
		return nil, ErrApartmentNotFound
	}
	return apartment, nil
}

func (s *AdminService) DeleteApartment(id uuid.UUID) error {
	if _, err := s.housing.FindApartmentByID(id); err != nil {
		return ErrApartmentNotFound
	}
	return s.housing.DeleteApartment(id)
}

// ==================== Blocks ====================

func (s *AdminService) CreateBlock(apartmentID uuid.UUID, name string) (*model.Block, error) {
	if _, err := s.housing.FindApartmentByID(apartmentID); err != nil {
		return nil, ErrApartmentNotFound
	}
	block := &model.Block{Name: name, ApartmentID: apartmentID}
	if err := s.housing.CreateBlock(block); err != nil {
		return nil, err
	}
	return block, nil
}

func (s *AdminService) ListBlocks(apartmentID uuid.UUID) ([]model.Block, error) {
	if _, err := s.housing.FindApartmentByID(apartmentID); err != nil {
		return nil, ErrApartmentNotFound
	}
	return s.housing.ListBlocksByApartment(apartmentID)
}

func (s *AdminService) UpdateBlock(id uuid.UUID, name string) (*model.Block, error) {
	block, err := s.housing.UpdateBlock(id, name)
	if err != nil {
		return nil, ErrBlockNotFound
	}
	return block, nil
}

func (s *AdminService) DeleteBlock(id uuid.UUID) error {
	if _, err := s.housing.FindBlockByID(id); err != nil {
		return ErrBlockNotFound
	}
	return s.housing.DeleteBlock(id)
}

// ==================== Flats ====================

// CreateFlatInBlock adds a flat under a block. The human-facing unique_id is
// the block name prefixed to the number and must be globally unique.
func (s *AdminService) CreateFlatInBlock(blockID uuid.UUID, number string) (*model.Flat, error) {
	block, err := s.housing.FindBlockByID(blockID)
	if err != nil {
		return nil, ErrBlockNotFound
	}
	if taken, err := s.housing.FlatNumberExistsInBlock(blockID, number, nil); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrFlatNumberTaken
	}

	uniqueID := block.Name + number
	if taken, err := s.housing.UniqueIDExists(uniqueID); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrFlatUniqueIDTaken
	}

	flat := &model.Flat{
		Number:      number,
		UniqueID:    uniqueID,
		BlockID:     &block.ID,
		ApartmentID: block.ApartmentID,
	}
	if err := s.housing.CreateFlat(flat); err != nil {
		return nil, err
	}
	return flat, nil
}

// CreateFlatInApartment adds a flat directly under an apartment, for
// complexes without blocks. unique_id is the bare number.
func (s *AdminService) CreateFlatInApartment(apartmentID uuid.UUID, number string) (*model.Flat, error) {
	if _, err := s.housing.FindApartmentByID(apartmentID); err != nil {
		return nil, ErrApartmentNotFound
	}
	if taken, err := s.housing.FlatNumberExistsInApartment(apartmentID, number, nil); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrFlatNumberTakenInApt
	}
	if taken, err := s.housing.UniqueIDExists(number); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrFlatUniqueIDTaken
	}

	flat := &model.Flat{
		Number:      number,
		UniqueID:    number,
		ApartmentID: apartmentID,
	}
	if err := s.housing.CreateFlat(flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func (s *AdminService) ListFlatsByBlock(blockID uuid.UUID) ([]model.Flat, error) {
	if _, err := s.housing.FindBlockByID(blockID); err != nil {
		return nil, ErrBlockNotFound
	}
	return s.housing.ListFlatsByBlock(blockID)
}

func (s *AdminService) ListFlats(apartmentID *uuid.UUID) ([]model.Flat, error) {
	return s.housing.ListFlats(apartmentID)
}

// UpdateFlat renames a flat, re-deriving and re-checking its unique_id
func (s *AdminService) UpdateFlat(id uuid.UUID, number string) (*model.Flat, error) {
	flat, err := s.housing.FindFlatByID(id)
	if err != nil {
		return nil, ErrFlatNotFound
	}

	uniqueID := number
	if flat.BlockID != nil {
		block, err := s.housing.FindBlockByID(*flat.BlockID)
		if err != nil {
			return nil, ErrBlockNotFound
		}
		if taken, err := s.housing.FlatNumberExistsInBlock(*flat.BlockID, number, &id); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrFlatNumberTaken
		}
		uniqueID = block.Name + number
	} else {
		if taken, err := s.housing.FlatNumberExistsInApartment(flat.ApartmentID, number, &id); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrFlatNumberTakenInApt
		}
	}
	if uniqueID != flat.UniqueID {
		if taken, err := s.housing.UniqueIDExists(uniqueID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrFlatUniqueIDTaken
		}
	}

	return s.housing.UpdateFlat(id, number, uniqueID)
}

func (s *AdminService) DeleteFlat(id uuid.UUID) error {
	if _, err := s.housing.FindFlatByID(id); err != nil {
		return ErrFlatNotFound
	}
	return s.housing.DeleteFlat(id)
}

// ==================== Security guards ====================

// CreateGuard provisions a security account. Guards never wait for approval.
func (s *AdminService) CreateGuard(req model.CreateGuardRequest) (*model.User, error) {
	if _, err := s.users.FindByPhone(req.Phone); err == nil {
		return nil, ErrPhoneRegistered
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	guard := &model.User{
		Name:       req.Name,
		Phone:      req.Phone,
		Password:   string(hashedPassword),
		Role:       model.RoleSecurity,
		IsApproved: true,
	}
	if err := s.users.Create(guard); err != nil {
		return nil, err
	}
	return guard, nil
}

func (s *AdminService) ListGuards() ([]model.User, error) {
	return s.users.ListGuards()
}

func (s *AdminService) UpdateGuard(id uuid.UUID, req model.UpdateGuardRequest) error {
	if existing, err := s.users.FindByPhone(req.Phone); err == nil && existing.ID != id {
		return ErrPhoneRegistered
	}
	ok, err := s.users.UpdateGuard(id, req.Name, req.Phone)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGuardNotFound
	}
	return nil
}

func (s *AdminService) DeleteGuard(id uuid.UUID) error {
	ok, err := s.users.DeleteGuard(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGuardNotFound
	}
	return nil
}

// ==================== Users ====================

func (s *AdminService) ListUsers(q model.UserListQuery) ([]model.AdminUserEntry, error) {
	return s.users.List(q.Role, q.Search)
}

// UpdateUser edits a user's contact details and housing assignment
func (s *AdminService) UpdateUser(id uuid.UUID, req model.UpdateUserRequest) (*model.User, error) {
	if existing, err := s.users.FindByPhone(req.Phone); err == nil && existing.ID != id {
		return nil, ErrPhoneRegistered
	}
	updates := map[string]interface{}{
		"name":  req.Name,
		"phone": req.Phone,
	}
	if req.FlatID != nil {
		if _, err := s.housing.FindFlatByID(*req.FlatID); err != nil {
			return nil, ErrFlatNotFound
		}
		updates["flat_id"] = *req.FlatID
	}
	if req.ApartmentID != nil {
		if _, err := s.housing.FindApartmentByID(*req.ApartmentID); err != nil {
			return nil, ErrApartmentNotFound
		}
		updates["apartment_id"] = *req.ApartmentID
	}

	user, err := s.users.Update(id, updates)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AdminService) DeleteUser(id uuid.UUID) error {
	ok, err := s.users.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}
