// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service manages marketplace profiles
type Service struct {
	db *gorm.DB
}

// NewService creates a new user service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// UpdateProfileRequest carries the profile fields a caller may change.
// Nil fields are left as they are.
type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName        *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	Phone           *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	ShippingAddress *string `json:"shipping_address,omitempty" binding:"omitempty,max=1000"`
	BillingAddress  *string `json:"billing_address,omitempty" binding:"omitempty,max=1000"`
	ShopName        *string `json:"shop_name,omitempty" binding:"omitempty,max=255"`
}

// GetByID loads a profile
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return FindByID(s.db.WithContext(ctx), id)
}

// FindByID loads a profile using the given handle, which may be a transaction
func FindByID(db *gorm.DB, id uuid.UUID) (*User, error) {
	var u User
	if err := db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, apperror.FromDB("user.get", err, "Customer", id)
	}
	return &u, nil
}

// EnsureProfile makes sure a profile row exists for the principal and that its email
// and role set match the token. The identity service owns both; addresses and names
// set through UpdateProfile are kept.
func (s *Service) EnsureProfile(ctx context.Context, p auth.Principal) (*User, error) {
	const op = "user.ensure_profile"
	db := s.db.WithContext(ctx)

	var u User
	err := db.Where("id = ?", p.ID).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if p.Email == "" {
			return nil, apperror.BadRequest(op, "token does not carry an email address")
		}
		fresh := User{ID: p.ID, Email: p.Email, IsActive: true}
		fresh.SetRoles(p.Roles...)
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&fresh).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(err, apperror.KindConflict, op, fmt.Sprintf("email %s is already used by another profile", p.Email))
		}
		if err != nil {
			return nil, apperror.Internal(op, err)
		}
		return FindByID(db, p.ID)
	case err != nil:
		return nil, apperror.Internal(op, err)
	}

	var want User
	want.SetRoles(p.Roles...)
	updates := map[string]interface{}{}
	if want.Roles != u.Roles {
		updates["roles"] = want.Roles
	}
	if p.Email != "" && p.Email != u.Email {
		updates["email"] = p.Email
	}
	if len(updates) == 0 {
		return &u, nil
	}

	err = db.Model(&u).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperror.Wrap(err, apperror.KindConflict, op, fmt.Sprintf("email %s is already used by another profile", p.Email))
	}
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	return &u, nil
}

// UpdateProfile applies the non-nil fields of req to the caller's profile
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	const op = "user.update_profile"

	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("first_name", req.FirstName)
	set("last_name", req.LastName)
	set("phone", req.Phone)
	set("shipping_address", req.ShippingAddress)
	set("billing_address", req.BillingAddress)
	set("shop_name", req.ShopName)

	var u *User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = FindByID(tx, id); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(u).Updates(updates).Error; err != nil {
			return apperror.Internal(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
