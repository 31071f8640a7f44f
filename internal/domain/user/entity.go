// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"gorm.io/gorm"
)

// User is the marketplace profile of an identity-service account.
// Credentials live with the identity service; this row holds the role set and addresses.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	FirstName       string    `gorm:"size:100" json:"first_name"`
	LastName        string    `gorm:"size:100" json:"last_name"`
	Phone           string    `gorm:"size:20" json:"phone"`
	Roles           string    `gorm:"not null;size:100" json:"-"` // comma separated
	ShippingAddress string    `gorm:"type:text" json:"shipping_address,omitempty"`
	BillingAddress  string    `gorm:"type:text" json:"billing_address,omitempty"`
	ShopName        string    `gorm:"size:255" json:"shop_name,omitempty"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id when none was set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the display name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleList splits the stored role set
func (u *User) RoleList() []string {
	if u.Roles == "" {
		return nil
	}
	return strings.Split(u.Roles, ",")
}

// SetRoles stores the role set
func (u *User) SetRoles(roles ...string) {
	u.Roles = strings.Join(auth.NewPrincipal(u.ID, "", roles...).Roles, ",")
}

// Principal returns the actor for this profile
func (u *User) Principal() auth.Principal {
	return auth.NewPrincipal(u.ID, u.Email, u.RoleList()...)
}
