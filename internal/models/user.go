package models

// Role names seeded at startup.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
	RoleMember  = "member"
)

type Role struct {
	BaseModel
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// User is an authentication principal: staff or a member's login.
type User struct {
	BaseModel
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	RoleID       uint   `gorm:"not null;index" json:"role_id"`
	Role         *Role  `json:"role,omitempty"`
}
