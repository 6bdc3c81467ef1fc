package models

import (
	"fmt"
	"time"
)

// DefaultRole is assigned when a user is created without an explicit
// role. It is a plain constant resolved by the caller, not a
// get-or-create side effect on the write path.
const DefaultRole = "guest"

const AdminRole = "admin"

type User struct {
	ID          int64     `gorm:"primaryKey"              json:"id"`
	Role        string    `gorm:"size:50;not null"        json:"role"`
	FirstName   string    `gorm:"size:100;not null"       json:"first_name"  validate:"required"`
	LastName    string    `gorm:"size:100;not null"       json:"last_name"   validate:"required"`
	Email       string    `gorm:"size:255;uniqueIndex"    json:"email"       validate:"required,email"`
	PhoneNumber string    `gorm:"size:20"                 json:"phone_number,omitempty"`
	IsActive    bool      `gorm:"default:true"            json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}
