package domain

import (
	"strconv"
	"time"
)

// Well-known role descriptions. Roles are an open classification: any other
// description is valid and carries no deletion precondition.
const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

// Gender is the stored gender enum.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Role classifies a user. Description drives deletion eligibility.
type Role struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// User is the stored user record.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	UserName  string    `json:"user_name"`
	PassWord  string    `json:"-"`
	Enabled   bool      `json:"enabled"`
	Phone     string    `json:"phone"`
	Gender    Gender    `json:"gender"`
	Role      Role      `json:"role"`
	IsDeleted bool      `json:"-"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeletedUserName returns the name a soft-deleted record is stored under,
// freeing the original username for reuse.
func DeletedUserName(username string, id int64) string {
	return username + "-" + strconv.FormatInt(id, 10)
}

// MarkDeleted flags the record as soft-deleted and renames it. It returns the
// username the record held before the transition. Calling it on an already
// deleted record is a no-op.
func (u *User) MarkDeleted() string {
	if u.IsDeleted {
		return u.UserName
	}
	original := u.UserName
	u.IsDeleted = true
	u.UserName = DeletedUserName(original, u.ID)
	return original
}
