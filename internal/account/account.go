package account

import (
	"strings"
	"time"

	"github.com/Skotchmaster/buyme/internal/models"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

const (
	AdminHome    = "/admin/dashboard"
	StaffHome    = "/staff/dashboard"
	CustomerHome = "/"
	LoginPath    = "/login"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// DecodeUser keeps whatever role the store holds; an unrecognised value
// simply grants no access.
func DecodeUser(doc models.UserDoc) User {
	return User{
		ID:        doc.ID,
		Name:      doc.Name,
		Email:     doc.Email,
		Role:      Role(doc.Role),
		CreatedAt: doc.CreatedAt,
	}
}

func EncodeUser(u User) models.UserDoc {
	return models.UserDoc{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// Destination is where a freshly signed in user lands.
func Destination(r Role) (string, bool) {
	switch r {
	case RoleAdmin:
		return AdminHome, true
	case RoleStaff:
		return StaffHome, true
	case RoleCustomer:
		return CustomerHome, true
	}
	return "", false
}
