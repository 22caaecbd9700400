package user

import "time"

// Account types. IsAdmin is tracked separately from UserType: the two signals
// coexist in the stored record and in session tokens, and authorization
// checks rely on IsAdmin.
const (
	TypeIndividual = "individual"
	TypeCorporate  = "corporate"
	TypeAdmin      = "admin"
)

// User is a marketplace account.
type User struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	UserType            string    `json:"userType"`
	IsAdmin             bool      `json:"isAdmin"`
	IsActive            bool      `json:"isActive"`
	ParticipationRights int       `json:"participationRights"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ValidType reports whether t is one of the known account types.
func ValidType(t string) bool {
	switch t {
	case TypeIndividual, TypeCorporate, TypeAdmin:
		return true
	}
	return false
}
