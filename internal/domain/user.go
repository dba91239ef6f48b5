package domain

import "strings"

// Identity is what the identity provider knows about the caller.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
}

// Profile is the stored user record. IsAdmin is never persisted; it is
// derived from the authorization policy on every request.
type Profile struct {
	UID               string `json:"uid"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	IsAdmin           bool   `json:"is_admin"`
	PaymentCustomerID string `json:"payment_customer_id,omitempty"`
}

// ProfileUpdate carries the fields a user may change. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Address           *string `json:"address,omitempty"`
	PaymentCustomerID *string `json:"-"`
}

func (p *Profile) IsComplete() bool {
	return strings.TrimSpace(p.Phone) != "" && strings.TrimSpace(p.Address) != ""
}

func (p *Profile) Renter() Renter {
	return Renter{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Address:   p.Address,
	}
}

// NewProfileFromIdentity builds the first profile of a freshly authenticated user.
func NewProfileFromIdentity(id Identity) *Profile {
	first, last := splitDisplayName(id.DisplayName)
	return &Profile{
		UID:       id.UID,
		FirstName: first,
		LastName:  last,
		Email:     id.Email,
		Phone:     id.Phone,
	}
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
