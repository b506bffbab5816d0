package session

import (
	"fmt"
)

// Profile is the password-free user record held by the session.
// Extra carries any additional fields the backend returned; a password key
// is deleted before the profile is ever constructed.
type Profile struct {
	ID    string         `json:"id"`
	Email string         `json:"email"`
	Extra map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep-enough copy for handing out of the store.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := &Profile{ID: p.ID, Email: p.Email}
	if p.Extra != nil {
		cp.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			cp.Extra[k] = v
		}
	}
	return cp
}

// ValidateProfile checks a raw backend profile and converts it to a sanitized
// Profile. It fails unless both id and email are present and non-empty.
// Whatever happens, no password field survives.
func ValidateProfile(raw map[string]any) (*Profile, error) {
	if raw == nil {
		return nil, fmt.Errorf("missing user data")
	}

	id, _ := raw["id"].(string)
	email, _ := raw["email"].(string)
	if id == "" || email == "" {
		return nil, fmt.Errorf("incomplete user data: id and email are required")
	}

	p := &Profile{ID: id, Email: email}
	for k, v := range raw {
		switch k {
		case "id", "email", "password":
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p, nil
}
