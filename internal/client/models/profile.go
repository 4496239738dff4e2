package models

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Profile is the backend's record of the current user. Only ID and the
// common identity fields are interpreted; everything else is kept in Raw.
type Profile struct {
	PK        string `json:"-"` // "pk" or "id", number or string
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ID returns a stable identifier: the primary key when present, otherwise
// the username.
func (p *Profile) ID() string {
	if p == nil {
		return ""
	}
	if p.PK != "" {
		return p.PK
	}
	return p.Username
}

// UnmarshalJSON decodes the known fields and keeps the full document in Raw.
func (p *Profile) UnmarshalJSON(b []byte) error {
	type plain Profile
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Profile(v)
	p.PK = identifier(b)
	p.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// identifier reads "pk", then "id", accepting JSON numbers and non-empty
// strings.
func identifier(b []byte) string {
	for _, key := range []string{"pk", "id"} {
		r := gjson.GetBytes(b, key)
		switch r.Type {
		case gjson.Number:
			return r.Raw
		case gjson.String:
			if s := strings.TrimSpace(r.Str); s != "" {
				return s
			}
		}
	}
	return ""
}

// ProfileDetails is the editable farm profile served under profile/.
type ProfileDetails struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Address  string `json:"address"`
}
