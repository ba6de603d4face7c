package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserRef is a reference to a user that the API materializes either as a
// bare id string or as the embedded user record.
type UserRef struct {
	ID   string
	User *User
}

// RefTo builds an embedded reference.
func RefTo(u User) UserRef {
	return UserRef{ID: u.ID, User: &u}
}

// RefID builds a bare id reference.
func RefID(id string) UserRef {
	return UserRef{ID: id}
}

// Name returns the referenced user's full name, or the id when only the id is known.
func (r UserRef) Name() string {
	if r.User != nil {
		return r.User.FullName()
	}
	return r.ID
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	return json.Marshal(r.ID)
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = UserRef{}
		return nil
	}
	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = UserRef{ID: id}
		return nil
	case '{':
		var u struct {
			User
			MongoID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		if u.ID == "" {
			u.ID = u.MongoID
		}
		*r = RefTo(u.User)
		return nil
	default:
		return fmt.Errorf("user reference: unexpected JSON %s", data)
	}
}

// The API emits `_id`; older payloads carry `id`. Both are accepted.

func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Category(aux.plain)
	if c.ID == "" {
		c.ID = aux.AltID
	}
	return nil
}

func (r *PurchaseRequest) UnmarshalJSON(data []byte) error {
	type plain PurchaseRequest
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = PurchaseRequest(aux.plain)
	if r.ID == "" {
		r.ID = aux.AltID
	}
	return nil
}
