package session

import (
	"encoding/json"
	"strconv"

	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/pkg/errors"
)

// loginResponse covers both shapes the authentication endpoint is known to
// answer with: {"userId": ...} and {"id": ...}. Ids may come as numbers or
// numeric strings.
type loginResponse struct {
	UserID flexID     `json:"userId"`
	ID     flexID     `json:"id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(n)
	return nil
}

// ParseIdentity decodes a login response. userId wins over id; when neither
// is present the identity is returned unresolved (ID == 0).
func ParseIdentity(data []byte) (model.Identity, error) {
	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return model.Identity{}, errors.Wrap(err, "decode login response")
	}
	if !resp.Role.Valid() {
		return model.Identity{}, errors.Errorf("unknown role %q", resp.Role)
	}
	id := int64(resp.UserID)
	if id == 0 {
		id = int64(resp.ID)
	}
	return model.Identity{ID: id, Email: resp.Email, Role: resp.Role}, nil
}
