package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Ref points at another node or a user by id. Clients send either the bare id
// or the referenced object, so both shapes decode; it always encodes as the id.
type Ref struct {
	ID int64
}

func RefTo(id *int64) *Ref {
	if id == nil {
		return nil
	}
	return &Ref{ID: *id}
}

// Value returns the referenced id, treating a nil or zero ref as absent.
func (r *Ref) Value() (int64, bool) {
	if r == nil || r.ID <= 0 {
		return 0, false
	}
	return r.ID, true
}

// Ptr returns the referenced id as a pointer, nil when absent.
func (r *Ref) Ptr() *int64 {
	id, ok := r.Value()
	if !ok {
		return nil
	}
	return &id
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(r.ID, 10)), nil
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.ID = 0
		return nil
	}

	if data[0] == '{' {
		var obj struct {
			ID *int64 `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.ID != nil {
			r.ID = *obj.ID
		}
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("invalid reference %s: %w", data, err)
	}
	r.ID = id
	return nil
}
