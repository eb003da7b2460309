package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes is the open key/value map of a variant (e.g. color, size).
// Keys are user defined; it is stored as a JSONB object.
type Attributes map[string]string

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Attributes) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = Attributes{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("attributes: unsupported scan type %T", value)
	}

	out := Attributes{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("attributes: %w", err)
	}
	*a = out
	return nil
}

// GormDataType keeps AutoMigrate on jsonb
func (Attributes) GormDataType() string {
	return "jsonb"
}
