package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Definition maps a part of speech ("Noun", "Verb", ...) to its senses.
// It is stored as JSON text exactly as the dictionary produced it.
type Definition map[string][]string

func (d Definition) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *Definition) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = Definition{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Definition", src)
	}
	out := Definition{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode definition: %v", err)
	}
	*d = out
	return nil
}
