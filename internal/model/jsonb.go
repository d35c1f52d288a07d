package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonbValue marshals a section payload for a JSONB column.
func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

// jsonbScan unmarshals a JSONB column into the given destination.
func jsonbScan(dst interface{}, value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB value of type %T", value)
	}

	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dst)
}
