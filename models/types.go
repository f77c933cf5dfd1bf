package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONMap is a helper type for jsonb columns holding loose key/value data.
type JSONMap map[string]interface{}

// Scan implements the sql.Scanner interface
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		*m = make(JSONMap)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(map[string]interface{}))
	}
	return json.Marshal(m)
}

// GormDataType defines the data type for GORM
func (JSONMap) GormDataType() string {
	return "jsonb"
}

