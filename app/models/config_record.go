package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfigData is the flat key-value mapping of configuration entries,
// stored as a JSON column.
type ConfigData map[string]string

func (d ConfigData) Value() (driver.Value, error) {
	if d == nil {
		d = ConfigData{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *ConfigData) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return errors.New("unsupported type for config data column")
	}
}

// ConfigRecord holds all configuration entries for one service in one
// environment. The (service_name, env_name) pair is unique; records are
// hard-deleted so a deleted pair can be recreated.
type ConfigRecord struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	UUID        string     `gorm:"type:char(36);uniqueIndex" json:"id"`
	ServiceName string     `gorm:"type:varchar(100);uniqueIndex:idx_service_env,priority:1" json:"service_name"`
	EnvName     string     `gorm:"type:varchar(100);uniqueIndex:idx_service_env,priority:2" json:"env_name"`
	Data        ConfigData `gorm:"type:json" json:"data"`
	Version     uint       `gorm:"default:1" json:"version"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the public identifier and the initial version.
func (c *ConfigRecord) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}
