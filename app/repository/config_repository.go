package repository

import (
	"gorm.io/gorm"

	"github.com/confcenter/confcenter/app/models"
)

// configRepository implements the ConfigRepository interface
type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new config repository instance
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

// Create inserts a new config record. A duplicate (service_name, env_name)
// pair fails with gorm.ErrDuplicatedKey through the composite unique index.
func (r *configRepository) Create(record *models.ConfigRecord) error {
	return r.db.Create(record).Error
}

// GetByUUID retrieves a config record by its public identifier
func (r *configRepository) GetByUUID(uuid string) (*models.ConfigRecord, error) {
	var record models.ConfigRecord
	err := r.db.Where("uuid = ?", uuid).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByServiceEnv retrieves the record for an exact (service, environment) pair
func (r *configRepository) GetByServiceEnv(serviceName, envName string) (*models.ConfigRecord, error) {
	var record models.ConfigRecord
	err := r.db.Where("service_name = ? AND env_name = ?", serviceName, envName).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns up to limit config records ordered by creation time
func (r *configRepository) List(limit int) ([]models.ConfigRecord, error) {
	var records []models.ConfigRecord
	err := r.db.Order("created_at ASC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Update persists a full record replacement
func (r *configRepository) Update(record *models.ConfigRecord) error {
	return r.db.Save(record).Error
}

// DeleteByUUID removes a record permanently; gorm.ErrRecordNotFound when
// the identifier does not exist.
func (r *configRepository) DeleteByUUID(uuid string) error {
	res := r.db.Where("uuid = ?", uuid).Delete(&models.ConfigRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DistinctEnvironments returns the distinct environment names across all records
func (r *configRepository) DistinctEnvironments() ([]string, error) {
	var envs []string
	err := r.db.Model(&models.ConfigRecord{}).Distinct().Order("env_name ASC").Pluck("env_name", &envs).Error
	if err != nil {
		return nil, err
	}
	return envs, nil
}

// DistinctServices returns the distinct service names across all records
func (r *configRepository) DistinctServices() ([]string, error) {
	var services []string
	err := r.db.Model(&models.ConfigRecord{}).Distinct().Order("service_name ASC").Pluck("service_name", &services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
