package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/confcenter/confcenter/app/models"
	"github.com/confcenter/confcenter/app/repository"
	"github.com/confcenter/confcenter/internal/pkg/apperrors"
)

const (
	// MaxConfigsLimit bounds list results
	MaxConfigsLimit = 1000
	// MaxConfigKeys bounds the number of entries in one record
	MaxConfigKeys = 100
	// MaxNameLength bounds service and environment names
	MaxNameLength = 100

	maxKeyLength   = 128
	maxValueLength = 4096

	cacheTTL       = time.Minute
	cacheKeyPrefix = "config:uuid:"
)

// lowercase alphanumeric with inner dots, dashes, underscores
var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9._-]*[a-z0-9])?$`)

// ConfigService implements the configuration CRUD semantics. The cache
// client is optional; a nil client disables the read cache.
type ConfigService struct {
	configs repository.ConfigRepository
	cache   *redis.Client
}

func NewConfigService(configs repository.ConfigRepository, cache *redis.Client) *ConfigService {
	return &ConfigService{configs: configs, cache: cache}
}

// NormalizeName lowercases and trims a service or environment name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validateName(kind, name string) (string, error) {
	name = NormalizeName(name)
	if name == "" {
		return "", apperrors.Validationf("%s name must not be empty", kind)
	}
	if len(name) > MaxNameLength {
		return "", apperrors.Validationf("%s name exceeds %d characters", kind, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return "", apperrors.Validationf("%s name '%s' contains invalid characters", kind, name)
	}
	return name, nil
}

func validateData(data models.ConfigData) error {
	if len(data) == 0 {
		return apperrors.Validationf("config data must not be empty")
	}
	if len(data) > MaxConfigKeys {
		return apperrors.Validationf("config data exceeds %d entries", MaxConfigKeys)
	}
	for k, v := range data {
		if strings.TrimSpace(k) == "" {
			return apperrors.Validationf("config keys must not be empty")
		}
		if len(k) > maxKeyLength {
			return apperrors.Validationf("config key '%s' exceeds %d characters", k, maxKeyLength)
		}
		if len(v) > maxValueLength {
			return apperrors.Validationf("config value for '%s' exceeds %d characters", k, maxValueLength)
		}
	}
	return nil
}

func parseConfigID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperrors.Validationf("invalid configuration data: malformed id '%s'", id)
	}
	return parsed.String(), nil
}

// Create validates and stores a new (service, environment) record at
// version 1. Validation happens before any store write.
func (s *ConfigService) Create(serviceName, envName string, data models.ConfigData) (*models.ConfigRecord, error) {
	serviceName, err := validateName("service", serviceName)
	if err != nil {
		return nil, err
	}
	envName, err = validateName("environment", envName)
	if err != nil {
		return nil, err
	}
	if err := validateData(data); err != nil {
		return nil, err
	}

	// Pre-check gives a friendly conflict; the composite unique index is
	// what actually guarantees uniqueness under concurrent creates.
	if _, err := s.configs.GetByServiceEnv(serviceName, envName); err == nil {
		return nil, apperrors.Conflictf("configuration for '%s' already exists in environment '%s'", serviceName, envName)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Connectivity(err)
	}

	record := &models.ConfigRecord{
		ServiceName: serviceName,
		EnvName:     envName,
		Data:        data,
	}
	if err := s.configs.Create(record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("configuration for '%s' already exists in environment '%s'", serviceName, envName)
		}
		return nil, apperrors.Connectivity(err)
	}

	return record, nil
}

// GetByID resolves a config record by its public identifier. A
// syntactically malformed id is a validation failure, distinct from an
// absent record.
func (s *ConfigService) GetByID(id string) (*models.ConfigRecord, error) {
	id, err := parseConfigID(id)
	if err != nil {
		return nil, err
	}

	if record := s.cacheGet(id); record != nil {
		return record, nil
	}

	record, err := s.configs.GetByUUID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("configuration with id '%s' not found", id)
		}
		return nil, apperrors.Connectivity(err)
	}

	s.cacheSet(record)
	return record, nil
}

// List returns config records, clamped to MaxConfigsLimit.
func (s *ConfigService) List(limit int) ([]models.ConfigRecord, error) {
	if limit <= 0 || limit > MaxConfigsLimit {
		limit = MaxConfigsLimit
	}

	records, err := s.configs.List(limit)
	if err != nil {
		return nil, apperrors.Connectivity(err)
	}
	return records, nil
}

// Search finds the record for an exact (service, environment) pair.
func (s *ConfigService) Search(serviceName, envName string) (*models.ConfigRecord, error) {
	serviceName, err := validateName("service", serviceName)
	if err != nil {
		return nil, err
	}
	envName, err = validateName("environment", envName)
	if err != nil {
		return nil, err
	}

	record, err := s.configs.GetByServiceEnv(serviceName, envName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("no configuration found for service '%s' in environment '%s'", serviceName, envName)
		}
		return nil, apperrors.Connectivity(err)
	}
	return record, nil
}

// Update replaces the name fields and the whole data map and bumps the
// version by one.
func (s *ConfigService) Update(id, serviceName, envName string, data models.ConfigData) (*models.ConfigRecord, error) {
	id, err := parseConfigID(id)
	if err != nil {
		return nil, err
	}
	serviceName, err = validateName("service", serviceName)
	if err != nil {
		return nil, err
	}
	envName, err = validateName("environment", envName)
	if err != nil {
		return nil, err
	}
	if err := validateData(data); err != nil {
		return nil, err
	}

	record, err := s.configs.GetByUUID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("configuration with id '%s' not found", id)
		}
		return nil, apperrors.Connectivity(err)
	}

	record.ServiceName = serviceName
	record.EnvName = envName
	record.Data = data
	record.Version++

	if err := s.configs.Update(record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("configuration for '%s' already exists in environment '%s'", serviceName, envName)
		}
		return nil, apperrors.Connectivity(err)
	}

	s.cacheInvalidate(id)
	return record, nil
}

// Delete removes a record permanently. A second delete of the same id
// fails with not-found; this is intentionally not idempotent.
func (s *ConfigService) Delete(id string) error {
	id, err := parseConfigID(id)
	if err != nil {
		return err
	}

	if err := s.configs.DeleteByUUID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("configuration with id '%s' not found", id)
		}
		return apperrors.Connectivity(err)
	}

	s.cacheInvalidate(id)
	return nil
}

// ListEnvironments returns the distinct environment names in use.
func (s *ConfigService) ListEnvironments() ([]string, error) {
	envs, err := s.configs.DistinctEnvironments()
	if err != nil {
		return nil, apperrors.Connectivity(err)
	}
	return envs, nil
}

// ListServices returns the distinct service names in use.
func (s *ConfigService) ListServices() ([]string, error) {
	services, err := s.configs.DistinctServices()
	if err != nil {
		return nil, apperrors.Connectivity(err)
	}
	return services, nil
}

// cache helpers: failures only cost the cache, never the request

func (s *ConfigService) cacheGet(id string) *models.ConfigRecord {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(context.Background(), cacheKeyPrefix+id).Result()
	if err != nil {
		return nil
	}
	var record models.ConfigRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil
	}
	return &record
}

func (s *ConfigService) cacheSet(record *models.ConfigRecord) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := s.cache.Set(context.Background(), cacheKeyPrefix+record.UUID, raw, cacheTTL).Err(); err != nil {
		log.Printf("config cache set failed for %s: %v", record.UUID, err)
	}
}

func (s *ConfigService) cacheInvalidate(id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(context.Background(), cacheKeyPrefix+id).Err(); err != nil {
		log.Printf("config cache invalidate failed for %s: %v", id, err)
	}
}
