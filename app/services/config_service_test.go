package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confcenter/confcenter/app/models"
	"github.com/confcenter/confcenter/internal/pkg/apperrors"
)

func newConfigService() (*ConfigService, *fakeConfigRepo) {
	repo := newFakeConfigRepo()
	return NewConfigService(repo, nil), repo
}

func TestCreateAndGetByID(t *testing.T) {
	svc, _ := newConfigService()

	created, err := svc.Create("user-service", "production", models.ConfigData{"DB_HOST": "db1"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), created.Version)
	require.NotEmpty(t, created.UUID)

	got, err := svc.GetByID(created.UUID)
	require.NoError(t, err)
	assert.Equal(t, "user-service", got.ServiceName)
	assert.Equal(t, "production", got.EnvName)
	assert.Equal(t, models.ConfigData{"DB_HOST": "db1"}, got.Data)
	assert.Equal(t, uint(1), got.Version)
}

func TestCreateNormalizesNames(t *testing.T) {
	svc, _ := newConfigService()

	created, err := svc.Create("  User-Service ", "PRODUCTION", models.ConfigData{"K": "V"})
	require.NoError(t, err)
	assert.Equal(t, "user-service", created.ServiceName)
	assert.Equal(t, "production", created.EnvName)
}

func TestCreateDuplicatePairConflicts(t *testing.T) {
	svc, _ := newConfigService()

	_, err := svc.Create("svc1", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)

	// conflict regardless of data contents
	_, err = svc.Create("svc1", "prod", models.ConfigData{"OTHER": "DATA"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	// a racing create that slips past the pre-check gets the same error
	// from the unique index
	repo2 := newFakeConfigRepo()
	svc2 := NewConfigService(repo2, nil)
	_, err = svc2.Create("svc1", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)
	err = repo2.Create(&models.ConfigRecord{ServiceName: "svc1", EnvName: "prod", Data: models.ConfigData{"K": "V"}})
	assert.Error(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newConfigService()

	cases := []struct {
		name    string
		service string
		env     string
		data    models.ConfigData
	}{
		{"empty service", "", "prod", models.ConfigData{"K": "V"}},
		{"empty env", "svc", "", models.ConfigData{"K": "V"}},
		{"bad charset", "svc!", "prod", models.ConfigData{"K": "V"}},
		{"leading dash", "-svc", "prod", models.ConfigData{"K": "V"}},
		{"overlong name", string(make([]byte, MaxNameLength+1)), "prod", models.ConfigData{"K": "V"}},
		{"empty data", "svc", "prod", models.ConfigData{}},
		{"nil data", "svc", "prod", nil},
		{"empty key", "svc", "prod", models.ConfigData{" ": "V"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.service, tc.env, tc.data)
			assert.True(t, apperrors.Is(err, apperrors.KindValidation), "got %v", err)
		})
	}
}

func TestCreateTooManyKeys(t *testing.T) {
	svc, _ := newConfigService()

	data := models.ConfigData{}
	for i := 0; i <= MaxConfigKeys; i++ {
		data[fmt.Sprintf("key-%d", i)] = "v"
	}

	_, err := svc.Create("svc", "prod", data)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestGetByIDMalformedAndMissing(t *testing.T) {
	svc, _ := newConfigService()

	_, err := svc.GetByID("not-a-uuid")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.GetByID("123e4567-e89b-12d3-a456-426614174000")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestSearch(t *testing.T) {
	svc, _ := newConfigService()

	created, err := svc.Create("svc1", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)

	found, err := svc.Search("svc1", "prod")
	require.NoError(t, err)
	assert.Equal(t, created.UUID, found.UUID)

	_, err = svc.Search("svc1", "staging")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestUpdateReplacesAndBumpsVersion(t *testing.T) {
	svc, _ := newConfigService()

	created, err := svc.Create("svc1", "prod", models.ConfigData{"K": "V", "GONE": "1"})
	require.NoError(t, err)
	prevUpdated := created.UpdatedAt

	updated, err := svc.Update(created.UUID, "svc1", "prod", models.ConfigData{"K": "V2"})
	require.NoError(t, err)

	assert.Equal(t, uint(2), updated.Version)
	assert.Equal(t, models.ConfigData{"K": "V2"}, updated.Data)
	assert.NotContains(t, updated.Data, "GONE")
	assert.False(t, updated.UpdatedAt.Before(prevUpdated))

	again, err := svc.Update(created.UUID, "svc1", "prod", models.ConfigData{"K": "V3"})
	require.NoError(t, err)
	assert.Equal(t, uint(3), again.Version)
}

func TestUpdateMissingAndConflict(t *testing.T) {
	svc, _ := newConfigService()

	_, err := svc.Update("123e4567-e89b-12d3-a456-426614174000", "svc", "prod", models.ConfigData{"K": "V"})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	a, err := svc.Create("svc-a", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)
	_, err = svc.Create("svc-b", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)

	// renaming a onto b's pair is a conflict
	_, err = svc.Update(a.UUID, "svc-b", "prod", models.ConfigData{"K": "V"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestDeleteIsNotIdempotent(t *testing.T) {
	svc, _ := newConfigService()

	created, err := svc.Create("svc1", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.UUID))

	_, err = svc.GetByID(created.UUID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.Delete(created.UUID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDeleteFreesPairForRecreation(t *testing.T) {
	svc, _ := newConfigService()

	created, err := svc.Create("svc1", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(created.UUID))

	recreated, err := svc.Create("svc1", "prod", models.ConfigData{"K": "V2"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), recreated.Version)
	assert.NotEqual(t, created.UUID, recreated.UUID)
}

func TestListClampsLimit(t *testing.T) {
	svc, _ := newConfigService()

	for _, env := range []string{"dev", "staging", "prod"} {
		_, err := svc.Create("svc1", env, models.ConfigData{"K": "V"})
		require.NoError(t, err)
	}

	records, err := svc.List(0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = svc.List(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = svc.List(MaxConfigsLimit + 500)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestListEnvironmentsAndServices(t *testing.T) {
	svc, _ := newConfigService()

	_, err := svc.Create("svc1", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)
	_, err = svc.Create("svc1", "staging", models.ConfigData{"K": "V"})
	require.NoError(t, err)
	_, err = svc.Create("svc2", "prod", models.ConfigData{"K": "V"})
	require.NoError(t, err)

	envs, err := svc.ListEnvironments()
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "staging"}, envs)

	services, err := svc.ListServices()
	require.NoError(t, err)
	assert.Equal(t, []string{"svc1", "svc2"}, services)
}
