package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/confcenter/confcenter/app/models"
)

func touch(record *models.ConfigRecord) {
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

// In-memory repositories mirroring the gorm error contract.

type fakeUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[uint]*models.User{}}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	for _, u := range r.users {
		if u.EmailHash == user.EmailHash {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmailHash(hash string) (*models.User, error) {
	for _, u := range r.users {
		if u.EmailHash == hash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

type fakeOAuthAccountRepo struct {
	nextID   uint
	accounts []*models.OAuthAccount
}

func newFakeOAuthAccountRepo() *fakeOAuthAccountRepo {
	return &fakeOAuthAccountRepo{nextID: 1}
}

func (r *fakeOAuthAccountRepo) Create(account *models.OAuthAccount) error {
	for _, a := range r.accounts {
		if a.Provider == account.Provider && a.ProviderUserID == account.ProviderUserID {
			return gorm.ErrDuplicatedKey
		}
	}
	account.ID = r.nextID
	r.nextID++
	cp := *account
	r.accounts = append(r.accounts, &cp)
	return nil
}

func (r *fakeOAuthAccountRepo) GetByProviderUserID(provider, providerUserID string) (*models.OAuthAccount, error) {
	for _, a := range r.accounts {
		if a.Provider == provider && a.ProviderUserID == providerUserID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeConfigRepo struct {
	nextID  uint
	records map[string]*models.ConfigRecord
	failing bool
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{nextID: 1, records: map[string]*models.ConfigRecord{}}
}

func (r *fakeConfigRepo) Create(record *models.ConfigRecord) error {
	if r.failing {
		return gorm.ErrInvalidDB
	}
	for _, rec := range r.records {
		if rec.ServiceName == record.ServiceName && rec.EnvName == record.EnvName {
			return gorm.ErrDuplicatedKey
		}
	}
	// mimic the BeforeCreate hook plus db timestamps
	if err := record.BeforeCreate(nil); err != nil {
		return err
	}
	record.ID = r.nextID
	r.nextID++
	touch(record)
	cp := *record
	r.records[record.UUID] = &cp
	return nil
}

func (r *fakeConfigRepo) GetByUUID(uuid string) (*models.ConfigRecord, error) {
	if rec, ok := r.records[uuid]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConfigRepo) GetByServiceEnv(serviceName, envName string) (*models.ConfigRecord, error) {
	for _, rec := range r.records {
		if rec.ServiceName == serviceName && rec.EnvName == envName {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConfigRepo) List(limit int) ([]models.ConfigRecord, error) {
	var out []models.ConfigRecord
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConfigRepo) Update(record *models.ConfigRecord) error {
	if _, ok := r.records[record.UUID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, rec := range r.records {
		if rec.UUID != record.UUID && rec.ServiceName == record.ServiceName && rec.EnvName == record.EnvName {
			return gorm.ErrDuplicatedKey
		}
	}
	touch(record)
	cp := *record
	r.records[record.UUID] = &cp
	return nil
}

func (r *fakeConfigRepo) DeleteByUUID(uuid string) error {
	if _, ok := r.records[uuid]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.records, uuid)
	return nil
}

func (r *fakeConfigRepo) DistinctEnvironments() ([]string, error) {
	return r.distinct(func(rec *models.ConfigRecord) string { return rec.EnvName })
}

func (r *fakeConfigRepo) DistinctServices() ([]string, error) {
	return r.distinct(func(rec *models.ConfigRecord) string { return rec.ServiceName })
}

func (r *fakeConfigRepo) distinct(field func(*models.ConfigRecord) string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, rec := range r.records {
		if v := field(rec); !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}
