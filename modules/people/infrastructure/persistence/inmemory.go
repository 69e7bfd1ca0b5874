package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/identity"
	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
)

// InMemoryStore backs all three repositories with maps. It exists so the
// merge engine can be exercised without Postgres; the coalesce semantics are
// the domain-level Patch.Apply, mirroring the SQL COALESCE upsert.
type InMemoryStore struct {
	mu         sync.Mutex
	identities map[uuid.UUID]identity.Identity
	profiles   map[uuid.UUID]profile.Profile
	employees  map[uuid.UUID]employee.Employee
	roles      map[uuid.UUID]int

	// FailUpsertFor triggers a write failure for one identity, letting tests
	// prove batch isolation and the partial-write policy.
	FailUpsertFor     map[string]error
	FailLegacySyncFor map[string]error

	deletions []Deletion
}

// Deletion records one delete call against the store, in call order, so
// tests can assert both the sequence and the row counts of a full removal.
type Deletion struct {
	Table string
	Rows  int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		identities:        make(map[uuid.UUID]identity.Identity),
		profiles:          make(map[uuid.UUID]profile.Profile),
		employees:         make(map[uuid.UUID]employee.Employee),
		roles:             make(map[uuid.UUID]int),
		FailUpsertFor:     make(map[string]error),
		FailLegacySyncFor: make(map[string]error),
	}
}

func (s *InMemoryStore) Identities() identity.Repository { return &memIdentityRepo{store: s} }
func (s *InMemoryStore) Profiles() profile.Repository    { return &memProfileRepo{store: s} }
func (s *InMemoryStore) Employees() employee.Repository  { return &memEmployeeRepo{store: s} }

// AssignRole registers a role-assignment row for delete-ordering tests.
func (s *InMemoryStore) AssignRole(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[id]++
}

func (s *InMemoryStore) ProfileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

func (s *InMemoryStore) Deletions() []Deletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Deletion, len(s.deletions))
	copy(out, s.deletions)
	return out
}

func (s *InMemoryStore) recordDeletion(table string, rows int64) {
	s.deletions = append(s.deletions, Deletion{Table: table, Rows: rows})
}

func (s *InMemoryStore) EmployeeByProfile(id uuid.UUID) (employee.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	return e, ok
}

type memIdentityRepo struct {
	store *InMemoryStore
}

func (r *memIdentityRepo) GetByID(_ context.Context, id uuid.UUID) (identity.Identity, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ident, ok := r.store.identities[id]
	if !ok {
		return identity.Identity{}, ErrIdentityNotFound
	}
	return ident, nil
}

func (r *memIdentityRepo) GetByEmail(_ context.Context, email string) (identity.Identity, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, ident := range r.store.identities {
		if ident.Email() == email {
			return ident, nil
		}
	}
	return identity.Identity{}, ErrIdentityNotFound
}

func (r *memIdentityRepo) Create(_ context.Context, ident identity.Identity) (identity.Identity, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := identity.Hydrate(ident.ID(), ident.Email(), ident.FullName(), time.Now(), time.Now())
	r.store.identities[ident.ID()] = stored
	return stored, nil
}

func (r *memIdentityRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	if _, ok := r.store.identities[id]; ok {
		delete(r.store.identities, id)
		count = 1
	}
	r.store.recordDeletion("identities", count)
	return count, nil
}

func (r *memIdentityRepo) DeleteRoleAssignments(_ context.Context, id uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := int64(r.store.roles[id])
	delete(r.store.roles, id)
	r.store.recordDeletion("role_assignments", count)
	return count, nil
}

type memProfileRepo struct {
	store *InMemoryStore
}

func (r *memProfileRepo) GetByIdentity(_ context.Context, identityID uuid.UUID) (profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.profiles[identityID]
	if !ok {
		return profile.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (r *memProfileRepo) Upsert(_ context.Context, identityID uuid.UUID, patch *profile.Patch) (profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if patch.Email() != "" {
		if err := r.store.FailUpsertFor[patch.Email()]; err != nil {
			return profile.Profile{}, err
		}
	}

	existing, ok := r.store.profiles[identityID]
	if !ok {
		existing = profile.Profile{IdentityID: identityID, CreatedAt: time.Now()}
	}
	merged := patch.Apply(existing)
	merged.IdentityID = identityID
	merged.UpdatedAt = time.Now()
	r.store.profiles[identityID] = merged
	return merged, nil
}

func (r *memProfileRepo) Delete(_ context.Context, identityID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	if _, ok := r.store.profiles[identityID]; ok {
		delete(r.store.profiles, identityID)
		count = 1
	}
	r.store.recordDeletion("profiles", count)
	return count, nil
}

type memEmployeeRepo struct {
	store *InMemoryStore
}

func (r *memEmployeeRepo) GetByProfile(_ context.Context, profileID uuid.UUID) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.employees[profileID]
	if !ok {
		return employee.Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memEmployeeRepo) UpsertCoalesce(_ context.Context, profileID uuid.UUID, patch *employee.Patch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if patch.PersonalEmail != nil {
		if err := r.store.FailLegacySyncFor[*patch.PersonalEmail]; err != nil {
			return err
		}
	}

	e := r.store.employees[profileID]
	e.ProfileID = profileID
	if patch.FullName != nil {
		e.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		e.Phone = *patch.Phone
	}
	if patch.Designation != nil {
		e.Designation = *patch.Designation
	}
	if patch.Department != nil {
		e.Department = *patch.Department
	}
	if patch.PersonalEmail != nil {
		e.PersonalEmail = *patch.PersonalEmail
	}
	if patch.EmergencyContactName != nil {
		e.EmergencyContactName = *patch.EmergencyContactName
	}
	if patch.EmergencyContactPhone != nil {
		e.EmergencyContactPhone = *patch.EmergencyContactPhone
	}
	e.UpdatedAt = time.Now()
	r.store.employees[profileID] = e
	return nil
}

func (r *memEmployeeRepo) Replace(_ context.Context, record employee.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	record.UpdatedAt = time.Now()
	r.store.employees[record.ProfileID] = record
	return nil
}

func (r *memEmployeeRepo) Delete(_ context.Context, profileID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	if _, ok := r.store.employees[profileID]; ok {
		delete(r.store.employees, profileID)
		count = 1
	}
	r.store.recordDeletion("legacy_employees", count)
	return count, nil
}
