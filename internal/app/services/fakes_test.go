package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/repositories"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/events"
)

// memoryStore is an AccountStore with the same unique keys as the schema.
// WithinTransaction snapshots the maps and restores them when fn fails.
type memoryStore struct {
	mu           sync.Mutex
	nextID       int64
	nextCoordID  int64
	accounts     map[int64]models.Account
	students     map[int64]models.StudentProfile
	coordinators map[int64]models.CoordinatorProfile

	// staleStudentIDCheck makes StudentIDExists miss, as when a concurrent
	// registration commits between the check and the insert.
	staleStudentIDCheck bool
	commits             int
	rollbacks           int
}

var (
	_ repositories.AccountStore      = (*memoryStore)(nil)
	_ repositories.AccountTransactor = (*memoryStore)(nil)
)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:     map[int64]models.Account{},
		students:     map[int64]models.StudentProfile{},
		coordinators: map[int64]models.CoordinatorProfile{},
	}
}

type snapshot struct {
	nextID, nextCoordID int64
	accounts            map[int64]models.Account
	students            map[int64]models.StudentProfile
	coordinators        map[int64]models.CoordinatorProfile
}

func (s *memoryStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		nextID:       s.nextID,
		nextCoordID:  s.nextCoordID,
		accounts:     make(map[int64]models.Account, len(s.accounts)),
		students:     make(map[int64]models.StudentProfile, len(s.students)),
		coordinators: make(map[int64]models.CoordinatorProfile, len(s.coordinators)),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.students {
		snap.students[k] = v
	}
	for k, v := range s.coordinators {
		snap.coordinators[k] = v
	}
	return snap
}

func (s *memoryStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.nextCoordID = snap.nextCoordID
	s.accounts = snap.accounts
	s.students = snap.students
	s.coordinators = snap.coordinators
}

func (s *memoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, store repositories.AccountStore) error) error {
	snap := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.restore(snap)
		s.rollbacks++
		return err
	}
	s.commits++
	return nil
}

func (s *memoryStore) CreateAccount(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Username == a.Username {
			return apperrors.ErrUsernameTaken
		}
		if existing.Email == strings.ToLower(a.Email) {
			return apperrors.ErrEmailTaken
		}
	}
	s.nextID++
	a.ID = s.nextID
	a.Email = strings.ToLower(a.Email)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	s.accounts[a.ID] = *a
	return nil
}

func (s *memoryStore) GetAccountByID(_ context.Context, id int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &a, nil
}

func (s *memoryStore) GetAccountByIdentifier(_ context.Context, identifier string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == identifier || a.Email == strings.ToLower(identifier) {
			found := a
			return &found, nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

func (s *memoryStore) IdentityExists(_ context.Context, username, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == username || a.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	a.LastLoginAt = &at
	s.accounts[id] = a
	return nil
}

func (s *memoryStore) UpdateEmail(_ context.Context, id int64, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for otherID, other := range s.accounts {
		if otherID != id && other.Email == email {
			return apperrors.ErrEmailTaken
		}
	}
	a, ok := s.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	a.Email = email
	s.accounts[id] = a
	return nil
}

func (s *memoryStore) SetActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	a.IsActive = active
	s.accounts[id] = a
	return nil
}

func page[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[offset:end]
}

func (s *memoryStore) ListAccounts(_ context.Context, f models.AccountFilter, offset, limit uint64) ([]*models.Account, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.Account
	for _, a := range s.accounts {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.IsActive != nil && a.IsActive != *f.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(a.Username, f.Search) && !strings.Contains(a.Email, f.Search) {
			continue
		}
		found := a
		matched = append(matched, &found)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (s *memoryStore) StudentIDExists(_ context.Context, studentID string) (bool, error) {
	if s.staleStudentIDCheck {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.students {
		if p.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) CreateStudentProfile(_ context.Context, p *models.StudentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[p.AccountID]; !ok {
		return fmt.Errorf("foreign key violation on account %d", p.AccountID)
	}
	if _, ok := s.students[p.AccountID]; ok {
		return fmt.Errorf("duplicate student_profiles_pkey: %w", apperrors.ErrConflict)
	}
	for _, existing := range s.students {
		if existing.StudentID == p.StudentID {
			return apperrors.ErrStudentIDTaken
		}
	}
	if p.PlacementStatus == "" {
		p.PlacementStatus = models.PlacementNotPlaced
	}
	s.students[p.AccountID] = *p
	return nil
}

func (s *memoryStore) GetStudentProfile(_ context.Context, accountID int64) (*models.StudentProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.students[accountID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	return &p, nil
}

func (s *memoryStore) UpdateStudentProfile(_ context.Context, p *models.StudentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[p.AccountID]; !ok {
		return apperrors.ErrProfileNotFound
	}
	s.students[p.AccountID] = *p
	return nil
}

func (s *memoryStore) record(p models.StudentProfile) *models.StudentRecord {
	a := s.accounts[p.AccountID]
	return &models.StudentRecord{StudentProfile: p, Username: a.Username, Email: a.Email}
}

func (s *memoryStore) ListStudents(_ context.Context, f models.StudentFilter, offset, limit uint64) ([]*models.StudentRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.StudentRecord
	for _, p := range s.students {
		if f.AccountID > 0 && p.AccountID != f.AccountID {
			continue
		}
		if f.Branch != "" && p.Branch != f.Branch {
			continue
		}
		if f.PlacementStatus != "" && p.PlacementStatus != f.PlacementStatus {
			continue
		}
		if f.MinCGPA != nil && (p.CGPA == nil || *p.CGPA < *f.MinCGPA) {
			continue
		}
		if f.GraduationYear != nil && p.GraduationYear != *f.GraduationYear {
			continue
		}
		matched = append(matched, s.record(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StudentID < matched[j].StudentID })
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (s *memoryStore) GetStudentByStudentID(_ context.Context, studentID string) (*models.StudentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.students {
		if p.StudentID == studentID {
			return s.record(p), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (s *memoryStore) CreateCoordinatorProfile(_ context.Context, p *models.CoordinatorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coordinators[p.AccountID]; ok {
		return fmt.Errorf("duplicate coordinator_profiles_account_id_key: %w", apperrors.ErrConflict)
	}
	s.nextCoordID++
	p.ID = s.nextCoordID
	s.coordinators[p.AccountID] = *p
	return nil
}

func (s *memoryStore) GetCoordinatorProfile(_ context.Context, accountID int64) (*models.CoordinatorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.coordinators[accountID]
	if !ok {
		return nil, apperrors.ErrCoordinatorNotFound
	}
	return &p, nil
}

func (s *memoryStore) UpdateCoordinatorProfile(_ context.Context, p *models.CoordinatorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coordinators[p.AccountID]; !ok {
		return apperrors.ErrCoordinatorNotFound
	}
	s.coordinators[p.AccountID] = *p
	return nil
}

// memoryUpdates is a CompanyUpdateStore backed by a map. It joins the
// coordinator name and department from the account store.
type memoryUpdates struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]models.CompanyUpdate
	coordBy func(coordinatorID int64) (models.CoordinatorProfile, bool)
}

var _ repositories.CompanyUpdateStore = (*memoryUpdates)(nil)

func newMemoryUpdates(store *memoryStore) *memoryUpdates {
	return &memoryUpdates{
		rows: map[int64]models.CompanyUpdate{},
		coordBy: func(id int64) (models.CoordinatorProfile, bool) {
			store.mu.Lock()
			defer store.mu.Unlock()
			for _, c := range store.coordinators {
				if c.ID == id {
					return c, true
				}
			}
			return models.CoordinatorProfile{}, false
		},
	}
}

func (m *memoryUpdates) join(u models.CompanyUpdate) *models.CompanyUpdate {
	if c, ok := m.coordBy(u.CoordinatorID); ok {
		u.CoordinatorName = c.Name
		u.Department = c.Department
	}
	return &u
}

func (m *memoryUpdates) Create(_ context.Context, u *models.CompanyUpdate) error {
	if _, ok := m.coordBy(u.CoordinatorID); !ok {
		return apperrors.ErrCoordinatorNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	u.UpdatedAt = u.CreatedAt
	m.rows[u.ID] = *u
	return nil
}

func (m *memoryUpdates) GetByID(_ context.Context, id int64) (*models.CompanyUpdate, error) {
	m.mu.Lock()
	u, ok := m.rows[id]
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrCompanyUpdateNotFound
	}
	return m.join(u), nil
}

func (m *memoryUpdates) List(_ context.Context, f models.CompanyUpdateFilter, offset, limit uint64) ([]*models.CompanyUpdate, int64, error) {
	m.mu.Lock()
	var rows []models.CompanyUpdate
	for _, u := range m.rows {
		if f.CoordinatorID > 0 && u.CoordinatorID != f.CoordinatorID {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, st := range f.Statuses {
				if u.Status == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		rows = append(rows, u)
	}
	m.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	joined := make([]*models.CompanyUpdate, 0, len(rows))
	for _, u := range rows {
		joined = append(joined, m.join(u))
	}
	return page(joined, offset, limit), int64(len(joined)), nil
}

func hasStatus(statuses []models.UpdateStatus, s models.UpdateStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (m *memoryUpdates) UpdateContent(_ context.Context, u *models.CompanyUpdate, allowed []models.UpdateStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.rows[u.ID]
	if !ok || !hasStatus(allowed, current.Status) {
		return apperrors.ErrCompanyUpdateNotFound
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memoryUpdates) UpdateStatus(_ context.Context, id int64, from, to models.UpdateStatus, adminNotes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok || u.Status != from {
		return apperrors.ErrCompanyUpdateNotFound
	}
	u.Status = to
	if adminNotes != nil {
		u.AdminNotes = adminNotes
	}
	m.rows[id] = u
	return nil
}

func (m *memoryUpdates) Delete(_ context.Context, id int64, allowed []models.UpdateStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok || !hasStatus(allowed, u.Status) {
		return apperrors.ErrCompanyUpdateNotFound
	}
	delete(m.rows, id)
	return nil
}

// setStatus changes a stored row behind the service's back.
func (m *memoryUpdates) setStatus(id int64, status models.UpdateStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	u.Status = status
	m.rows[id] = u
}

// staleUpdates serves reads from snapshots taken before a concurrent
// writer changed the rows, while writes go to the live store.
type staleUpdates struct {
	*memoryUpdates
	snapshot map[int64]models.CompanyUpdate
}

func (s *staleUpdates) GetByID(_ context.Context, id int64) (*models.CompanyUpdate, error) {
	u, ok := s.snapshot[id]
	if !ok {
		return nil, apperrors.ErrCompanyUpdateNotFound
	}
	return s.join(u), nil
}

// memoryFiles is a FileStorage that keeps uploads in memory
type memoryFiles struct {
	saved   map[string][]byte
	deleted []string
	n       int
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{saved: map[string][]byte{}}
}

func (f *memoryFiles) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	f.n++
	path := fmt.Sprintf("/uploads/%s/file-%d.pdf", subPath, f.n)
	f.saved[path] = data
	return path, nil
}

func (f *memoryFiles) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	delete(f.saved, path)
	return nil
}

func (f *memoryFiles) GetFullPath(path string) string { return path }

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 16)}
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...events.Event) error {
	p.mu.Lock()
	for _, e := range evs {
		p.events = append(p.events, e.Type)
	}
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// wait blocks until one asynchronous Publish call has completed.
func (p *recordingPublisher) wait() bool {
	select {
	case <-p.done:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
