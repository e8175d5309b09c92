package services

import (
	"context"
	"fmt"

	"whentomeet/internal/domain"
)

// fakeUserRepo is an in-memory UserRepository shared by the service tests.
type fakeUserRepo struct {
	byID   map[string]*domain.User
	nextID int

	saveErr   error // if set, Save returns this error
	appendErr error // if set, AppendMessage returns this error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) add(username string) *domain.User {
	u := &domain.User{
		Email:    username + "@example.com",
		Username: username,
	}
	_ = f.Create(context.Background(), u)
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
	}
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Save(ctx context.Context, u *domain.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) AppendMessage(ctx context.Context, id string, msg domain.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Messages = append(u.Messages, msg)
	return nil
}

func (f *fakeUserRepo) DrainMessages(ctx context.Context, id string) ([]domain.Message, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	msgs := u.Messages
	u.Messages = []domain.Message{}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

func (f *fakeUserRepo) ClearMessages(ctx context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Messages = []domain.Message{}
	return nil
}

// fakeWTMRepo is an in-memory WTMRepository. dupFirst forces the first N
// Create calls to fail with ErrDuplicateIdentifier to exercise the redraw
// loop.
type fakeWTMRepo struct {
	byID     map[string]*domain.WTM
	nextID   int
	dupFirst int
	saveErr  error
}

func newFakeWTMRepo() *fakeWTMRepo {
	return &fakeWTMRepo{byID: make(map[string]*domain.WTM), nextID: 1}
}

func (f *fakeWTMRepo) Create(ctx context.Context, w *domain.WTM) error {
	if f.dupFirst > 0 {
		f.dupFirst--
		return domain.ErrDuplicateIdentifier
	}
	for _, existing := range f.byID {
		if existing.Identifier == w.Identifier {
			return domain.ErrDuplicateIdentifier
		}
	}
	w.ID = fmt.Sprintf("w-%d", f.nextID)
	f.nextID++
	f.byID[w.ID] = w
	return nil
}

func (f *fakeWTMRepo) GetByIdentifier(ctx context.Context, identifier int) (*domain.WTM, error) {
	for _, w := range f.byID {
		if w.Identifier == identifier {
			return w, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWTMRepo) GetByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.WTM, error) {
	for _, w := range f.byID {
		if w.Identifier == identifier && w.OwnerID == ownerID {
			return w, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWTMRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.WTM, error) {
	var out []*domain.WTM
	for _, w := range f.byID {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWTMRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.WTM, error) {
	var out []*domain.WTM
	for _, id := range ids {
		if w, ok := f.byID[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWTMRepo) Save(ctx context.Context, w *domain.WTM) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[w.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[w.ID] = w
	return nil
}

func (f *fakeWTMRepo) RemoveByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.WTM, error) {
	for id, w := range f.byID {
		if w.Identifier == identifier && w.OwnerID == ownerID {
			delete(f.byID, id)
			return w, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeAppointmentRepo is an in-memory AppointmentRepository.
type fakeAppointmentRepo struct {
	byID     map[string]*domain.Appointment
	nextID   int
	dupFirst int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: make(map[string]*domain.Appointment), nextID: 1}
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, a *domain.Appointment) error {
	if f.dupFirst > 0 {
		f.dupFirst--
		return domain.ErrDuplicateIdentifier
	}
	for _, existing := range f.byID {
		if existing.Identifier == a.Identifier {
			return domain.ErrDuplicateIdentifier
		}
	}
	a.ID = fmt.Sprintf("a-%d", f.nextID)
	f.nextID++
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) GetByIdentifier(ctx context.Context, identifier int) (*domain.Appointment, error) {
	for _, a := range f.byID {
		if a.Identifier == identifier {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAppointmentRepo) GetByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.Appointment, error) {
	for _, a := range f.byID {
		if a.Identifier == identifier && a.OwnerID == ownerID {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAppointmentRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Save(ctx context.Context, a *domain.Appointment) error {
	if _, ok := f.byID[a.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) RemoveByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.Appointment, error) {
	for id, a := range f.byID {
		if a.Identifier == identifier && a.OwnerID == ownerID {
			delete(f.byID, id)
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeHasher hashes by prefixing, enough to verify wiring without bcrypt cost.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}
