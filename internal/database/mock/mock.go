package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jon4hz/whispr/internal/database"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is an in-memory implementation of database.DB for testing.
type MockDB struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]*database.User

	// Error simulation
	GetVerifiedUserError    error
	SaveUnverifiedUserError error
	GetUserError            error
	MarkUserVerifiedError   error
	SetAcceptingError       error
	ListUsersError          error
	AppendMessageError      error
	DeleteMessageError      error
	ListMessagesError       error
	PurgeError              error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users: make(map[bson.ObjectID]*database.User),
	}
}

// AddUser seeds a user and returns its generated id.
func (m *MockDB) AddUser(user *database.User) bson.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	m.users[user.ID] = user
	return user.ID
}

func (m *MockDB) GetVerifiedUserByEmailOrUsername(_ context.Context, email, username string) (*database.User, error) {
	if m.GetVerifiedUserError != nil {
		return nil, m.GetVerifiedUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.IsVerified && (u.Email == email || u.Username == username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) SaveUnverifiedUser(_ context.Context, user *database.User) (*database.User, error) {
	if m.SaveUnverifiedUserError != nil {
		return nil, m.SaveUnverifiedUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, u := range m.users {
		if !u.IsVerified && (u.Email == user.Email || u.Username == user.Username) {
			u.Email = user.Email
			u.Username = user.Username
			u.Password = user.Password
			u.VerificationCode = user.VerificationCode
			u.VerificationCodeExpiration = user.VerificationCodeExpiration
			u.UpdatedAt = now
			cp := *u
			return &cp, nil
		}
	}
	user.ID = bson.NewObjectID()
	user.IsVerified = false
	user.IsAcceptingMessage = true
	user.Messages = []database.Message{}
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	cp := *user
	return &cp, nil
}

func (m *MockDB) GetUserByUsername(_ context.Context, username string) (*database.User, error) {
	return m.find(func(u *database.User) bool { return u.Username == username })
}

func (m *MockDB) GetUserByEmail(_ context.Context, email string) (*database.User, error) {
	return m.find(func(u *database.User) bool { return u.Email == email })
}

func (m *MockDB) GetUserByID(_ context.Context, id bson.ObjectID) (*database.User, error) {
	return m.find(func(u *database.User) bool { return u.ID == id })
}

func (m *MockDB) GetVerifiedUserByUsername(_ context.Context, username string) (*database.User, error) {
	return m.find(func(u *database.User) bool { return u.Username == username && u.IsVerified })
}

func (m *MockDB) find(match func(*database.User) bool) (*database.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) MarkUserVerified(_ context.Context, id bson.ObjectID) error {
	if m.MarkUserVerifiedError != nil {
		return m.MarkUserVerifiedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	u.IsVerified = true
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MockDB) SetAcceptingMessages(_ context.Context, id bson.ObjectID, accepting bool) error {
	if m.SetAcceptingError != nil {
		return m.SetAcceptingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	u.IsAcceptingMessage = accepting
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MockDB) ListUsers(_ context.Context) ([]database.User, error) {
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *MockDB) AppendMessage(_ context.Context, userID bson.ObjectID, msg database.Message) error {
	if m.AppendMessageError != nil {
		return m.AppendMessageError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	u.Messages = append(u.Messages, msg)
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MockDB) DeleteMessage(_ context.Context, userID, msgID bson.ObjectID) error {
	if m.DeleteMessageError != nil {
		return m.DeleteMessageError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	kept := u.Messages[:0]
	for _, msg := range u.Messages {
		if msg.ID != msgID {
			kept = append(kept, msg)
		}
	}
	u.Messages = kept
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MockDB) ListMessages(_ context.Context, userID bson.ObjectID) ([]database.Message, error) {
	if m.ListMessagesError != nil {
		return nil, m.ListMessagesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return []database.Message{}, nil
	}
	msgs := make([]database.Message, len(u.Messages))
	copy(msgs, u.Messages)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (m *MockDB) PurgeStaleUnverifiedUsers(_ context.Context, expiredBefore time.Time) (int64, error) {
	if m.PurgeError != nil {
		return 0, m.PurgeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for id, u := range m.users {
		if !u.IsVerified && u.VerificationCodeExpiration.Before(expiredBefore) {
			delete(m.users, id)
			purged++
		}
	}
	return purged, nil
}

func (m *MockDB) Close(_ context.Context) error {
	return nil
}
