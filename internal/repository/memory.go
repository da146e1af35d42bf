package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/civicsync/civicsync/internal/apperr"
	"github.com/civicsync/civicsync/internal/models"
)

// MemoryStore is a process-local implementation of both repositories. It backs
// the test suites and local development without a Postgres instance.
type MemoryStore struct {
	mu         sync.Mutex
	issues     map[uint]*models.Issue
	updates    map[uint][]models.IssueUpdate
	users      map[uint]*models.User
	nextIssue  uint
	nextUpdate uint
	nextUser   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		issues:     make(map[uint]*models.Issue),
		updates:    make(map[uint][]models.IssueUpdate),
		users:      make(map[uint]*models.User),
		nextIssue:  1,
		nextUpdate: 1,
		nextUser:   1,
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		copy := *issue
		copy.UserName = s.reporterName(issue.UserID)
		out = append(out, copy)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uint) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copy := *issue
	copy.UserName = s.reporterName(issue.UserID)
	return &copy, nil
}

func (s *MemoryStore) Create(ctx context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue.ID = s.nextIssue
	s.nextIssue++
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now()
	}
	if issue.UpdatedAt.IsZero() {
		issue.UpdatedAt = issue.CreatedAt
	}
	stored := *issue
	s.issues[issue.ID] = &stored
	issue.UserName = s.reporterName(issue.UserID)
	return nil
}

func (s *MemoryStore) IncrementUpvotes(ctx context.Context, id uint) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	issue.Upvotes++
	copy := *issue
	copy.UserName = s.reporterName(issue.UserID)
	return &copy, nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, id uint, status models.IssueStatus, message *string, updatedBy *uint) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	now := time.Now()
	issue.Status = status
	issue.UpdatedAt = now
	record := models.IssueUpdate{
		ID:        s.nextUpdate,
		IssueID:   id,
		UpdatedBy: updatedBy,
		Status:    status,
		Message:   message,
		UpdatedAt: now,
	}
	s.nextUpdate++
	s.updates[id] = append(s.updates[id], record)
	copy := *issue
	copy.UserName = s.reporterName(issue.UserID)
	return &copy, nil
}

func (s *MemoryStore) ListUpdates(ctx context.Context, issueID uint) ([]models.IssueUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.IssueUpdate(nil), s.updates[issueID]...), nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.ErrEmailTaken
		}
	}
	user.ID = s.nextUser
	s.nextUser++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (s *MemoryStore) reporterName(userID uint) string {
	if u, ok := s.users[userID]; ok {
		return u.Name
	}
	return "Anonymous"
}

// Users adapts the store to the UserRepository interface, whose method names
// collide with the issue side.
func (s *MemoryStore) Users() UserRepository {
	return memoryUsers{s}
}

type memoryUsers struct {
	store *MemoryStore
}

func (m memoryUsers) Create(ctx context.Context, user *models.User) error {
	return m.store.CreateUser(ctx, user)
}

func (m memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.store.GetByEmail(ctx, email)
}

func (m memoryUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return m.store.GetUserByID(ctx, id)
}
