// Package repository holds the persistence interfaces for issues and users
// plus a Postgres (gorm) and an in-memory implementation. Services depend on
// the interfaces only; the concrete store is injected at construction.
package repository

import (
	"context"

	"github.com/civicsync/civicsync/internal/models"
)

// IssueRepository is the single write path for issue state.
type IssueRepository interface {
	// List returns all issues newest-created first with reporter names filled in.
	List(ctx context.Context) ([]models.Issue, error)

	// GetByID returns one issue or apperr.ErrNotFound.
	GetByID(ctx context.Context, id uint) (*models.Issue, error)

	// Create persists a new issue and fills in its assigned id and timestamps.
	Create(ctx context.Context, issue *models.Issue) error

	// IncrementUpvotes adds exactly one upvote as a single atomic statement
	// and returns the updated issue. apperr.ErrNotFound if the id is unknown.
	IncrementUpvotes(ctx context.Context, id uint) (*models.Issue, error)

	// SetStatus overwrites the issue status, refreshes UpdatedAt and appends
	// one audit record, all in one transaction. apperr.ErrNotFound if the id
	// is unknown.
	SetStatus(ctx context.Context, id uint, status models.IssueStatus, message *string, updatedBy *uint) (*models.Issue, error)

	// ListUpdates returns the audit trail for an issue, oldest first.
	ListUpdates(ctx context.Context, issueID uint) ([]models.IssueUpdate, error)
}

// UserRepository covers the credential store the auth endpoints need.
type UserRepository interface {
	// Create persists a new user. apperr.ErrEmailTaken if the email exists.
	Create(ctx context.Context, user *models.User) error

	// GetByEmail returns one user or apperr.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns one user or apperr.ErrNotFound.
	GetByID(ctx context.Context, id uint) (*models.User, error)
}
