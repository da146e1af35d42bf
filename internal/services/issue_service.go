package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/civicsync/civicsync/internal/apperr"
	"github.com/civicsync/civicsync/internal/events"
	"github.com/civicsync/civicsync/internal/logger"
	"github.com/civicsync/civicsync/internal/models"
	"github.com/civicsync/civicsync/internal/repository"
)

// IssueService owns the issue lifecycle. It is the only writer of issue state
// and the single publisher of realtime events.
type IssueService struct {
	repo repository.IssueRepository
	pub  events.Publisher
	log  *logrus.Entry
}

func NewIssueService(repo repository.IssueRepository, pub events.Publisher) *IssueService {
	return &IssueService{
		repo: repo,
		pub:  pub,
		log:  logger.WithContext(map[string]interface{}{"component": "issue_service"}),
	}
}

// CreateIssueInput carries the caller-supplied fields of a new report.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    models.IssueCategory
	Location    string
	Latitude    *float64
	Longitude   *float64
	ImageURL    *string
	ReporterID  uint
}

// List returns every issue, newest-created first.
func (s *IssueService) List(ctx context.Context) ([]models.Issue, error) {
	return s.repo.List(ctx)
}

// Get returns a single issue by id.
func (s *IssueService) Get(ctx context.Context, id uint) (*models.Issue, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and persists a new report, then broadcasts it. The
// returned issue carries the server-assigned id, Pending status and zero
// upvotes.
func (s *IssueService) Create(ctx context.Context, in CreateIssueInput) (*models.Issue, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	now := time.Now()
	issue := models.Issue{
		UserID:      in.ReporterID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      models.StatusPending,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		ImageURL:    in.ImageURL,
		Upvotes:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &issue); err != nil {
		s.log.WithField("error", err.Error()).Error("Failed to persist issue")
		return nil, err
	}

	s.pub.Publish(events.Event{Kind: events.IssueCreated, Issue: issue})
	s.log.WithFields(logrus.Fields{
		"issue_id": issue.ID,
		"category": issue.Category,
	}).Info("Issue created")
	return &issue, nil
}

// Upvote increments the vote count by exactly one and returns the updated
// issue. Repeated calls from the same caller each count: there is no
// idempotency key, and that permissive behavior is the documented contract.
func (s *IssueService) Upvote(ctx context.Context, id uint) (*models.Issue, error) {
	issue, err := s.repo.IncrementUpvotes(ctx, id)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(events.Event{Kind: events.IssueUpdated, Issue: *issue})
	return issue, nil
}

// UpdateStatus overwrites the issue status unconditionally (any transition,
// including Resolved back to Pending, is legal) and appends one audit record.
// Concurrent updates are last-write-wins; the audit trail keeps both.
func (s *IssueService) UpdateStatus(ctx context.Context, id uint, status models.IssueStatus, message *string, updatedBy *uint) (*models.Issue, error) {
	if !models.ValidStatus(status) {
		return nil, apperr.Validation("status", "must be Pending, In Progress or Resolved")
	}

	prev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	issue, err := s.repo.SetStatus(ctx, id, status, message, updatedBy)
	if err != nil {
		return nil, err
	}

	if prev.Status != issue.Status {
		s.log.WithFields(logrus.Fields{
			"issue_id": id,
			"from":     prev.Status,
			"to":       issue.Status,
		}).Debug("Status overwritten")
	}

	s.pub.Publish(events.Event{Kind: events.IssueUpdated, Issue: *issue})
	return issue, nil
}

// Updates returns the audit trail of an issue, oldest first.
func (s *IssueService) Updates(ctx context.Context, id uint) ([]models.IssueUpdate, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, id)
}

func validateCreate(in CreateIssueInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title", "must not be empty")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperr.Validation("description", "must not be empty")
	}
	if strings.TrimSpace(in.Location) == "" {
		return apperr.Validation("location", "must not be empty")
	}
	if in.Category == "" {
		return apperr.Validation("category", "must not be empty")
	}
	if !models.ValidCategory(in.Category) {
		return apperr.Validation("category", "unknown category")
	}
	return nil
}
