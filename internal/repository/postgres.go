package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/civicsync/civicsync/internal/apperr"
	"github.com/civicsync/civicsync/internal/models"
)

type PostgresIssueRepository struct {
	db *gorm.DB
}

func NewPostgresIssueRepository(db *gorm.DB) *PostgresIssueRepository {
	return &PostgresIssueRepository{db: db}
}

func (r *PostgresIssueRepository) List(ctx context.Context) ([]models.Issue, error) {
	var issues []models.Issue
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Order("created_at desc").
		Find(&issues).Error
	if err != nil {
		return nil, storeErr(err)
	}
	for i := range issues {
		issues[i].UserName = displayName(issues[i].Reporter.Name)
	}
	return issues, nil
}

func (r *PostgresIssueRepository) GetByID(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.WithContext(ctx).Preload("Reporter").First(&issue, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, storeErr(err)
	}
	issue.UserName = displayName(issue.Reporter.Name)
	return &issue, nil
}

func (r *PostgresIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return storeErr(err)
	}
	// The same struct feeds the 201 response and the broadcast, so the
	// reporter name must be synthesized here just like List and GetByID.
	if err := r.db.WithContext(ctx).First(&issue.Reporter, issue.UserID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return storeErr(err)
	}
	issue.UserName = displayName(issue.Reporter.Name)
	return nil
}

func (r *PostgresIssueRepository) IncrementUpvotes(ctx context.Context, id uint) (*models.Issue, error) {
	// Single atomic statement; concurrent calls never lose an increment.
	res := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ?", id).
		UpdateColumn("upvotes", gorm.Expr("upvotes + 1"))
	if res.Error != nil {
		return nil, storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresIssueRepository) SetStatus(ctx context.Context, id uint, status models.IssueStatus, message *string, updatedBy *uint) (*models.Issue, error) {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Issue{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"status": status, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		record := models.IssueUpdate{
			IssueID:   id,
			UpdatedBy: updatedBy,
			Status:    status,
			Message:   message,
			UpdatedAt: now,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresIssueRepository) ListUpdates(ctx context.Context, issueID uint) ([]models.IssueUpdate, error) {
	var updates []models.IssueUpdate
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("updated_at asc").
		Find(&updates).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return updates, nil
}

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	var existing models.User
	err := r.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return apperr.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storeErr(err)
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &user, nil
}

// displayName is the reporter name as shown to clients. Issues whose
// reporter row is missing read as anonymous reports.
func displayName(name string) string {
	if name == "" {
		return "Anonymous"
	}
	return name
}

// storeErr wraps driver failures as the transient, retryable kind.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
}
