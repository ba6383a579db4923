package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pebble/internal/model"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts the issue and its label associations in one transaction
func (r *IssueRepository) Create(ctx context.Context, issue *model.Issue) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(issue).Error; err != nil {
			return err
		}
		return attachLabels(tx, issue.ID, issue.LabelIDs())
	}))
}

// GetByID retrieves an issue with its labels and assignee
func (r *IssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error) {
	var issue model.Issue
	result := r.db.WithContext(ctx).
		Preload("Labels").
		Preload("Assignee").
		First(&issue, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, result.Error
	}
	return &issue, nil
}

// Update saves every column of the issue and replaces its label set
func (r *IssueRepository) Update(ctx context.Context, issue *model.Issue) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Issue{}).
			Where("id = ?", issue.ID).
			Updates(map[string]any{
				"title":       issue.Title,
				"description": issue.Description,
				"type":        issue.Type,
				"priority":    issue.Priority,
				"status":      issue.Status,
				"assignee_id": issue.AssigneeID,
				"updated_at":  issue.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrIssueNotFound
		}

		if err := tx.Exec("DELETE FROM issue_labels WHERE issue_id = ?", issue.ID).Error; err != nil {
			return err
		}
		return attachLabels(tx, issue.ID, issue.LabelIDs())
	}))
}

// Delete removes an issue together with its label associations
func (r *IssueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM issue_labels WHERE issue_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Issue{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrIssueNotFound
		}
		return nil
	})
}

// ListByProject retrieves all issues of a project in creation order
func (r *IssueRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Issue, error) {
	var issues []model.Issue
	result := r.db.WithContext(ctx).
		Preload("Labels").
		Preload("Assignee").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&issues)
	if result.Error != nil {
		return nil, result.Error
	}
	return issues, nil
}

// List retrieves every issue across all projects
func (r *IssueRepository) List(ctx context.Context) ([]model.Issue, error) {
	var issues []model.Issue
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// Latest retrieves the most recently created issues
func (r *IssueRepository) Latest(ctx context.Context, limit int) ([]model.Issue, error) {
	var issues []model.Issue
	result := r.db.WithContext(ctx).
		Preload("Assignee").
		Order("created_at DESC").
		Limit(limit).
		Find(&issues)
	if result.Error != nil {
		return nil, result.Error
	}
	return issues, nil
}

// Search retrieves one page of issues matching the query
func (r *IssueRepository) Search(ctx context.Context, query string, limit, offset int) ([]model.Issue, error) {
	var issues []model.Issue
	result := r.searchScope(r.db.WithContext(ctx), query).
		Preload("Assignee").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&issues)
	if result.Error != nil {
		return nil, result.Error
	}
	return issues, nil
}

// CountSearch counts all issues matching the query
func (r *IssueRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.searchScope(r.db.WithContext(ctx).Model(&model.Issue{}), query).Count(&count).Error
	return count, err
}

// searchScope matches case-insensitively on PostgreSQL and SQLite alike.
func (r *IssueRepository) searchScope(db *gorm.DB, query string) *gorm.DB {
	pattern := "%" + strings.ToLower(query) + "%"
	return db.Where(
		"LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ? OR LOWER(status) LIKE ? OR LOWER(type) LIKE ?",
		pattern, pattern, pattern, pattern,
	)
}

func attachLabels(tx *gorm.DB, issueID uuid.UUID, labelIDs []uuid.UUID) error {
	for _, labelID := range labelIDs {
		if err := tx.Exec(
			"INSERT INTO issue_labels (issue_id, label_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			issueID, labelID,
		).Error; err != nil {
			return err
		}
	}
	return nil
}
