package repository

import (
	"context"
	"errors"

	"pebble/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return translate(r.db.WithContext(ctx).Create(project).Error)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) GetByKey(ctx context.Context, key string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).Count(&count).Error
	return count, err
}

func (r *ProjectRepository) ReserveIssueNumber(ctx context.Context, projectID uuid.UUID) (int, error) {
	var issued int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The UPDATE takes the row lock, so the read below sees our own increment
		// and concurrent reservations for the same project queue behind us.
		result := tx.Model(&model.Project{}).
			Where("id = ?", projectID).
			UpdateColumn("issue_seq", gorm.Expr("issue_seq + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}

		var project model.Project
		if err := tx.Select("issue_seq").Where("id = ?", projectID).First(&project).Error; err != nil {
			return err
		}
		issued = project.IssueSeq - 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}
