package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pebble/internal/model"
)

type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Create adds a new label to the database
func (r *LabelRepository) Create(ctx context.Context, label *model.Label) error {
	return r.db.WithContext(ctx).Create(label).Error
}

// GetByID retrieves a label by its ID
func (r *LabelRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Label, error) {
	var label model.Label
	result := r.db.WithContext(ctx).First(&label, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, result.Error
	}
	return &label, nil
}

// GetByIDs retrieves the labels with the given IDs in the order requested.
// Fails with ErrLabelNotFound if any of them is missing.
func (r *LabelRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Label, error) {
	if len(ids) == 0 {
		return []model.Label{}, nil
	}

	var found []model.Label
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	return orderLabels(found, ids)
}

// List retrieves all labels sorted by name
func (r *LabelRepository) List(ctx context.Context) ([]model.Label, error) {
	var labels []model.Label
	err := r.db.WithContext(ctx).Order("name ASC").Find(&labels).Error
	return labels, err
}

func orderLabels(found []model.Label, ids []uuid.UUID) ([]model.Label, error) {
	byID := make(map[uuid.UUID]model.Label, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}

	labels := make([]model.Label, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		l, ok := byID[id]
		if !ok {
			return nil, ErrLabelNotFound
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		labels = append(labels, l)
	}
	return labels, nil
}
