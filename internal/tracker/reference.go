package tracker

import (
	"context"
	"strings"

	"pebble/internal/model"
)

type LabelDraft struct {
	Name  string `validate:"required,max=100"`
	Color string `validate:"required,hexcolor,len=7"`
}

// CreateLabel stores a new label. Colors are #RRGGBB.
func (s *Store) CreateLabel(ctx context.Context, draft LabelDraft) (*model.Label, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Color = strings.ToUpper(strings.TrimSpace(draft.Color))
	if err := s.validate.Struct(draft); err != nil {
		return nil, fromValidator(err)
	}

	label := &model.Label{Name: draft.Name, Color: draft.Color}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, s.fail("create label", draft.Name, err)
	}
	return label, nil
}

func (s *Store) Labels(ctx context.Context) ([]model.Label, error) {
	labels, err := s.labels.List(ctx)
	if err != nil {
		return nil, s.fail("list labels", "", err)
	}
	return labels, nil
}
