package tracker

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pebble/internal/model"
	"pebble/internal/repository"
)

type ProjectDraft struct {
	Name        string `validate:"required,max=255"`
	Key         string
	Description *string
}

// CreateProject stores a new project. A missing key is derived from the name
// prefix plus a random two-digit number, retried until unused. A supplied key
// that is already taken is rejected.
func (s *Store) CreateProject(ctx context.Context, draft ProjectDraft) (*model.Project, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Key = strings.ToUpper(strings.TrimSpace(draft.Key))
	if err := s.validate.Struct(draft); err != nil {
		return nil, fromValidator(err)
	}
	if draft.Key != "" && !projectKeyPattern.MatchString(draft.Key) {
		return nil, invalid("key", "must be 2-10 uppercase letters or digits starting with a letter")
	}

	// Key uniqueness is check-then-insert, so project creation is serialized.
	s.projectCreateMu.Lock()
	defer s.projectCreateMu.Unlock()

	key := draft.Key
	if key == "" {
		derived, err := s.deriveProjectKey(ctx, draft.Name)
		if err != nil {
			return nil, err
		}
		key = derived
	} else if taken, err := s.projectKeyTaken(ctx, key); err != nil {
		return nil, err
	} else if taken {
		return nil, invalid("key", "%s is already in use", key)
	}

	project := &model.Project{
		Name:        draft.Name,
		Key:         key,
		Description: normalizeDescription(draft.Description),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, invalid("key", "%s is already in use", key)
		}
		return nil, s.fail("create project", key, err)
	}
	return project, nil
}

func (s *Store) deriveProjectKey(ctx context.Context, name string) (string, error) {
	prefix := keyPrefix(name)
	for range maxKeyAttempts {
		candidate := prefix + strconv.Itoa(10+s.randIntN(90))
		taken, err := s.projectKeyTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", invalid("key", "no free key found for %q, supply one explicitly", name)
}

func (s *Store) projectKeyTaken(ctx context.Context, key string) (bool, error) {
	_, err := s.projects.GetByKey(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrProjectNotFound):
		return false, nil
	default:
		return false, s.fail("check project key", key, err)
	}
}

// ProjectByKey looks a project up by its key.
func (s *Store) ProjectByKey(ctx context.Context, key string) (*model.Project, error) {
	project, err := s.projects.GetByKey(ctx, strings.ToUpper(key))
	if err != nil {
		return nil, s.fail("load project", key, err)
	}
	return project, nil
}

func (s *Store) Project(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("load project", id.String(), err)
	}
	return project, nil
}

// Projects lists every project, newest first.
func (s *Store) Projects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, s.fail("list projects", "", err)
	}
	return projects, nil
}
