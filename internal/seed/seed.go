// Package seed loads the demo workspace: four users, five labels, three
// projects and a handful of issues spread over the board.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pebble/internal/model"
	"pebble/internal/repository"
	"pebble/internal/tracker"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

type demoIssue struct {
	project  string
	title    string
	desc     string
	typ      model.IssueType
	priority model.Priority
	status   model.Status
	assignee string
	labels   []string
}

var (
	demoUsers = []model.User{
		{Name: "John Doe", Email: "john@example.com"},
		{Name: "Jane Smith", Email: "jane@example.com"},
		{Name: "Mike Johnson", Email: "mike@example.com"},
		{Name: "Sarah Wilson", Email: "sarah@example.com"},
	}

	demoLabels = []tracker.LabelDraft{
		{Name: "Frontend", Color: "#3B82F6"},
		{Name: "Backend", Color: "#10B981"},
		{Name: "Bug", Color: "#EF4444"},
		{Name: "Enhancement", Color: "#8B5CF6"},
		{Name: "Documentation", Color: "#F59E0B"},
	}

	demoProjects = []tracker.ProjectDraft{
		{Name: "Pebble Project Management", Key: "PBL", Description: ptr("A modern project management system for teams")},
		{Name: "E-commerce Platform", Key: "ECO", Description: ptr("Online shopping platform with payment integration")},
		{Name: "Mobile App", Key: "MOB", Description: ptr("Cross-platform mobile application")},
	}

	demoIssues = []demoIssue{
		{"PBL", "Set up project structure", "Initialize the basic project structure with components and routing",
			model.TypeTask, model.PriorityHigh, model.StatusTodo, "john@example.com", []string{"Frontend", "Documentation"}},
		{"PBL", "Create user authentication", "Implement login and registration functionality",
			model.TypeTask, model.PriorityHigh, model.StatusInProgress, "jane@example.com", []string{"Backend"}},
		{"PBL", "Fix login bug", "Users cannot login with special characters in password",
			model.TypeBug, model.PriorityHigh, model.StatusInReview, "mike@example.com", []string{"Bug"}},
		{"PBL", "Add dark mode support", "Implement dark theme toggle for better user experience",
			model.TypeTask, model.PriorityMedium, model.StatusDone, "sarah@example.com", []string{"Frontend", "Enhancement"}},
		{"PBL", "Create project dashboard", "Build the main dashboard with project overview and metrics",
			model.TypeTask, model.PriorityHigh, model.StatusTodo, "john@example.com", []string{"Frontend", "Backend"}},
		{"ECO", "Design product catalog", "Create the product listing and detail pages",
			model.TypeTask, model.PriorityHigh, model.StatusInProgress, "jane@example.com", []string{"Frontend", "Enhancement"}},
		{"MOB", "Setup React Native project", "Initialize React Native project with navigation",
			model.TypeTask, model.PriorityMedium, model.StatusTodo, "mike@example.com", []string{"Frontend"}},
	}
)

// Run creates the demo data through the store so keys are allocated as for
// any other client. It does nothing if a project already exists.
func Run(ctx context.Context, store *tracker.Store, users repository.UserRepositoryInterface) error {
	existing, err := store.Projects(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("ℹ️  Projects already present, skipping demo seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}

	userIDs := make(map[string]uuid.UUID, len(demoUsers))
	for _, u := range demoUsers {
		user := u
		user.HashedPassword = string(hash)
		if found, err := users.FindByEmail(ctx, user.Email); err != nil {
			return err
		} else if found != nil {
			userIDs[user.Email] = found.ID
			continue
		}
		if err := users.Create(ctx, &user); err != nil {
			return fmt.Errorf("creating user %s: %w", user.Email, err)
		}
		userIDs[user.Email] = user.ID
	}

	labelIDs := make(map[string]uuid.UUID, len(demoLabels))
	for _, draft := range demoLabels {
		label, err := store.CreateLabel(ctx, draft)
		if err != nil {
			return fmt.Errorf("creating label %s: %w", draft.Name, err)
		}
		labelIDs[label.Name] = label.ID
	}

	projectIDs := make(map[string]uuid.UUID, len(demoProjects))
	for _, draft := range demoProjects {
		project, err := store.CreateProject(ctx, draft)
		if err != nil {
			return fmt.Errorf("creating project %s: %w", draft.Key, err)
		}
		projectIDs[project.Key] = project.ID
	}

	for _, d := range demoIssues {
		assignee := userIDs[d.assignee]
		labels := make([]uuid.UUID, len(d.labels))
		for i, name := range d.labels {
			labels[i] = labelIDs[name]
		}

		if _, err := store.Create(ctx, tracker.IssueDraft{
			ProjectID:   projectIDs[d.project],
			Title:       d.title,
			Description: ptr(d.desc),
			Type:        d.typ,
			Priority:    d.priority,
			Status:      d.status,
			AssigneeID:  &assignee,
			LabelIDs:    labels,
		}); err != nil {
			return fmt.Errorf("creating issue %q: %w", d.title, err)
		}
	}

	log.Printf("🌱 Seeded %d users, %d labels, %d projects, %d issues",
		len(demoUsers), len(demoLabels), len(demoProjects), len(demoIssues))
	return nil
}

func ptr(s string) *string { return &s }
