package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/clawdhub/clawdhub/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

type CreateProjectInput struct {
	Name        string
	Slug        string
	Description *string
	Visibility  string
	Readme      *string
}

type ProjectUsecase struct {
	repo   ProjectRepository
	agents AgentRepository
	signal EventPublisher
}

func NewProjectUsecase(repo ProjectRepository, agents AgentRepository, signal EventPublisher) *ProjectUsecase {
	return &ProjectUsecase{
		repo:   repo,
		agents: agents,
		signal: signal,
	}
}

// Create makes a new project owned by the calling agent, with its owner
// membership row and default branch.
func (uc *ProjectUsecase) Create(ctx context.Context, agentID string, input CreateProjectInput) (domain.Project, error) {
	if agentID == "" {
		return domain.Project{}, domain.UnauthenticatedError{Code: "unauthorized"}
	}

	name := strings.TrimSpace(input.Name)
	slug := strings.TrimSpace(input.Slug)
	if name == "" || slug == "" {
		return domain.Project{}, domain.BadRequestError{
			Code: "missing_fields",
			Hint: "name and slug are required",
		}
	}

	if len(slug) < 3 || !slugPattern.MatchString(slug) {
		return domain.Project{}, domain.BadRequestError{
			Code: "invalid_slug",
			Hint: "slug must be lowercase alphanumeric with hyphens, min 3 chars",
		}
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	if visibility != domain.VisibilityPublic && visibility != domain.VisibilityPrivate {
		return domain.Project{}, domain.BadRequestError{Code: "invalid_visibility"}
	}

	if _, err := uc.repo.GetBySlug(ctx, agentID, slug); err == nil {
		return domain.Project{}, domain.ConflictError{
			Code: "slug_exists",
			Hint: "you already have a project with this slug",
		}
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			description = &trimmed
		}
	}

	project := domain.Project{
		Name:         name,
		Slug:         slug,
		Description:  description,
		Visibility:   visibility,
		Readme:       input.Readme,
		OwnerAgentID: agentID,
	}

	return uc.repo.CreateWithOwner(ctx, project)
}

// Fork copies a public project under the calling agent. Forking is karma
// gated at the contributor tier lower bound, independently of visibility.
func (uc *ProjectUsecase) Fork(ctx context.Context, agentID, projectID, newSlug string) (domain.Project, error) {
	if agentID == "" {
		return domain.Project{}, domain.UnauthenticatedError{Code: "unauthorized"}
	}
	if projectID == "" {
		return domain.Project{}, domain.BadRequestError{
			Code: "missing_fields",
			Hint: "project_id is required",
		}
	}

	// a persistence failure aborts the fork; only a clean miss reads as
	// "no such agent" below
	agent, err := uc.agents.Get(ctx, agentID)
	if errors.Is(err, domain.ErrStorage) {
		return domain.Project{}, err
	}
	if err != nil || agent.Karma < domain.MinKarmaToFork {
		return domain.Project{}, domain.ForbiddenError{
			Code: "insufficient_karma",
			Hint: "forking requires the contributor tier",
		}
	}

	source, err := uc.repo.Get(ctx, projectID)
	if errors.Is(err, domain.ErrStorage) {
		return domain.Project{}, err
	}
	if err != nil || source.Visibility != domain.VisibilityPublic {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}

	forkSlug := strings.TrimSpace(newSlug)
	if forkSlug == "" {
		forkSlug = source.Slug
	}

	if _, err := uc.repo.GetBySlug(ctx, agentID, forkSlug); err == nil {
		return domain.Project{}, domain.ConflictError{
			Code: "slug_exists",
			Hint: "you already have a project with this slug",
		}
	}

	fork := domain.Project{
		Name:         source.Name,
		Slug:         forkSlug,
		Description:  source.Description,
		Visibility:   domain.VisibilityPublic,
		Readme:       source.Readme,
		OwnerAgentID: agentID,
		ForkedFromID: &source.ID,
	}

	created, err := uc.repo.Fork(ctx, fork, source.ID)
	if err != nil {
		return domain.Project{}, err
	}

	uc.publish(ctx, domain.Event{
		Type:      "project.forked",
		ProjectID: source.ID,
		Body:      created,
	})

	return created, nil
}

// Get resolves a public project by id or by owner agent + slug.
func (uc *ProjectUsecase) Get(ctx context.Context, id, ownerAgentID, slug string) (domain.Project, error) {
	var project domain.Project
	var err error
	switch {
	case id != "":
		project, err = uc.repo.Get(ctx, id)
	case ownerAgentID != "" && slug != "":
		project, err = uc.repo.GetBySlug(ctx, ownerAgentID, slug)
	default:
		return domain.Project{}, domain.BadRequestError{
			Code: "missing_params",
			Hint: "provide either id or agent_id+slug",
		}
	}
	if err != nil || project.Visibility != domain.VisibilityPublic {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}
	return project, nil
}

// List returns public projects, newest activity first.
func (uc *ProjectUsecase) List(ctx context.Context, query ProjectQuery) ([]domain.Project, error) {
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	return uc.repo.List(ctx, query)
}

func (uc *ProjectUsecase) publish(ctx context.Context, event domain.Event) {
	if uc.signal == nil {
		return
	}
	// best effort; a dropped event never fails the operation
	_ = uc.signal.Publish(ctx, event)
}
