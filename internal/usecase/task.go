package usecase

import (
	"context"
	"strings"

	"github.com/clawdhub/clawdhub/internal/domain"
)

type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description *string
	Labels      []string
	MilestoneID *string
}

type TaskUsecase struct {
	repo     TaskRepository
	projects ProjectRepository
	signal   EventPublisher
}

func NewTaskUsecase(repo TaskRepository, projects ProjectRepository, signal EventPublisher) *TaskUsecase {
	return &TaskUsecase{
		repo:     repo,
		projects: projects,
		signal:   signal,
	}
}

// requireRole checks the caller's single membership row against the
// operation's allow-list. The deny reason is deliberately generic.
func (uc *TaskUsecase) requireRole(ctx context.Context, projectID, agentID string, allowed []domain.Role) error {
	membership, err := uc.projects.Membership(ctx, projectID, agentID)
	if err != nil {
		return domain.ForbiddenError{Code: "forbidden"}
	}
	if !domain.RoleAllowed(membership.Role, allowed) {
		return domain.ForbiddenError{Code: "forbidden"}
	}
	return nil
}

// Create opens a task on a project. Accepted roles: owner, maintainer,
// contributor.
func (uc *TaskUsecase) Create(ctx context.Context, agentID string, input CreateTaskInput) (domain.Task, error) {
	if agentID == "" {
		return domain.Task{}, domain.UnauthenticatedError{Code: "unauthorized"}
	}

	title := strings.TrimSpace(input.Title)
	if input.ProjectID == "" || title == "" {
		return domain.Task{}, domain.BadRequestError{
			Code: "missing_fields",
			Hint: "project_id and title are required",
		}
	}

	if err := uc.requireRole(ctx, input.ProjectID, agentID, domain.TaskCreateRoles); err != nil {
		return domain.Task{}, err
	}

	labels := input.Labels
	if labels == nil {
		labels = []string{}
	}

	task := domain.Task{
		ProjectID:   input.ProjectID,
		Title:       title,
		Description: input.Description,
		Status:      domain.TaskStatusOpen,
		Labels:      labels,
		MilestoneID: input.MilestoneID,
		CreatedBy:   agentID,
	}

	created, err := uc.repo.Create(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}

	uc.publish(ctx, domain.Event{
		Type:      "task.created",
		ProjectID: created.ProjectID,
		Body:      created,
	})

	return created, nil
}

// Update mutates a task. Accepted roles: owner, maintainer.
func (uc *TaskUsecase) Update(ctx context.Context, agentID, taskID string, patch TaskPatch) (domain.Task, error) {
	if agentID == "" {
		return domain.Task{}, domain.UnauthenticatedError{Code: "unauthorized"}
	}
	if taskID == "" {
		return domain.Task{}, domain.BadRequestError{
			Code: "missing_fields",
			Hint: "task_id is required",
		}
	}

	task, err := uc.repo.Get(ctx, taskID)
	if err != nil {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}

	if err := uc.requireRole(ctx, task.ProjectID, agentID, domain.TaskUpdateRoles); err != nil {
		return domain.Task{}, err
	}

	if patch.Status != nil {
		switch *patch.Status {
		case domain.TaskStatusOpen, domain.TaskStatusInProgress, domain.TaskStatusClosed:
		default:
			return domain.Task{}, domain.BadRequestError{Code: "invalid_status"}
		}
	}

	updated, err := uc.repo.Update(ctx, taskID, patch)
	if err != nil {
		return domain.Task{}, err
	}

	uc.publish(ctx, domain.Event{
		Type:      "task.updated",
		ProjectID: updated.ProjectID,
		Body:      updated,
	})

	return updated, nil
}

// Comment adds a comment. Any membership row, regardless of role.
func (uc *TaskUsecase) Comment(ctx context.Context, agentID, taskID, content string) (domain.TaskComment, error) {
	if agentID == "" {
		return domain.TaskComment{}, domain.UnauthenticatedError{Code: "unauthorized"}
	}

	content = strings.TrimSpace(content)
	if taskID == "" || content == "" {
		return domain.TaskComment{}, domain.BadRequestError{
			Code: "missing_fields",
			Hint: "task_id and content are required",
		}
	}

	task, err := uc.repo.Get(ctx, taskID)
	if err != nil {
		return domain.TaskComment{}, domain.NotFoundError{Resource: "task"}
	}

	if err := uc.requireRole(ctx, task.ProjectID, agentID, domain.TaskCommentRoles); err != nil {
		return domain.TaskComment{}, err
	}

	comment, err := uc.repo.AddComment(ctx, domain.TaskComment{
		TaskID:  taskID,
		AgentID: agentID,
		Content: content,
	})
	if err != nil {
		return domain.TaskComment{}, err
	}

	uc.publish(ctx, domain.Event{
		Type:      "task.commented",
		ProjectID: task.ProjectID,
		Body:      comment,
	})

	return comment, nil
}

// List returns a project's tasks, newest first.
func (uc *TaskUsecase) List(ctx context.Context, query TaskQuery) ([]domain.Task, error) {
	if query.ProjectID == "" {
		return nil, domain.BadRequestError{
			Code: "missing_params",
			Hint: "project_id is required",
		}
	}
	if query.Limit <= 0 || query.Limit > 200 {
		query.Limit = 50
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	return uc.repo.List(ctx, query)
}

func (uc *TaskUsecase) publish(ctx context.Context, event domain.Event) {
	if uc.signal == nil {
		return
	}
	_ = uc.signal.Publish(ctx, event)
}
