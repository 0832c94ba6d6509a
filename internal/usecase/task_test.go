package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/clawdhub/clawdhub/internal/domain"
)

func taskFixture(t *testing.T) (*TaskUsecase, *memProjectRepo, *memTaskRepo, domain.Project) {
	t.Helper()
	projects := newMemProjectRepo()
	tasks := newMemTaskRepo()
	project := seedProject(projects, "owner-agent", "proj", domain.VisibilityPublic)
	projects.addMember(project.ID, "maintainer-agent", domain.RoleMaintainer)
	projects.addMember(project.ID, "contributor-agent", domain.RoleContributor)
	projects.addMember(project.ID, "viewer-agent", domain.RoleViewer)
	return NewTaskUsecase(tasks, projects, nil), projects, tasks, project
}

func TestCreateTaskViewerForbidden(t *testing.T) {
	uc, _, _, project := taskFixture(t)

	_, err := uc.Create(context.Background(), "viewer-agent", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "t",
	})
	var forbidden domain.ForbiddenError
	if !errors.As(err, &forbidden) || forbidden.Code != "forbidden" {
		t.Fatalf("expected generic forbidden, got %v", err)
	}
}

func TestCreateTaskContributorDefaultsOpen(t *testing.T) {
	uc, _, _, project := taskFixture(t)

	task, err := uc.Create(context.Background(), "contributor-agent", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "  write docs  ",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if task.Status != domain.TaskStatusOpen {
		t.Fatalf("status = %s, want open", task.Status)
	}
	if task.Title != "write docs" {
		t.Fatalf("title not trimmed: %q", task.Title)
	}
	if task.Labels == nil {
		t.Fatal("labels must default to empty, not nil")
	}
}

func TestCreateTaskNonMemberForbidden(t *testing.T) {
	uc, _, _, project := taskFixture(t)

	_, err := uc.Create(context.Background(), "stranger", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "t",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestUpdateTaskContributorForbidden(t *testing.T) {
	uc, _, _, project := taskFixture(t)

	task, err := uc.Create(context.Background(), "contributor-agent", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "t",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status := domain.TaskStatusClosed
	// contributors may open tasks but not mutate them
	_, err = uc.Update(context.Background(), "contributor-agent", task.ID, TaskPatch{Status: &status})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestUpdateTaskMaintainerAllowed(t *testing.T) {
	uc, _, _, project := taskFixture(t)

	task, err := uc.Create(context.Background(), "contributor-agent", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "t",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status := domain.TaskStatusInProgress
	updated, err := uc.Update(context.Background(), "maintainer-agent", task.ID, TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != domain.TaskStatusInProgress {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestUpdateTaskRejectsUnknownStatus(t *testing.T) {
	uc, _, _, project := taskFixture(t)

	task, _ := uc.Create(context.Background(), "owner-agent", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "t",
	})

	status := "archived"
	_, err := uc.Update(context.Background(), "owner-agent", task.ID, TaskPatch{Status: &status})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

func TestUpdateUnknownTaskIsNotFound(t *testing.T) {
	uc, _, _, _ := taskFixture(t)

	title := "x"
	_, err := uc.Update(context.Background(), "maintainer-agent", "missing", TaskPatch{Title: &title})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCommentAnyMemberAllowed(t *testing.T) {
	uc, _, tasks, project := taskFixture(t)

	task, _ := uc.Create(context.Background(), "owner-agent", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "t",
	})

	comment, err := uc.Comment(context.Background(), "viewer-agent", task.ID, "looks good")
	if err != nil {
		t.Fatalf("viewer comment failed: %v", err)
	}
	if comment.AgentID != "viewer-agent" {
		t.Fatalf("comment agent %s", comment.AgentID)
	}
	if len(tasks.comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(tasks.comments))
	}
}

func TestCommentNonMemberForbidden(t *testing.T) {
	uc, _, _, project := taskFixture(t)

	task, _ := uc.Create(context.Background(), "owner-agent", CreateTaskInput{
		ProjectID: project.ID,
		Title:     "t",
	})

	_, err := uc.Comment(context.Background(), "stranger", task.ID, "hi")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestListTasksRequiresProject(t *testing.T) {
	uc, _, _, _ := taskFixture(t)

	_, err := uc.List(context.Background(), TaskQuery{})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}
