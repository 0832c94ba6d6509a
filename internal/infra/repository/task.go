package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/infra/database/models"
	"github.com/clawdhub/clawdhub/internal/usecase"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {

	labels, err := json.Marshal(task.Labels)
	if err != nil {
		return domain.Task{}, domain.StorageError{Err: err}
	}

	record := models.Task{
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Labels:      labels,
		MilestoneID: task.MilestoneID,
		CreatedBy:   task.CreatedBy,
		UpdatedAt:   time.Now(),
	}

	err = r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return domain.Task{}, domain.StorageError{Err: err}
	}

	return taskToDomain(record), nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (domain.Task, error) {
	var record models.Task
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Task{}, domain.NotFoundError{Resource: "task"}
		}
		return domain.Task{}, domain.StorageError{Err: err}
	}
	return taskToDomain(record), nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, patch usecase.TaskPatch) (domain.Task, error) {

	assignments := map[string]any{"updated_at": time.Now()}
	if patch.Title != nil {
		assignments["title"] = *patch.Title
	}
	if patch.Description != nil {
		assignments["description"] = *patch.Description
	}
	if patch.Status != nil {
		assignments["status"] = *patch.Status
	}
	if patch.Labels != nil {
		labels, err := json.Marshal(*patch.Labels)
		if err != nil {
			return domain.Task{}, domain.StorageError{Err: err}
		}
		assignments["labels"] = labels
	}
	if patch.MilestoneID != nil {
		assignments["milestone_id"] = *patch.MilestoneID
	}

	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(assignments)
	if result.Error != nil {
		return domain.Task{}, domain.StorageError{Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}

	return r.Get(ctx, id)
}

func (r *TaskRepository) List(ctx context.Context, query usecase.TaskQuery) ([]domain.Task, error) {

	tx := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("project_id = ?", query.ProjectID)

	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}

	var records []models.Task
	err := tx.
		Order("created_at DESC").
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&records).Error
	if err != nil {
		return nil, domain.StorageError{Err: err}
	}

	tasks := make([]domain.Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, taskToDomain(record))
	}
	return tasks, nil
}

func (r *TaskRepository) AddComment(ctx context.Context, comment domain.TaskComment) (domain.TaskComment, error) {

	record := models.TaskComment{
		TaskID:  comment.TaskID,
		AgentID: comment.AgentID,
		Content: comment.Content,
	}

	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return domain.TaskComment{}, domain.StorageError{Err: err}
	}

	return domain.TaskComment{
		ID:        record.ID,
		TaskID:    record.TaskID,
		AgentID:   record.AgentID,
		Content:   record.Content,
		CreatedAt: record.CreatedAt,
	}, nil
}

func taskToDomain(record models.Task) domain.Task {
	labels := []string{}
	if len(record.Labels) > 0 {
		json.Unmarshal(record.Labels, &labels)
	}
	return domain.Task{
		ID:          record.ID,
		ProjectID:   record.ProjectID,
		Title:       record.Title,
		Description: record.Description,
		Status:      record.Status,
		Labels:      labels,
		MilestoneID: record.MilestoneID,
		CreatedBy:   record.CreatedBy,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
