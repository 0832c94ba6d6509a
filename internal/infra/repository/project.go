package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/infra/database/models"
	"github.com/clawdhub/clawdhub/internal/usecase"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) CreateWithOwner(ctx context.Context, project domain.Project) (domain.Project, error) {

	record := projectToModel(project)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		member := models.ProjectMember{
			ProjectID: record.ID,
			AgentID:   record.OwnerAgentID,
			Role:      string(domain.RoleOwner),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		branch := models.ProjectBranch{
			ProjectID: record.ID,
			Name:      domain.DefaultBranchName,
			IsDefault: true,
			CreatedBy: record.OwnerAgentID,
		}
		return tx.Create(&branch).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Project{}, domain.ConflictError{Code: "slug_exists"}
		}
		return domain.Project{}, domain.StorageError{Err: err}
	}

	return projectToDomain(record), nil
}

func (r *ProjectRepository) Fork(ctx context.Context, fork domain.Project, sourceID string) (domain.Project, error) {

	record := projectToModel(fork)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		result := tx.Model(&models.Project{}).
			Where("id = ?", sourceID).
			Update("forks_count", gorm.Expr("forks_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		member := models.ProjectMember{
			ProjectID: record.ID,
			AgentID:   record.OwnerAgentID,
			Role:      string(domain.RoleOwner),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		branch := models.ProjectBranch{
			ProjectID: record.ID,
			Name:      domain.DefaultBranchName,
			IsDefault: true,
			CreatedBy: record.OwnerAgentID,
		}
		return tx.Create(&branch).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Project{}, domain.NotFoundError{Resource: "project"}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Project{}, domain.ConflictError{Code: "slug_exists"}
		}
		return domain.Project{}, domain.StorageError{Err: err}
	}

	return projectToDomain(record), nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (domain.Project, error) {
	var record models.Project
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Project{}, domain.NotFoundError{Resource: "project"}
		}
		return domain.Project{}, domain.StorageError{Err: err}
	}
	return projectToDomain(record), nil
}

func (r *ProjectRepository) GetBySlug(ctx context.Context, ownerAgentID, slug string) (domain.Project, error) {
	var record models.Project
	err := r.db.WithContext(ctx).
		Where("owner_agent_id = ? AND slug = ?", ownerAgentID, slug).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Project{}, domain.NotFoundError{Resource: "project"}
		}
		return domain.Project{}, domain.StorageError{Err: err}
	}
	return projectToDomain(record), nil
}

func (r *ProjectRepository) List(ctx context.Context, query usecase.ProjectQuery) ([]domain.Project, error) {

	tx := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("visibility = ?", domain.VisibilityPublic)

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if query.OwnerAgentID != "" {
		tx = tx.Where("owner_agent_id = ?", query.OwnerAgentID)
	}

	var records []models.Project
	err := tx.
		Order("updated_at DESC").
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&records).Error
	if err != nil {
		return nil, domain.StorageError{Err: err}
	}

	projects := make([]domain.Project, 0, len(records))
	for _, record := range records {
		projects = append(projects, projectToDomain(record))
	}
	return projects, nil
}

func (r *ProjectRepository) Membership(ctx context.Context, projectID, agentID string) (domain.ProjectMember, error) {
	var record models.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND agent_id = ?", projectID, agentID).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProjectMember{}, domain.NotFoundError{Resource: "membership"}
		}
		return domain.ProjectMember{}, domain.StorageError{Err: err}
	}
	return domain.ProjectMember{
		ProjectID: record.ProjectID,
		AgentID:   record.AgentID,
		Role:      domain.Role(record.Role),
		InvitedBy: record.InvitedBy,
		JoinedAt:  record.JoinedAt,
	}, nil
}

func projectToModel(project domain.Project) models.Project {
	return models.Project{
		ID:           project.ID,
		Name:         project.Name,
		Slug:         project.Slug,
		Description:  project.Description,
		Visibility:   project.Visibility,
		Readme:       project.Readme,
		OwnerAgentID: project.OwnerAgentID,
		ForkedFromID: project.ForkedFromID,
		ForksCount:   project.ForksCount,
		UpdatedAt:    time.Now(),
	}
}

func projectToDomain(record models.Project) domain.Project {
	return domain.Project{
		ID:           record.ID,
		Name:         record.Name,
		Slug:         record.Slug,
		Description:  record.Description,
		Visibility:   record.Visibility,
		Readme:       record.Readme,
		OwnerAgentID: record.OwnerAgentID,
		ForkedFromID: record.ForkedFromID,
		ForksCount:   record.ForksCount,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
