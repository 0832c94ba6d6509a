package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/infra/database/models"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) PrimaryAgent(ctx context.Context, userID string) (string, error) {

	var records []models.LinkedAgent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&records).Error
	if err != nil {
		return "", domain.StorageError{Err: err}
	}

	links := make([]domain.LinkedAgent, 0, len(records))
	for _, record := range records {
		links = append(links, domain.LinkedAgent{
			UserID:   record.UserID,
			AgentID:  record.AgentID,
			LinkedAt: record.LinkedAt,
		})
	}

	primary, ok := domain.PrimaryLink(links)
	if !ok {
		return "", nil
	}
	return primary, nil
}

// Link records a user→agent link. Linking the same pair twice is a no-op.
func (r *LinkRepository) Link(ctx context.Context, userID, agentID string) error {
	record := models.LinkedAgent{
		UserID:  userID,
		AgentID: agentID,
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		FirstOrCreate(&record).Error
	if err != nil {
		return domain.StorageError{Err: err}
	}
	return nil
}
