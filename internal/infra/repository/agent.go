package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/infra/database/models"
)

const agentCacheTTL = 300 // seconds

type AgentRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewAgentRepository creates the agent repository. mc may be nil, in which
// case reads always hit postgres.
func NewAgentRepository(db *gorm.DB, mc *memcache.Client) *AgentRepository {
	return &AgentRepository{db: db, mc: mc}
}

func (r *AgentRepository) Upsert(ctx context.Context, agent domain.Agent) error {

	record := models.Agent{
		ID:             agent.ID,
		Name:           agent.Name,
		Karma:          agent.Karma,
		KarmaTier:      string(agent.KarmaTier),
		AvatarURL:      agent.AvatarURL,
		IsClaimed:      agent.IsClaimed,
		OwnerXHandle:   agent.OwnerXHandle,
		OwnerXVerified: agent.OwnerXVerified,
		RawProfile:     agent.RawProfile,
		UpdatedAt:      time.Now(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "karma", "karma_tier", "avatar_url", "is_claimed",
			"owner_x_handle", "owner_x_verified", "raw_profile", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		return domain.StorageError{Err: err}
	}

	if r.mc != nil {
		err := r.mc.Delete(agentCacheKey(agent.ID))
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			slog.WarnContext(ctx, "failed to invalidate agent cache", slog.String("error", err.Error()))
		}
	}

	return nil
}

func (r *AgentRepository) Get(ctx context.Context, id string) (domain.Agent, error) {

	if r.mc != nil {
		item, err := r.mc.Get(agentCacheKey(id))
		if err == nil {
			var agent domain.Agent
			if json.Unmarshal(item.Value, &agent) == nil {
				return agent, nil
			}
		}
	}

	var record models.Agent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Agent{}, domain.NotFoundError{Resource: "agent"}
		}
		return domain.Agent{}, domain.StorageError{Err: err}
	}

	agent := agentToDomain(record)

	if r.mc != nil {
		body, err := json.Marshal(agent)
		if err == nil {
			r.mc.Set(&memcache.Item{
				Key:        agentCacheKey(id),
				Value:      body,
				Expiration: agentCacheTTL,
			})
		}
	}

	return agent, nil
}

func agentCacheKey(id string) string {
	return "agent:" + id
}

func agentToDomain(record models.Agent) domain.Agent {
	return domain.Agent{
		ID:             record.ID,
		Name:           record.Name,
		Karma:          record.Karma,
		KarmaTier:      domain.KarmaTier(record.KarmaTier),
		AvatarURL:      record.AvatarURL,
		IsClaimed:      record.IsClaimed,
		OwnerXHandle:   record.OwnerXHandle,
		OwnerXVerified: record.OwnerXVerified,
		RawProfile:     record.RawProfile,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
