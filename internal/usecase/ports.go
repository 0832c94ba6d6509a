package usecase

import (
	"context"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
)

// IdentityOracle abstracts the wallet-auth provider and the reputation
// oracle behind typed results.
type IdentityOracle interface {
	GenerateLoginPayload(ctx context.Context, address string, chainID *int64) (clawdhub.LoginPayload, error)
	VerifyLoginPayload(ctx context.Context, payload clawdhub.LoginPayload, signature string) (string, error)
	VerifyIdentity(ctx context.Context, token string) (clawdhub.AgentProfile, error)
}

// UserRepository persists wallet users keyed by normalized address.
type UserRepository interface {
	// Upsert creates the user row or touches last_login_at. Idempotent.
	Upsert(ctx context.Context, walletAddress string) (domain.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (domain.User, error)
}

// AgentRepository persists agent profile snapshots keyed by oracle id.
type AgentRepository interface {
	// Upsert creates or replaces the agent row, overwriting mutable fields
	// and the raw provider payload.
	Upsert(ctx context.Context, agent domain.Agent) error
	Get(ctx context.Context, id string) (domain.Agent, error)
}

// LinkRepository maintains the user→agent linkage.
type LinkRepository interface {
	// PrimaryAgent returns the agent id with the earliest linked_at for the
	// user, or "" (and no error) when the user has no linked agent.
	PrimaryAgent(ctx context.Context, userID string) (string, error)
	// Link records a user→agent link. Linking the same pair twice is a no-op.
	Link(ctx context.Context, userID, agentID string) error
}

type ProjectQuery struct {
	Search       string
	OwnerAgentID string
	Limit        int
	Offset       int
}

// ProjectRepository persists projects, memberships and branches.
type ProjectRepository interface {
	// CreateWithOwner creates the project, its owner membership row and the
	// default branch in one transaction.
	CreateWithOwner(ctx context.Context, project domain.Project) (domain.Project, error)
	// Fork creates the fork (with owner membership and default branch) and
	// increments the source project's fork count, in one transaction.
	Fork(ctx context.Context, fork domain.Project, sourceID string) (domain.Project, error)
	Get(ctx context.Context, id string) (domain.Project, error)
	GetBySlug(ctx context.Context, ownerAgentID, slug string) (domain.Project, error)
	List(ctx context.Context, query ProjectQuery) ([]domain.Project, error)
	Membership(ctx context.Context, projectID, agentID string) (domain.ProjectMember, error)
}

type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Labels      *[]string
	MilestoneID *string
}

type TaskQuery struct {
	ProjectID string
	Status    string
	Limit     int
	Offset    int
}

// TaskRepository persists tasks and their comments.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Get(ctx context.Context, id string) (domain.Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (domain.Task, error)
	List(ctx context.Context, query TaskQuery) ([]domain.Task, error)
	AddComment(ctx context.Context, comment domain.TaskComment) (domain.TaskComment, error)
}

// EventPublisher fans project events out to realtime subscribers. Publish
// failures never fail the originating operation.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
