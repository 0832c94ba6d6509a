package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
)

// --- in-memory repositories ---

type memUserRepo struct {
	users       map[string]domain.User
	upsertCalls int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

func (m *memUserRepo) Upsert(ctx context.Context, walletAddress string) (domain.User, error) {
	m.upsertCalls++
	u, ok := m.users[walletAddress]
	if !ok {
		u = domain.User{
			ID:            fmt.Sprintf("user-%d", len(m.users)+1),
			WalletAddress: walletAddress,
			CreatedAt:     time.Now(),
		}
	}
	u.LastLoginAt = time.Now()
	m.users[walletAddress] = u
	return u, nil
}

func (m *memUserRepo) GetByWallet(ctx context.Context, walletAddress string) (domain.User, error) {
	u, ok := m.users[walletAddress]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

type memAgentRepo struct {
	agents map[string]domain.Agent
	getErr error
}

func newMemAgentRepo() *memAgentRepo {
	return &memAgentRepo{agents: map[string]domain.Agent{}}
}

func (m *memAgentRepo) Upsert(ctx context.Context, agent domain.Agent) error {
	m.agents[agent.ID] = agent
	return nil
}

func (m *memAgentRepo) Get(ctx context.Context, id string) (domain.Agent, error) {
	if m.getErr != nil {
		return domain.Agent{}, m.getErr
	}
	a, ok := m.agents[id]
	if !ok {
		return domain.Agent{}, domain.NotFoundError{Resource: "agent"}
	}
	return a, nil
}

type memLinkRepo struct {
	links map[string][]domain.LinkedAgent
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{links: map[string][]domain.LinkedAgent{}}
}

func (m *memLinkRepo) PrimaryAgent(ctx context.Context, userID string) (string, error) {
	agentID, _ := domain.PrimaryLink(m.links[userID])
	return agentID, nil
}

func (m *memLinkRepo) Link(ctx context.Context, userID, agentID string) error {
	for _, link := range m.links[userID] {
		if link.AgentID == agentID {
			return nil
		}
	}
	m.links[userID] = append(m.links[userID], domain.LinkedAgent{
		UserID:   userID,
		AgentID:  agentID,
		LinkedAt: time.Now(),
	})
	return nil
}

type memProjectRepo struct {
	projects    map[string]domain.Project
	memberships map[string]domain.ProjectMember
	seq         int
	getErr      error
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{
		projects:    map[string]domain.Project{},
		memberships: map[string]domain.ProjectMember{},
	}
}

func memberKey(projectID, agentID string) string {
	return projectID + "|" + agentID
}

func (m *memProjectRepo) addMember(projectID, agentID string, role domain.Role) {
	m.memberships[memberKey(projectID, agentID)] = domain.ProjectMember{
		ProjectID: projectID,
		AgentID:   agentID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
}

func (m *memProjectRepo) CreateWithOwner(ctx context.Context, project domain.Project) (domain.Project, error) {
	m.seq++
	project.ID = fmt.Sprintf("project-%d", m.seq)
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	m.projects[project.ID] = project
	m.addMember(project.ID, project.OwnerAgentID, domain.RoleOwner)
	return project, nil
}

func (m *memProjectRepo) Fork(ctx context.Context, fork domain.Project, sourceID string) (domain.Project, error) {
	source, ok := m.projects[sourceID]
	if !ok {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}
	created, err := m.CreateWithOwner(ctx, fork)
	if err != nil {
		return domain.Project{}, err
	}
	source.ForksCount++
	m.projects[sourceID] = source
	return created, nil
}

func (m *memProjectRepo) Get(ctx context.Context, id string) (domain.Project, error) {
	if m.getErr != nil {
		return domain.Project{}, m.getErr
	}
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}
	return p, nil
}

func (m *memProjectRepo) GetBySlug(ctx context.Context, ownerAgentID, slug string) (domain.Project, error) {
	for _, p := range m.projects {
		if p.OwnerAgentID == ownerAgentID && p.Slug == slug {
			return p, nil
		}
	}
	return domain.Project{}, domain.NotFoundError{Resource: "project"}
}

func (m *memProjectRepo) List(ctx context.Context, query ProjectQuery) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range m.projects {
		if p.Visibility != domain.VisibilityPublic {
			continue
		}
		if query.OwnerAgentID != "" && p.OwnerAgentID != query.OwnerAgentID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memProjectRepo) Membership(ctx context.Context, projectID, agentID string) (domain.ProjectMember, error) {
	member, ok := m.memberships[memberKey(projectID, agentID)]
	if !ok {
		return domain.ProjectMember{}, domain.NotFoundError{Resource: "membership"}
	}
	return member, nil
}

type memTaskRepo struct {
	tasks    map[string]domain.Task
	comments []domain.TaskComment
	seq      int
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]domain.Task{}}
}

func (m *memTaskRepo) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	m.seq++
	task.ID = fmt.Sprintf("task-%d", m.seq)
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memTaskRepo) Get(ctx context.Context, id string) (domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}
	return t, nil
}

func (m *memTaskRepo) Update(ctx context.Context, id string, patch TaskPatch) (domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Labels != nil {
		t.Labels = *patch.Labels
	}
	if patch.MilestoneID != nil {
		t.MilestoneID = patch.MilestoneID
	}
	t.UpdatedAt = time.Now()
	m.tasks[id] = t
	return t, nil
}

func (m *memTaskRepo) List(ctx context.Context, query TaskQuery) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range m.tasks {
		if t.ProjectID != query.ProjectID {
			continue
		}
		if query.Status != "" && t.Status != query.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memTaskRepo) AddComment(ctx context.Context, comment domain.TaskComment) (domain.TaskComment, error) {
	comment.ID = fmt.Sprintf("comment-%d", len(m.comments)+1)
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, comment)
	return comment, nil
}

// --- oracle stub and signal recorder ---

type stubOracle struct {
	payload    clawdhub.LoginPayload
	payloadErr error

	verifiedAddress string
	verifyErr       error

	profile    clawdhub.AgentProfile
	profileErr error
}

func (s *stubOracle) GenerateLoginPayload(ctx context.Context, address string, chainID *int64) (clawdhub.LoginPayload, error) {
	return s.payload, s.payloadErr
}

func (s *stubOracle) VerifyLoginPayload(ctx context.Context, payload clawdhub.LoginPayload, signature string) (string, error) {
	if s.verifyErr != nil {
		return "", s.verifyErr
	}
	return s.verifiedAddress, nil
}

func (s *stubOracle) VerifyIdentity(ctx context.Context, token string) (clawdhub.AgentProfile, error) {
	if s.profileErr != nil {
		return clawdhub.AgentProfile{}, s.profileErr
	}
	return s.profile, nil
}

type recordingSignal struct {
	events []domain.Event
}

func (r *recordingSignal) Publish(ctx context.Context, event domain.Event) error {
	r.events = append(r.events, event)
	return nil
}
