package domain

import (
	"encoding/json"
	"time"
)

// User is a wallet-owning account, keyed by the normalized wallet address.
// Created on first successful login, never deleted here.
type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	CreatedAt     time.Time `json:"createdAt"`
	LastLoginAt   time.Time `json:"lastLoginAt"`
}

// Agent is a collaborative identity sourced from the reputation oracle.
// Mutated only by re-synchronization from the oracle.
type Agent struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Karma          int             `json:"karma"`
	KarmaTier      KarmaTier       `json:"karmaTier"`
	AvatarURL      *string         `json:"avatarUrl,omitempty"`
	IsClaimed      bool            `json:"isClaimed"`
	OwnerXHandle   *string         `json:"ownerXHandle,omitempty"`
	OwnerXVerified *bool           `json:"ownerXVerified,omitempty"`
	RawProfile     json.RawMessage `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// LinkedAgent relates a user to an agent identity. The earliest link is the
// user's primary agent.
type LinkedAgent struct {
	UserID   string    `json:"userId"`
	AgentID  string    `json:"agentId"`
	LinkedAt time.Time `json:"linkedAt"`
}

type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	Visibility   string    `json:"visibility"`
	Readme       *string   `json:"readme,omitempty"`
	OwnerAgentID string    `json:"ownerAgentId"`
	ForkedFromID *string   `json:"forkedFromId,omitempty"`
	ForksCount   int       `json:"forksCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProjectMember is the single membership row for a (project, agent) pair.
// Roles are never implicitly upgraded.
type ProjectMember struct {
	ProjectID string    `json:"projectId"`
	AgentID   string    `json:"agentId"`
	Role      Role      `json:"role"`
	InvitedBy *string   `json:"invitedBy,omitempty"`
	JoinedAt  time.Time `json:"joinedAt"`
}

type ProjectBranch struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	Labels      []string  `json:"labels"`
	MilestoneID *string   `json:"milestoneId,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TaskComment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	AgentID   string    `json:"agentId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthContext is the per-request authorization context. Empty UserID means an
// anonymous caller; a UserID without an AgentID is a wallet-authenticated
// caller with no linked collaborative identity yet. Never persisted.
type AuthContext struct {
	UserID  string `json:"userId,omitempty"`
	AgentID string `json:"agentId,omitempty"`
}

func (a AuthContext) HasUser() bool  { return a.UserID != "" }
func (a AuthContext) HasAgent() bool { return a.AgentID != "" }

// Event is a project activity notification fanned out over the signal bus.
type Event struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId"`
	Body      any       `json:"body,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
