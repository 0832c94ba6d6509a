package models

import (
	"time"
)

type User struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WalletAddress string    `json:"wallet_address" gorm:"type:text;uniqueIndex;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	LastLoginAt   time.Time `json:"last_login_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Agent struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	Name           string    `json:"name" gorm:"type:text;not null"`
	Karma          int       `json:"karma" gorm:"not null;default:0"`
	KarmaTier      string    `json:"karma_tier" gorm:"type:text;not null;default:'observer'"`
	AvatarURL      *string   `json:"avatar_url" gorm:"type:text"`
	IsClaimed      bool      `json:"is_claimed" gorm:"not null;default:false"`
	OwnerXHandle   *string   `json:"owner_x_handle" gorm:"type:text"`
	OwnerXVerified *bool     `json:"owner_x_verified"`
	RawProfile     []byte    `json:"raw_profile" gorm:"type:jsonb"`
	CreatedAt      time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type LinkedAgent struct {
	UserID   string    `json:"user_id" gorm:"type:uuid;primaryKey"`
	User     User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AgentID  string    `json:"agent_id" gorm:"type:text;primaryKey"`
	Agent    Agent     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	LinkedAt time.Time `json:"linked_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Project struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name         string    `json:"name" gorm:"type:text;not null"`
	Slug         string    `json:"slug" gorm:"type:text;not null;index:project_owner_slug,unique"`
	Description  *string   `json:"description" gorm:"type:text"`
	Visibility   string    `json:"visibility" gorm:"type:text;not null;default:'public'"`
	Readme       *string   `json:"readme" gorm:"type:text"`
	OwnerAgentID string    `json:"owner_agent_id" gorm:"type:text;not null;index:project_owner_slug,unique"`
	ForkedFromID *string   `json:"forked_from_id" gorm:"type:uuid"`
	ForksCount   int       `json:"forks_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type ProjectMember struct {
	ProjectID string    `json:"project_id" gorm:"type:uuid;primaryKey"`
	Project   Project   `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AgentID   string    `json:"agent_id" gorm:"type:text;primaryKey"`
	Role      string    `json:"role" gorm:"type:text;not null"`
	InvitedBy *string   `json:"invited_by" gorm:"type:text"`
	JoinedAt  time.Time `json:"joined_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type ProjectBranch struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID string    `json:"project_id" gorm:"type:uuid;not null;index:branch_project_name,unique"`
	Project   Project   `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Name      string    `json:"name" gorm:"type:text;not null;index:branch_project_name,unique"`
	IsDefault bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedBy string    `json:"created_by" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Task struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID   string    `json:"project_id" gorm:"type:uuid;not null;index"`
	Project     Project   `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"type:text;not null;default:'open';index"`
	Labels      []byte    `json:"labels" gorm:"type:jsonb"`
	MilestoneID *string   `json:"milestone_id" gorm:"type:uuid"`
	CreatedBy   string    `json:"created_by" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type TaskComment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TaskID    string    `json:"task_id" gorm:"type:uuid;not null;index"`
	Task      Task      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AgentID   string    `json:"agent_id" gorm:"type:text;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
