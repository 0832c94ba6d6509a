package domain

const (
	RequesterUserCtxKey    = "hub-requesterUserId"
	RequesterAgentCtxKey   = "hub-requesterAgentId"
	RequesterAddressCtxKey = "hub-requesterAddress"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusClosed     = "closed"
)

const DefaultBranchName = "main"

// Role is a per-project membership role.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleMaintainer  Role = "maintainer"
	RoleContributor Role = "contributor"
	RoleViewer      Role = "viewer"
)

// Per-operation role allow-lists. There is deliberately no total order over
// roles; each operation enumerates exactly the roles it accepts.
var (
	TaskCreateRoles = []Role{RoleOwner, RoleMaintainer, RoleContributor}
	TaskUpdateRoles = []Role{RoleOwner, RoleMaintainer}

	// TaskCommentRoles: any membership row, regardless of role.
	TaskCommentRoles = []Role{RoleOwner, RoleMaintainer, RoleContributor, RoleViewer}
)

// RoleAllowed reports whether role is in the allow-list.
func RoleAllowed(role Role, allowed []Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// Config is the server identity configuration shared across services.
type Config struct {
	FQDN       string `yaml:"fqdn"`
	AppOrigin  string `yaml:"appOrigin"`
	PrivateKey string `yaml:"privatekey"`
	Production bool   `yaml:"production"`

	// Address is derived from PrivateKey at config load.
	Address string `yaml:"-"`
}
