package rbac

type Role string
type Action string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleOwner     Role = "owner"
)

const (
	ActionView    Action = "view"
	ActionResolve Action = "resolve"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleOwner, RoleModerator:
		return true
	case RoleMember:
		return action == ActionView
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleMember, RoleModerator, RoleOwner:
		return Role(role)
	default:
		return RoleMember
	}
}
