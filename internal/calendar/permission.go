package calendar

import "github.com/teemow/calendart/internal/google"

// Role is an ACL role of Google Calendar.
type Role string

const (
	RoleNone           Role = "none"
	RoleFreeBusyReader Role = "freeBusyReader"
	RoleReader         Role = "reader"
	RoleWriter         Role = "writer"
	RoleOwner          Role = "owner"
)

// UserPermission grants a user a role on a calendar.
type UserPermission struct {
	Calendar *Calendar
	User     *google.User
	Role     Role
}

// CanRead reports whether event details are visible to the user.
func (p UserPermission) CanRead() bool {
	return p.Role == RoleReader || p.CanWrite()
}

func (p UserPermission) CanWrite() bool {
	return p.Role == RoleWriter || p.Role == RoleOwner
}

// CanShare reports whether the user may change the ACL.
func (p UserPermission) CanShare() bool {
	return p.Role == RoleOwner
}
