package models

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleCollector Role = "COLLECTOR"
)

// DashboardPath returns the post-login redirect target for a role. Unknown
// roles fall through to the user dashboard.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/dashboard-admin.html"
	case RoleCollector:
		return "/dashboard-collector.html"
	default:
		return "/dashboard-user.html"
	}
}

// CanCollect reports whether the role may record waste submissions.
func (r Role) CanCollect() bool {
	return r == RoleCollector || r == RoleAdmin
}
