package auth

import (
	"context"

	"kpidash/internal/domain/scoring"
)

const (
	PermScoresRead       = "performance.scores.read"
	PermDashboardRead    = "performance.dashboard.read"
	PermDashboardAny     = "performance.dashboard.any"
	PermOrganizationRead = "performance.organization.read"
	PermScorecardExport  = "performance.scorecard.export"
	PermJobsRun          = "jobs.run"
)

var DefaultPermissions = []string{
	PermScoresRead,
	PermDashboardRead,
	PermDashboardAny,
	PermOrganizationRead,
	PermScorecardExport,
	PermJobsRun,
}

var RolePermissions = map[string][]string{
	string(scoring.RoleClinician): {
		PermScoresRead,
	},
	string(scoring.RoleDirector): {
		PermScoresRead,
		PermDashboardRead,
		PermScorecardExport,
	},
	string(scoring.RoleAdmin): {
		PermScoresRead,
		PermDashboardRead,
		PermDashboardAny,
		PermOrganizationRead,
		PermScorecardExport,
		PermJobsRun,
	},
	string(scoring.RoleSuperAdmin): {
		PermScoresRead,
		PermDashboardRead,
		PermDashboardAny,
		PermOrganizationRead,
		PermScorecardExport,
		PermJobsRun,
	},
}

type UserContext struct {
	UserID    string
	ProfileID string
	Role      string
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct {
	grants map[string]map[string]struct{}
}

func NewStaticPermissions() *StaticPermissions {
	grants := make(map[string]map[string]struct{}, len(RolePermissions))
	for role, perms := range RolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		grants[role] = set
	}
	return &StaticPermissions{grants: grants}
}

func (p *StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	_, ok := p.grants[role][permission]
	return ok, nil
}
