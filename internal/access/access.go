package access

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/siteoptic/audit-api/internal/data"
	"github.com/siteoptic/audit-api/internal/ims"
	"github.com/siteoptic/audit-api/internal/models"
)

// CheckerInterface is the access-control predicate consulted by every
// controller before entity details are returned or mutated.
type CheckerInterface interface {
	CanAccessOrg(ctx context.Context, profile *ims.Profile, imsOrgID string) (bool, error)
	CanAccessSite(ctx context.Context, profile *ims.Profile, site *models.Site) (bool, error)
	IsOrgAdmin(ctx context.Context, profile *ims.Profile, imsOrgID string) (bool, error)
}

// Checker resolves access from org membership and role ACLs.
type Checker struct {
	roles   data.RoleCollection
	members data.RoleMemberCollection
}

var _ CheckerInterface = (*Checker)(nil)

// NewChecker creates a new access checker
func NewChecker(roles data.RoleCollection, members data.RoleMemberCollection) *Checker {
	return &Checker{roles: roles, members: members}
}

// CanAccessOrg reports whether the profile belongs to the IMS org.
func (c *Checker) CanAccessOrg(_ context.Context, profile *ims.Profile, imsOrgID string) (bool, error) {
	if profile == nil || imsOrgID == "" {
		return false, nil
	}
	for _, org := range profile.Orgs {
		if org == imsOrgID {
			return true, nil
		}
	}
	return false, nil
}

// CanAccessSite reports whether the profile belongs to the site's org.
func (c *Checker) CanAccessSite(ctx context.Context, profile *ims.Profile, site *models.Site) (bool, error) {
	if site == nil {
		return false, nil
	}
	return c.CanAccessOrg(ctx, profile, site.IMSOrgID)
}

// IsOrgAdmin reports whether the profile is a member of a role in the
// org whose ACL grants every action ("*").
func (c *Checker) IsOrgAdmin(ctx context.Context, profile *ims.Profile, imsOrgID string) (bool, error) {
	ok, err := c.CanAccessOrg(ctx, profile, imsOrgID)
	if err != nil || !ok {
		return false, err
	}

	roles, err := c.roles.AllByIMSOrgID(ctx, imsOrgID)
	if err != nil {
		return false, err
	}

	for i := range roles {
		if !grantsAll(&roles[i]) {
			continue
		}
		members, err := c.members.AllByRoleID(ctx, roles[i].ID)
		if err != nil {
			return false, err
		}
		for _, member := range members {
			if identityMatches(member.Identity, profile) {
				return true, nil
			}
		}
	}

	return false, nil
}

func grantsAll(role *models.Role) bool {
	var entries []models.ACLEntry
	if err := json.Unmarshal([]byte(role.ACL), &entries); err != nil {
		return false
	}
	for _, entry := range entries {
		for _, action := range entry.Actions {
			if action == "*" {
				return true
			}
		}
	}
	return false
}

func identityMatches(identity string, profile *ims.Profile) bool {
	if identity == profile.UserID {
		return true
	}
	return profile.Email != "" && strings.EqualFold(identity, profile.Email)
}
