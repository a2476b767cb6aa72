package api

import (
	"net/http"

	"github.com/siteoptic/audit-api/internal/models"
)

type userDetailsResponse struct {
	UserID string        `json:"userId"`
	Email  string        `json:"email"`
	Orgs   []string      `json:"orgs"`
	Roles  []models.Role `json:"roles"`
}

// getUserDetails returns the authenticated caller's profile together
// with the roles granted to them across their orgs.
func (h *Handler) getUserDetails(w http.ResponseWriter, r *http.Request) {
	profile := profileFrom(r)

	memberships, err := h.collections.RoleMembers.AllByIdentity(r.Context(), profile.UserID)
	if err != nil {
		internalError(w, err)
		return
	}
	if profile.Email != "" {
		byEmail, err := h.collections.RoleMembers.AllByIdentity(r.Context(), profile.Email)
		if err != nil {
			internalError(w, err)
			return
		}
		memberships = append(memberships, byEmail...)
	}

	seen := make(map[string]bool)
	roles := make([]models.Role, 0, len(memberships))
	for _, membership := range memberships {
		if seen[membership.RoleID] {
			continue
		}
		seen[membership.RoleID] = true

		role, err := h.collections.Roles.FindByID(r.Context(), membership.RoleID)
		if err != nil {
			internalError(w, err)
			return
		}
		if role != nil {
			roles = append(roles, *role)
		}
	}

	respondJSON(w, http.StatusOK, userDetailsResponse{
		UserID: profile.UserID,
		Email:  profile.Email,
		Orgs:   profile.Orgs,
		Roles:  roles,
	})
}
