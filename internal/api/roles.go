package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/siteoptic/audit-api/internal/models"
)

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	imsOrgID := r.URL.Query().Get("imsOrgId")
	if imsOrgID == "" {
		badRequest(w, "imsOrgId query parameter is required")
		return
	}

	ok, err := h.access.CanAccessOrg(r.Context(), profileFrom(r), imsOrgID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !ok {
		forbidden(w)
		return
	}

	roles, err := h.collections.Roles.AllByIMSOrgID(r.Context(), imsOrgID)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roles)
}

type createRoleRequest struct {
	IMSOrgID string            `json:"imsOrgId"`
	Name     string            `json:"name"`
	ACL      []models.ACLEntry `json:"acl"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IMSOrgID == "" || req.Name == "" {
		badRequest(w, "imsOrgId and name are required")
		return
	}

	if !h.requireOrgAdmin(w, r, req.IMSOrgID) {
		return
	}

	acl, err := json.Marshal(req.ACL)
	if err != nil {
		badRequest(w, "Invalid ACL")
		return
	}

	now := time.Now().UTC()
	role := &models.Role{
		ID:        uuid.NewString(),
		IMSOrgID:  req.IMSOrgID,
		Name:      req.Name,
		ACL:       models.JSONText(acl),
		CreatedBy: profileFrom(r).UserID,
		UpdatedBy: profileFrom(r).UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.collections.Roles.Create(r.Context(), role); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, role)
}

// requireOrgAdmin enforces the admin predicate, writing 403 on denial.
func (h *Handler) requireOrgAdmin(w http.ResponseWriter, r *http.Request, imsOrgID string) bool {
	ok, err := h.access.IsOrgAdmin(r.Context(), profileFrom(r), imsOrgID)
	if err != nil {
		internalError(w, err)
		return false
	}
	if !ok {
		forbidden(w)
		return false
	}
	return true
}

// requireRole loads a role and enforces org access for reads.
func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request) *models.Role {
	roleID, ok := pathUUID(w, r, "roleId")
	if !ok {
		return nil
	}

	role, err := h.collections.Roles.FindByID(r.Context(), roleID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if role == nil {
		notFound(w, "Role not found")
		return nil
	}

	ok, err = h.access.CanAccessOrg(r.Context(), profileFrom(r), role.IMSOrgID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if !ok {
		forbidden(w)
		return nil
	}
	return role
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role := h.requireRole(w, r)
	if role == nil {
		return
	}
	respondJSON(w, http.StatusOK, role)
}

type patchRoleRequest struct {
	Name *string            `json:"name"`
	ACL  *[]models.ACLEntry `json:"acl"`
}

func (h *Handler) patchRole(w http.ResponseWriter, r *http.Request) {
	role := h.requireRole(w, r)
	if role == nil {
		return
	}
	if !h.requireOrgAdmin(w, r, role.IMSOrgID) {
		return
	}

	var req patchRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.ACL == nil {
		badRequest(w, "No updates provided")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			badRequest(w, "name must not be empty")
			return
		}
		role.Name = *req.Name
	}
	if req.ACL != nil {
		acl, err := json.Marshal(*req.ACL)
		if err != nil {
			badRequest(w, "Invalid ACL")
			return
		}
		role.ACL = models.JSONText(acl)
	}
	role.UpdatedBy = profileFrom(r).UserID
	role.UpdatedAt = time.Now().UTC()

	if err := h.collections.Roles.Save(r.Context(), role); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	role := h.requireRole(w, r)
	if role == nil {
		return
	}
	if !h.requireOrgAdmin(w, r, role.IMSOrgID) {
		return
	}

	if err := h.collections.Roles.Remove(r.Context(), role.ID); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type addMemberRequest struct {
	Identity string `json:"identity"`
}

func (h *Handler) addRoleMember(w http.ResponseWriter, r *http.Request) {
	role := h.requireRole(w, r)
	if role == nil {
		return
	}
	if !h.requireOrgAdmin(w, r, role.IMSOrgID) {
		return
	}

	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Identity == "" {
		badRequest(w, "identity is required")
		return
	}

	member := &models.RoleMember{
		ID:        uuid.NewString(),
		RoleID:    role.ID,
		Identity:  req.Identity,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.collections.RoleMembers.Create(r.Context(), member); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

func (h *Handler) removeRoleMember(w http.ResponseWriter, r *http.Request) {
	role := h.requireRole(w, r)
	if role == nil {
		return
	}
	if !h.requireOrgAdmin(w, r, role.IMSOrgID) {
		return
	}

	memberID, ok := pathUUID(w, r, "memberId")
	if !ok {
		return
	}

	member, err := h.collections.RoleMembers.FindByID(r.Context(), memberID)
	if err != nil {
		internalError(w, err)
		return
	}
	if member == nil || member.RoleID != role.ID {
		notFound(w, "Role member not found")
		return
	}

	if err := h.collections.RoleMembers.Remove(r.Context(), member.ID); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
