package data

import (
	"context"

	"gorm.io/gorm"

	"github.com/siteoptic/audit-api/internal/models"
)

type roleRepository struct {
	db *gorm.DB
}

func (r *roleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	return findOne[models.Role](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *roleRepository) AllByIMSOrgID(ctx context.Context, imsOrgID string) ([]models.Role, error) {
	var rows []models.Role
	err := r.db.WithContext(ctx).
		Where("ims_org_id = ?", imsOrgID).
		Order("name asc").
		Find(&rows).Error
	return rows, err
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepository) Save(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *roleRepository) Remove(ctx context.Context, id string) error {
	// Memberships go with the role.
	if err := r.db.WithContext(ctx).Delete(&models.RoleMember{}, "role_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Role{}, "id = ?", id).Error
}

type roleMemberRepository struct {
	db *gorm.DB
}

func (r *roleMemberRepository) FindByID(ctx context.Context, id string) (*models.RoleMember, error) {
	return findOne[models.RoleMember](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *roleMemberRepository) AllByRoleID(ctx context.Context, roleID string) ([]models.RoleMember, error) {
	var rows []models.RoleMember
	err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *roleMemberRepository) AllByIdentity(ctx context.Context, identity string) ([]models.RoleMember, error) {
	var rows []models.RoleMember
	err := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		Find(&rows).Error
	return rows, err
}

func (r *roleMemberRepository) Create(ctx context.Context, member *models.RoleMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *roleMemberRepository) Remove(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.RoleMember{}, "id = ?", id).Error
}
