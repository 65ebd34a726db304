package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"sheesh.app/server/internal/entity"
	"sheesh.app/server/pkg/apperror"
)

// GroupWithCount is a group row plus its current member count.
type GroupWithCount struct {
	entity.Group
	MemberCount int64
}

// MemberRow is a user joined with their membership in one group.
type MemberRow struct {
	entity.User
	JoinedAt time.Time
}

type GroupRepository interface {
	// CreateWithOwner inserts group and the creator's membership atomically.
	CreateWithOwner(ctx context.Context, group *entity.Group) error
	Update(ctx context.Context, group *entity.Group) error
	// Delete removes the memberships and then the group in one transaction.
	Delete(ctx context.Context, groupID uint) error
	FindByID(ctx context.Context, id uint) (*entity.Group, error)
	// FindPrivateByJoinCode only matches groups that are still private.
	FindPrivateByJoinCode(ctx context.Context, code string) (*entity.Group, error)
	JoinCodeExists(ctx context.Context, code string) (bool, error)

	ListWithCounts(ctx context.Context) ([]GroupWithCount, error)
	FindWithCountsByIDs(ctx context.Context, ids []uint) ([]GroupWithCount, error)
	SearchPublicByName(ctx context.Context, query string, limit int) ([]GroupWithCount, error)
	FindByMember(ctx context.Context, userID uint) ([]GroupWithCount, error)
	FindGroupIDsByMember(ctx context.Context, userID uint) ([]uint, error)

	ListMembers(ctx context.Context, groupID uint) ([]MemberRow, error)
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	// AddMember returns apperror.ErrConflict when the membership already exists.
	AddMember(ctx context.Context, groupID, userID uint) (*entity.GroupMember, error)
	// RemoveMember returns apperror.ErrNotFound when there was no such membership.
	RemoveMember(ctx context.Context, groupID, userID uint) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) CreateWithOwner(ctx context.Context, group *entity.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&entity.GroupMember{GroupID: group.ID, UserID: group.CreatedBy}).Error
	})
}

func (r *groupRepository) Update(ctx context.Context, group *entity.Group) error {
	return r.db.WithContext(ctx).
		Model(group).
		Select("name", "description", "is_private", "join_code").
		Updates(group).Error
}

func (r *groupRepository) Delete(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&entity.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Group{}, groupID).Error
	})
}

func (r *groupRepository) FindByID(ctx context.Context, id uint) (*entity.Group, error) {
	var group entity.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindPrivateByJoinCode(ctx context.Context, code string) (*entity.Group, error) {
	var group entity.Group
	err := r.db.WithContext(ctx).
		Where("join_code = ? AND is_private = ?", code, true).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Group{}).
		Where("join_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *groupRepository) withCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Group{}).
		Select("groups.*, COUNT(group_members.id) AS member_count").
		Joins("LEFT JOIN group_members ON group_members.group_id = groups.id").
		Group("groups.id")
}

func (r *groupRepository) ListWithCounts(ctx context.Context) ([]GroupWithCount, error) {
	var rows []GroupWithCount
	if err := r.withCounts(ctx).Order("groups.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindWithCountsByIDs keeps the order of ids and skips ids that no longer exist.
func (r *groupRepository) FindWithCountsByIDs(ctx context.Context, ids []uint) ([]GroupWithCount, error) {
	if len(ids) == 0 {
		return []GroupWithCount{}, nil
	}

	var rows []GroupWithCount
	if err := r.withCounts(ctx).Where("groups.id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]GroupWithCount, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]GroupWithCount, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

func (r *groupRepository) SearchPublicByName(ctx context.Context, query string, limit int) ([]GroupWithCount, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var rows []GroupWithCount
	err := r.withCounts(ctx).
		Where("groups.is_private = ?", false).
		Where("(LOWER(groups.name) LIKE ? OR LOWER(COALESCE(groups.description, '')) LIKE ?)", pattern, pattern).
		Order("groups.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *groupRepository) FindByMember(ctx context.Context, userID uint) ([]GroupWithCount, error) {
	ids, err := r.FindGroupIDsByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.FindWithCountsByIDs(ctx, ids)
}

func (r *groupRepository) FindGroupIDsByMember(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entity.GroupMember{}).
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uint) ([]MemberRow, error) {
	var rows []MemberRow
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Select("users.*, group_members.joined_at AS joined_at").
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.joined_at ASC").
		Order("users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uint) (*entity.GroupMember, error) {
	member := &entity.GroupMember{GroupID: groupID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrConflict
		}
		return nil, err
	}
	return member, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&entity.GroupMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}
