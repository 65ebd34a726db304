package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"sheesh.app/server/internal/entity"
	groupDto "sheesh.app/server/internal/modules/group/dto"
	groupRepo "sheesh.app/server/internal/modules/group/repository"
	notifService "sheesh.app/server/internal/modules/notification/service"
	searchService "sheesh.app/server/internal/modules/search/service"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/ratelimit"
)

const (
	JoinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	JoinCodeLength   = 6

	joinCodeAttempts   = 5
	defaultSearchLimit = 20
)

var (
	errGroupNotFound = apperror.New(http.StatusNotFound, "group not found", apperror.ErrNotFound)
	errNotCreator    = apperror.New(http.StatusForbidden, "only the group creator can do that", apperror.ErrForbidden)
)

type GroupService interface {
	CreateGroup(ctx context.Context, userID uint, req groupDto.CreateGroupRequest) (*groupDto.GroupResponse, error)
	UpdateGroup(ctx context.Context, userID, groupID uint, req groupDto.UpdateGroupRequest) (*groupDto.GroupResponse, error)
	DeleteGroup(ctx context.Context, userID, groupID uint) error
	ListGroups(ctx context.Context, viewerID uint) ([]groupDto.GroupResponse, error)
	SearchGroups(ctx context.Context, viewerID uint, query groupDto.SearchGroupsQuery) ([]groupDto.GroupResponse, error)
	GetUserGroups(ctx context.Context, viewerID, userID uint) ([]groupDto.GroupResponse, error)
	GetMembers(ctx context.Context, viewerID, groupID uint) ([]groupDto.MemberResponse, error)
	JoinGroup(ctx context.Context, userID, groupID uint) (*groupDto.MembershipResponse, error)
	JoinByCode(ctx context.Context, userID uint, code string) (*groupDto.MembershipResponse, error)
	// RemoveMember lets a member leave, or the creator remove anyone.
	RemoveMember(ctx context.Context, actorID, groupID, userID uint) error
	// JoinPublicGroup adds userID to the public community group; already being a member is fine.
	JoinPublicGroup(ctx context.Context, userID uint) error
}

type groupService struct {
	repo          groupRepo.GroupRepository
	index         searchService.GroupIndex
	notifier      notifService.NotificationService
	redisClient   *redis.Client
	sanitizer     *bluemonday.Policy
	publicGroupID uint
	joinCodeLimit time.Duration
}

// NewGroupService builds the membership service. index may be nil, in which case search
// falls back to SQL.
func NewGroupService(
	repo groupRepo.GroupRepository,
	index searchService.GroupIndex,
	notifier notifService.NotificationService,
	redisClient *redis.Client,
	publicGroupID uint,
	joinCodeLimit time.Duration,
) GroupService {
	return &groupService{
		repo:          repo,
		index:         index,
		notifier:      notifier,
		redisClient:   redisClient,
		sanitizer:     bluemonday.StrictPolicy(),
		publicGroupID: publicGroupID,
		joinCodeLimit: joinCodeLimit,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, userID uint, req groupDto.CreateGroupRequest) (*groupDto.GroupResponse, error) {
	name := s.clean(req.Name)
	if name == "" {
		return nil, apperror.New(http.StatusBadRequest, "group name is required", apperror.ErrInvalidInput)
	}

	group := &entity.Group{
		Name:        name,
		Description: s.cleanPtr(req.Description),
		CreatedBy:   userID,
		IsPrivate:   req.IsPrivate,
	}

	if group.IsPrivate {
		code, err := s.newJoinCode(ctx)
		if err != nil {
			return nil, err
		}
		group.JoinCode = &code
	}

	if err := s.repo.CreateWithOwner(ctx, group); err != nil {
		return nil, err
	}
	log.Printf("👥 Group %d %q created by user %d (private=%t)", group.ID, group.Name, userID, group.IsPrivate)

	s.indexGroup(group)

	resp := s.toResponse(groupRepo.GroupWithCount{Group: *group, MemberCount: 1}, true)
	return &resp, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, userID, groupID uint, req groupDto.UpdateGroupRequest) (*groupDto.GroupResponse, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, errNotCreator
	}

	if req.Name != nil {
		name := s.clean(*req.Name)
		if name == "" {
			return nil, apperror.New(http.StatusBadRequest, "group name is required", apperror.ErrInvalidInput)
		}
		group.Name = name
	}
	if req.Description != nil {
		group.Description = s.cleanPtr(req.Description)
	}
	if req.IsPrivate != nil {
		if *req.IsPrivate && group.ID == s.publicGroupID {
			return nil, apperror.New(http.StatusForbidden, "the public community group cannot be made private", apperror.ErrForbidden)
		}
		group.IsPrivate = *req.IsPrivate
	}

	switch {
	case !group.IsPrivate:
		group.JoinCode = nil
	case group.JoinCode == nil || req.RegenerateJoinCode:
		code, err := s.newJoinCode(ctx)
		if err != nil {
			return nil, err
		}
		group.JoinCode = &code
	}

	if err := s.repo.Update(ctx, group); err != nil {
		return nil, err
	}
	s.indexGroup(group)

	rows, err := s.repo.FindWithCountsByIDs(ctx, []uint{group.ID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errGroupNotFound
	}

	resp := s.toResponse(rows[0], true)
	return &resp, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, userID, groupID uint) error {
	if groupID == s.publicGroupID {
		return apperror.New(http.StatusForbidden, "the public community group cannot be deleted", apperror.ErrForbidden)
	}

	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != userID {
		return errNotCreator
	}

	if err := s.repo.Delete(ctx, groupID); err != nil {
		return err
	}
	log.Printf("👥 Group %d deleted by user %d", groupID, userID)

	if s.index != nil {
		if err := s.index.DeleteGroup(groupID); err != nil {
			log.Printf("Failed to remove group %d from search index: %v", groupID, err)
		}
	}
	return nil
}

func (s *groupService) ListGroups(ctx context.Context, viewerID uint) ([]groupDto.GroupResponse, error) {
	rows, err := s.repo.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, viewerID, rows)
}

func (s *groupService) SearchGroups(ctx context.Context, viewerID uint, query groupDto.SearchGroupsQuery) ([]groupDto.GroupResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var rows []groupRepo.GroupWithCount
	if s.index != nil {
		ids, err := s.index.SearchGroups(query.Q, limit)
		if err == nil {
			rows, err = s.repo.FindWithCountsByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return s.toResponses(ctx, viewerID, rows)
		}
		log.Printf("Meilisearch group search failed, falling back to SQL: %v", err)
	}

	rows, err := s.repo.SearchPublicByName(ctx, query.Q, int(limit))
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, viewerID, rows)
}

func (s *groupService) GetUserGroups(ctx context.Context, viewerID, userID uint) ([]groupDto.GroupResponse, error) {
	rows, err := s.repo.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, viewerID, rows)
}

func (s *groupService) GetMembers(ctx context.Context, viewerID, groupID uint) ([]groupDto.MemberResponse, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if group.IsPrivate {
		isMember, err := s.repo.IsMember(ctx, groupID, viewerID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, apperror.New(http.StatusForbidden, "only members can see this group", apperror.ErrForbidden)
		}
	}

	rows, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members := make([]groupDto.MemberResponse, 0, len(rows))
	for _, row := range rows {
		members = append(members, groupDto.MemberResponse{
			UserID:      row.ID,
			Username:    row.Username,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			DisplayName: row.DisplayName,
			AvatarURL:   row.AvatarURL,
			IsCreator:   row.ID == group.CreatedBy,
			JoinedAt:    row.JoinedAt,
		})
	}
	return members, nil
}

func (s *groupService) JoinGroup(ctx context.Context, userID, groupID uint) (*groupDto.MembershipResponse, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.IsPrivate {
		return nil, apperror.New(http.StatusForbidden, "private groups can only be joined with a join code", apperror.ErrForbidden)
	}

	return s.join(ctx, group.ID, userID)
}

func (s *groupService) JoinByCode(ctx context.Context, userID uint, code string) (*groupDto.MembershipResponse, error) {
	subject := strconv.FormatUint(uint64(userID), 10)
	if err := ratelimit.Reserve(ctx, s.redisClient, subject, "join_by_code", s.joinCodeLimit); err != nil {
		return nil, err
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	group, err := s.repo.FindPrivateByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "invalid join code", apperror.ErrNotFound)
		}
		return nil, err
	}

	return s.join(ctx, group.ID, userID)
}

func (s *groupService) join(ctx context.Context, groupID, userID uint) (*groupDto.MembershipResponse, error) {
	isMember, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperror.New(http.StatusConflict, "you are already a member of this group", apperror.ErrConflict)
	}

	member, err := s.repo.AddMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.New(http.StatusConflict, "you are already a member of this group", err)
		}
		return nil, err
	}
	log.Printf("👥 User %d joined group %d", userID, groupID)

	s.publishMembership(ctx, groupID, userID, true)

	return &groupDto.MembershipResponse{
		ID:       member.ID,
		GroupID:  member.GroupID,
		UserID:   member.UserID,
		JoinedAt: member.JoinedAt,
	}, nil
}

func (s *groupService) RemoveMember(ctx context.Context, actorID, groupID, userID uint) error {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if actorID != userID && actorID != group.CreatedBy {
		return apperror.New(http.StatusForbidden, "only the group creator can remove other members", apperror.ErrForbidden)
	}

	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "user is not a member of this group", err)
		}
		return err
	}
	log.Printf("👥 User %d removed from group %d by user %d", userID, groupID, actorID)

	s.publishMembership(ctx, groupID, userID, false)
	return nil
}

func (s *groupService) JoinPublicGroup(ctx context.Context, userID uint) error {
	isMember, err := s.repo.IsMember(ctx, s.publicGroupID, userID)
	if err != nil || isMember {
		return err
	}

	if _, err := s.repo.AddMember(ctx, s.publicGroupID, userID); err != nil && !errors.Is(err, apperror.ErrConflict) {
		return fmt.Errorf("join public group: %w", err)
	}
	s.publishMembership(ctx, s.publicGroupID, userID, true)
	return nil
}

func (s *groupService) findGroup(ctx context.Context, groupID uint) (*entity.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) newJoinCode(ctx context.Context) (string, error) {
	for i := 0; i < joinCodeAttempts; i++ {
		code, err := gonanoid.Generate(JoinCodeAlphabet, JoinCodeLength)
		if err != nil {
			return "", err
		}

		exists, err := s.repo.JoinCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free join code after %d attempts", joinCodeAttempts)
}

func (s *groupService) indexGroup(group *entity.Group) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexGroup(group); err != nil {
		log.Printf("Failed to index group %d: %v", group.ID, err)
	}
}

func (s *groupService) publishMembership(ctx context.Context, groupID, userID uint, joined bool) {
	if s.notifier == nil {
		return
	}
	// best effort
	_ = s.notifier.PublishMembershipChange(ctx, groupID, userID, joined)
}

func (s *groupService) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

func (s *groupService) cleanPtr(text *string) *string {
	if text == nil {
		return nil
	}
	cleaned := s.clean(*text)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func (s *groupService) toResponses(ctx context.Context, viewerID uint, rows []groupRepo.GroupWithCount) ([]groupDto.GroupResponse, error) {
	memberOf, err := s.repo.FindGroupIDsByMember(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	isMember := make(map[uint]bool, len(memberOf))
	for _, id := range memberOf {
		isMember[id] = true
	}

	responses := make([]groupDto.GroupResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, s.toResponse(row, isMember[row.ID]))
	}
	return responses, nil
}

func (s *groupService) toResponse(row groupRepo.GroupWithCount, withCode bool) groupDto.GroupResponse {
	resp := groupDto.GroupResponse{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedBy:   row.CreatedBy,
		IsPrivate:   row.IsPrivate,
		IsPublic:    row.ID == s.publicGroupID,
		MemberCount: row.MemberCount,
		CreatedAt:   row.CreatedAt,
	}
	if withCode {
		resp.JoinCode = row.JoinCode
	}
	return resp
}
