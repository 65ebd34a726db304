package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"sheesh.app/server/internal/entity"
)

const groupsIndex = "groups"

// GroupIndex keeps the public group directory searchable.
type GroupIndex interface {
	IndexGroup(group *entity.Group) error
	DeleteGroup(id uint) error
	// SearchGroups returns matching public group ids, best match first.
	SearchGroups(query string, limit int64) ([]uint, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) GroupIndex {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"is_private"}
	if _, err := s.client.Index(groupsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update groups filterable attributes: %v", err)
	}

	searchable := []string{"name", "description"}
	if _, err := s.client.Index(groupsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update groups searchable attributes: %v", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(groupsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update groups sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliGroupDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *meiliSearchService) cleanText(content string) string {
	cleaned := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleaned), " ")
}

func (s *meiliSearchService) IndexGroup(group *entity.Group) error {
	doc := meiliGroupDoc{
		ID:        strconv.FormatUint(uint64(group.ID), 10),
		Name:      s.cleanText(group.Name),
		IsPrivate: group.IsPrivate,
		CreatedAt: group.CreatedAt.Unix(),
	}
	if group.Description != nil {
		doc.Description = s.cleanText(*group.Description)
	}

	task, err := s.client.Index(groupsIndex).AddDocuments([]meiliGroupDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed group %d, task id: %d", group.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteGroup(id uint) error {
	_, err := s.client.Index(groupsIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) SearchGroups(query string, limit int64) ([]uint, error) {
	raw, err := s.client.Index(groupsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		Filter:               "is_private = false",
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("decode group search result: %w", err)
	}

	ids := make([]uint, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
