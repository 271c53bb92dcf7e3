package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/pkg/apperror"
)

const userIndexName = "users"

// UserDocument is the shape indexed for lookup; it carries only the public
// profile fields the picker needs.
type UserDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// LookupService resolves the user search box: partial matches on name and
// username, excluding the caller.
type LookupService interface {
	IndexUser(user *model.User) error
	Lookup(ctx context.Context, search string, excludeID uuid.UUID) ([]UserDocument, error)
}

type lookupService struct {
	client meilisearch.ServiceManager
}

func NewLookupService(client meilisearch.ServiceManager) LookupService {
	s := &lookupService{client: client}
	s.initIndex()
	return s
}

func (s *lookupService) initIndex() {
	filterable := []any{"id"}
	if _, err := s.client.Index(userIndexName).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update users filterable attributes: %v", err)
	}

	searchable := []string{"name", "username"}
	if _, err := s.client.Index(userIndexName).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update users searchable attributes: %v", err)
	}
}

func (s *lookupService) IndexUser(user *model.User) error {
	doc := UserDocument{
		ID:       user.ID.String(),
		Name:     user.Name,
		Username: user.Username,
	}
	if user.Avatar != nil {
		doc.Avatar = *user.Avatar
	}

	if _, err := s.client.Index(userIndexName).AddDocuments([]UserDocument{doc}, nil); err != nil {
		return fmt.Errorf("%w: indexing user: %v", apperror.ErrUpstream, err)
	}
	return nil
}

func (s *lookupService) Lookup(ctx context.Context, search string, excludeID uuid.UUID) ([]UserDocument, error) {
	resp, err := s.client.Index(userIndexName).SearchWithContext(ctx, search, &meilisearch.SearchRequest{
		Limit:  5,
		Filter: fmt.Sprintf("id != %q", excludeID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: searching users: %v", apperror.ErrUpstream, err)
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding search hits: %v", apperror.ErrUpstream, err)
	}
	var users []UserDocument
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("%w: decoding search hits: %v", apperror.ErrUpstream, err)
	}
	return users, nil
}
