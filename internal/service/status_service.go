package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/realtime"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/pkg/apperror"
	"vireo.social/vireo/pkg/storage"
)

// Attachment is an uploaded file accompanying a status.
type Attachment struct {
	FileName string
	Reader   io.Reader
}

type StatusService interface {
	// Create validates, uploads the attachment if any, inserts the status and
	// publishes it to the realtime bus.
	Create(ctx context.Context, authorID uuid.UUID, content string, attachment *Attachment) (*model.Status, error)
	CreateReply(ctx context.Context, statusID, authorID uuid.UUID, content string) (*model.StatusReply, error)
	GetReplies(ctx context.Context, statusID uuid.UUID) ([]model.StatusReply, error)
	GetUserStatuses(ctx context.Context, authorID uuid.UUID) ([]model.Status, error)
	GetUserReplies(ctx context.Context, authorID uuid.UUID) ([]model.StatusReply, error)
	// RecordView counts one impression of a status or reply.
	RecordView(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type statusService struct {
	statusRepo repository.StatusRepository
	store      storage.ObjectStorage
	hub        *realtime.Hub
}

func NewStatusService(statusRepo repository.StatusRepository, store storage.ObjectStorage, hub *realtime.Hub) StatusService {
	return &statusService{
		statusRepo: statusRepo,
		store:      store,
		hub:        hub,
	}
}

func (s *statusService) Create(ctx context.Context, authorID uuid.UUID, content string, attachment *Attachment) (*model.Status, error) {
	content = strings.TrimSpace(content)

	if content == "" && attachment == nil {
		return nil, fmt.Errorf("%w: content or attachment required", apperror.ErrValidation)
	}
	if len(content) > model.MaxStatusLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", apperror.ErrValidation, model.MaxStatusLength)
	}

	var attachmentURL *string
	if attachment != nil {
		url, err := s.store.Upload(ctx, attachment.Reader, "attachments", attachment.FileName)
		if err != nil {
			return nil, fmt.Errorf("%w: uploading attachment: %v", apperror.ErrUpstream, err)
		}
		attachmentURL = &url
	}

	status := &model.Status{
		AuthorID:   authorID,
		Content:    content,
		Attachment: attachmentURL,
	}
	if err := s.statusRepo.Create(ctx, status); err != nil {
		return nil, fmt.Errorf("%w: inserting status: %v", apperror.ErrUpstream, err)
	}

	// Fire-and-forget after the write commits.
	s.hub.Publish(realtime.TableStatus, *status)

	return status, nil
}

func (s *statusService) CreateReply(ctx context.Context, statusID, authorID uuid.UUID, content string) (*model.StatusReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content required", apperror.ErrValidation)
	}
	if len(content) > model.MaxStatusLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", apperror.ErrValidation, model.MaxStatusLength)
	}

	exists, err := s.statusRepo.Exists(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("%w: checking status: %v", apperror.ErrUpstream, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: unknown status id", apperror.ErrNotFound)
	}

	reply := &model.StatusReply{
		StatusID: statusID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.statusRepo.CreateReply(ctx, reply); err != nil {
		return nil, fmt.Errorf("%w: inserting reply: %v", apperror.ErrUpstream, err)
	}
	return reply, nil
}

func (s *statusService) GetReplies(ctx context.Context, statusID uuid.UUID) ([]model.StatusReply, error) {
	exists, err := s.statusRepo.Exists(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("%w: checking status: %v", apperror.ErrUpstream, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: unknown status id", apperror.ErrNotFound)
	}

	replies, err := s.statusRepo.FindReplies(ctx, statusID, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching replies: %v", apperror.ErrUpstream, err)
	}
	return replies, nil
}

func (s *statusService) GetUserStatuses(ctx context.Context, authorID uuid.UUID) ([]model.Status, error) {
	statuses, err := s.statusRepo.FindByAuthor(ctx, authorID, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching user statuses: %v", apperror.ErrUpstream, err)
	}
	return statuses, nil
}

func (s *statusService) GetUserReplies(ctx context.Context, authorID uuid.UUID) ([]model.StatusReply, error) {
	replies, err := s.statusRepo.FindRepliesByAuthor(ctx, authorID, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching user replies: %v", apperror.ErrUpstream, err)
	}
	return replies, nil
}

func (s *statusService) RecordView(ctx context.Context, id uuid.UUID) error {
	if err := s.statusRepo.IncrementViews(ctx, id); err != nil {
		return fmt.Errorf("%w: recording view: %v", apperror.ErrUpstream, err)
	}
	return nil
}

func (s *statusService) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	var attachmentURL *string
	if rows, err := s.statusRepo.FindPage(ctx, nil, 1, nil, &id); err == nil && len(rows) == 1 && rows[0].AuthorID == authorID {
		attachmentURL = rows[0].Attachment
	}

	if err := s.statusRepo.Delete(ctx, id, authorID); err != nil {
		return fmt.Errorf("%w: deleting status: %v", apperror.ErrUpstream, err)
	}

	// Orphaned attachments are cleaned up best-effort; the row delete is what
	// matters.
	if attachmentURL != nil && s.store != nil {
		if err := s.store.Delete(ctx, *attachmentURL); err != nil {
			log.Printf("failed to delete attachment for status %s: %v", id, err)
		}
	}
	return nil
}
