package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/pkg/apperror"
	"vireo.social/vireo/pkg/storage"
)

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name      *string
	Biography *string
	Website   *string
	Avatar    *Attachment
	Banner    *Attachment
}

type ProfileService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetProfileByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, error)
}

type profileService struct {
	userRepo repository.UserRepository
	store    storage.ObjectStorage
	lookup   LookupService
}

func NewProfileService(userRepo repository.UserRepository, store storage.ObjectStorage, lookup LookupService) ProfileService {
	return &profileService{
		userRepo: userRepo,
		store:    store,
		lookup:   lookup,
	}
}

func (s *profileService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

func (s *profileService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, error) {
	fields := make(map[string]interface{})

	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Biography != nil {
		fields["biography"] = *update.Biography
	}
	if update.Website != nil {
		fields["website"] = *update.Website
	}

	if update.Avatar != nil {
		url, err := s.store.Upload(ctx, update.Avatar.Reader, "avatars", update.Avatar.FileName)
		if err != nil {
			return nil, fmt.Errorf("%w: uploading avatar: %v", apperror.ErrUpstream, err)
		}
		fields["avatar"] = url
	}
	if update.Banner != nil {
		url, err := s.store.Upload(ctx, update.Banner.Reader, "banners", update.Banner.FileName)
		if err != nil {
			return nil, fmt.Errorf("%w: uploading banner: %v", apperror.ErrUpstream, err)
		}
		fields["banner"] = url
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateProfile(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("%w: updating profile: %v", apperror.ErrUpstream, err)
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Keep the lookup index in step with the profile; failures only log.
	if s.lookup != nil {
		if err := s.lookup.IndexUser(user); err != nil {
			log.Printf("failed to reindex user %s: %v", user.ID, err)
		}
	}

	return user, nil
}
