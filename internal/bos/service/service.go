// Package service manages professional (bòs) profiles: creation with the
// initial credit allowance, owner edits, search and profile photos.
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"bosfinder_backend/internal/adapters/storage"
	"bosfinder_backend/internal/bos/repository"
	"bosfinder_backend/internal/bos/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/phone"
	"bosfinder_backend/platform/sanitize"
)

const (
	searchLimit       = 20
	notifyLimit       = 200
	maxDescription    = 2000
	msgProfileMissing = "profile not found"
	roleBos           = "bos"
)

// Config carries the settings the profile service reads at construction.
type Config struct {
	InitialLeadCredits int
	PhotoBucket        string
}

type Service struct {
	repo           *repository.Repository
	owners         OwnerReader
	catalog        CatalogLookup
	photos         storage.StorageService
	photoBucket    string
	initialCredits int
	log            *logger.Logger
	now            func() time.Time
}

// New creates the profile service. photos may be nil when object storage is
// not configured; uploads then fail with a Storage error.
func New(repo *repository.Repository, owners OwnerReader, catalog CatalogLookup, photos storage.StorageService, cfg Config, log *logger.Logger) *Service {
	return &Service{
		repo:           repo,
		owners:         owners,
		catalog:        catalog,
		photos:         photos,
		photoBucket:    cfg.PhotoBucket,
		initialCredits: cfg.InitialLeadCredits,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateProfile creates the caller's profile with the initial credit allowance.
// Each user owns at most one profile.
func (s *Service) CreateProfile(ctx context.Context, userID string, req transport.CreateProfileRequest) (transport.ProfileResponse, error) {
	owner, err := s.owners.GetOwner(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	if owner.Role != roleBos {
		return transport.ProfileResponse{}, apperr.Forbidden("only professionals can create a profile")
	}

	categories, err := s.catalog.CanonicalCategories(req.Categories)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	if len(categories) == 0 {
		return transport.ProfileResponse{}, apperr.Validation("at least one category is required")
	}
	commune, city, err := s.catalog.CanonicalPlace(req.Commune)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	if req.PriceRangeMax > 0 && req.PriceRangeMin > req.PriceRangeMax {
		return transport.ProfileResponse{}, apperr.Validation("priceRangeMin cannot exceed priceRangeMax")
	}
	whatsapp, err := optionalPhone(req.WhatsappNumber)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	displayName := sanitize.Line(req.DisplayName)
	if displayName == "" {
		displayName = owner.FullName
	}

	now := s.now()
	profile := repository.Profile{
		ID:                userID,
		UserID:            userID,
		DisplayName:       displayName,
		Categories:        categories,
		Description:       sanitize.Truncate(sanitize.Text(req.Description), maxDescription),
		Commune:           commune,
		City:              city,
		PriceRangeMin:     req.PriceRangeMin,
		PriceRangeMax:     req.PriceRangeMax,
		YearsOfExperience: req.YearsOfExperience,
		WhatsappNumber:    whatsapp,
		LeadCredits:       s.initialCredits,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = s.repo.Create(ctx, profile)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return transport.ProfileResponse{}, apperr.Conflict("profile already exists")
	}
	if err != nil {
		return transport.ProfileResponse{}, storageError("bos.CreateProfile", err)
	}

	s.log.WithContext(ctx).Info("bos profile created", "bosId", userID, "leadCredits", profile.LeadCredits)
	return s.toResponse(ctx, profile, userID), nil
}

// GetProfile returns profile id as seen by viewerID.
func (s *Service) GetProfile(ctx context.Context, id, viewerID string) (transport.ProfileResponse, error) {
	profile, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.ProfileResponse{}, apperr.NotFound(msgProfileMissing)
	}
	if err != nil {
		return transport.ProfileResponse{}, storageError("bos.GetProfile", err)
	}
	return s.toResponse(ctx, profile, viewerID), nil
}

// UpdateProfile applies owner edits. Credits, ratings and verification stay untouched.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req transport.UpdateProfileRequest) (transport.ProfileResponse, error) {
	var upd repository.ProfileUpdate

	if req.DisplayName != nil {
		name := sanitize.Line(*req.DisplayName)
		if name == "" {
			return transport.ProfileResponse{}, apperr.Validation("displayName cannot be empty")
		}
		upd.DisplayName = &name
	}
	if req.Categories != nil {
		categories, err := s.catalog.CanonicalCategories(req.Categories)
		if err != nil {
			return transport.ProfileResponse{}, err
		}
		if len(categories) == 0 {
			return transport.ProfileResponse{}, apperr.Validation("at least one category is required")
		}
		upd.Categories = categories
	}
	if req.Description != nil {
		description := sanitize.Truncate(sanitize.Text(*req.Description), maxDescription)
		upd.Description = &description
	}
	if req.Commune != nil {
		commune, city, err := s.catalog.CanonicalPlace(*req.Commune)
		if err != nil {
			return transport.ProfileResponse{}, err
		}
		upd.Commune, upd.City = &commune, &city
	}
	if req.WhatsappNumber != nil {
		whatsapp, err := optionalPhone(*req.WhatsappNumber)
		if err != nil {
			return transport.ProfileResponse{}, err
		}
		upd.WhatsappNumber = &whatsapp
	}
	upd.PriceRangeMin = req.PriceRangeMin
	upd.PriceRangeMax = req.PriceRangeMax
	upd.YearsOfExperience = req.YearsOfExperience

	if upd.PriceRangeMin != nil || upd.PriceRangeMax != nil {
		current, err := s.repo.Get(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProfileResponse{}, apperr.NotFound(msgProfileMissing)
		}
		if err != nil {
			return transport.ProfileResponse{}, storageError("bos.UpdateProfile", err)
		}
		lo, hi := current.PriceRangeMin, current.PriceRangeMax
		if upd.PriceRangeMin != nil {
			lo = *upd.PriceRangeMin
		}
		if upd.PriceRangeMax != nil {
			hi = *upd.PriceRangeMax
		}
		if hi > 0 && lo > hi {
			return transport.ProfileResponse{}, apperr.Validation("priceRangeMin cannot exceed priceRangeMax")
		}
	}

	_, profile, err := s.repo.Update(ctx, userID, upd, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return transport.ProfileResponse{}, apperr.NotFound(msgProfileMissing)
	}
	if err != nil {
		return transport.ProfileResponse{}, storageError("bos.UpdateProfile", err)
	}

	s.log.WithContext(ctx).Info("bos profile updated", "bosId", userID)
	return s.toResponse(ctx, profile, userID), nil
}

// SearchProfiles lists the best rated professionals matching the optional filters.
func (s *Service) SearchProfiles(ctx context.Context, req transport.SearchProfilesRequest) (transport.ProfileListResponse, error) {
	filter := repository.SearchFilter{MinRating: req.MinRating, Limit: searchLimit}
	if strings.TrimSpace(req.Category) != "" {
		category, err := s.catalog.CanonicalCategory(req.Category)
		if err != nil {
			return transport.ProfileListResponse{}, err
		}
		filter.Category = category
	}
	if strings.TrimSpace(req.Commune) != "" {
		commune, _, err := s.catalog.CanonicalPlace(req.Commune)
		if err != nil {
			return transport.ProfileListResponse{}, err
		}
		filter.Commune = commune
	}
	if filter.MinRating < 0 || filter.MinRating > 5 {
		return transport.ProfileListResponse{}, apperr.Validation("minRating must be between 0 and 5")
	}

	profiles, err := s.repo.Search(ctx, filter)
	if err != nil {
		return transport.ProfileListResponse{}, storageError("bos.SearchProfiles", err)
	}

	items := make([]transport.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, s.toResponse(ctx, p, ""))
	}
	return transport.ProfileListResponse{Items: items, Total: len(items)}, nil
}

// UploadPhoto stores a new profile photo and replaces the previous one.
func (s *Service) UploadPhoto(ctx context.Context, userID, fileName, contentType string, body io.Reader, size int64) (transport.ProfileResponse, error) {
	if s.photos == nil {
		return transport.ProfileResponse{}, apperr.Storage("photo storage is not configured", nil)
	}
	if err := s.photos.ValidateUpload(contentType, size); err != nil {
		return transport.ProfileResponse{}, apperr.Validation(err.Error())
	}
	if _, err := s.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProfileResponse{}, apperr.NotFound(msgProfileMissing)
		}
		return transport.ProfileResponse{}, storageError("bos.UploadPhoto", err)
	}

	key, err := s.photos.UploadFile(ctx, s.photoBucket, "profiles/"+userID, fileName, contentType, body, size)
	if errors.Is(err, storage.ErrRejected) {
		return transport.ProfileResponse{}, apperr.Validation(err.Error())
	}
	if err != nil {
		return transport.ProfileResponse{}, apperr.Storage("photo upload failed", err).WithOp("bos.UploadPhoto")
	}

	before, profile, err := s.repo.Update(ctx, userID, repository.ProfileUpdate{PhotoKey: &key}, s.now())
	if err != nil {
		s.removePhoto(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProfileResponse{}, apperr.NotFound(msgProfileMissing)
		}
		return transport.ProfileResponse{}, storageError("bos.UploadPhoto", err)
	}
	if before.PhotoKey != "" && before.PhotoKey != key {
		s.removePhoto(ctx, before.PhotoKey)
	}

	s.log.WithContext(ctx).Info("bos photo uploaded", "bosId", userID, "photoKey", key)
	return s.toResponse(ctx, profile, userID), nil
}

// MatchingPreferences returns the categories and commune a professional works in.
func (s *Service) MatchingPreferences(ctx context.Context, bosID string) ([]string, string, error) {
	profile, err := s.repo.Get(ctx, bosID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.NotFound(msgProfileMissing)
	}
	if err != nil {
		return nil, "", storageError("bos.MatchingPreferences", err)
	}
	return profile.Categories, profile.Commune, nil
}

// ProfessionalsFor returns the ids of the best rated professionals offering
// category in commune.
func (s *Service) ProfessionalsFor(ctx context.Context, category, commune string) ([]string, error) {
	profiles, err := s.repo.Search(ctx, repository.SearchFilter{Category: category, Commune: commune, Limit: notifyLimit})
	if err != nil {
		return nil, storageError("bos.ProfessionalsFor", err)
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (s *Service) removePhoto(ctx context.Context, key string) {
	if err := s.photos.DeleteObject(ctx, s.photoBucket, key); err != nil {
		s.log.WithContext(ctx).Warn("failed to delete profile photo", "photoKey", key, "error", err)
	}
}

func (s *Service) toResponse(ctx context.Context, p repository.Profile, viewerID string) transport.ProfileResponse {
	resp := transport.ProfileResponse{
		ID:                p.ID,
		DisplayName:       p.DisplayName,
		Categories:        p.Categories,
		Description:       p.Description,
		Commune:           p.Commune,
		City:              p.City,
		RatingAverage:     p.RatingAverage,
		RatingCount:       p.RatingCount,
		PriceRangeMin:     p.PriceRangeMin,
		PriceRangeMax:     p.PriceRangeMax,
		YearsOfExperience: p.YearsOfExperience,
		WhatsappNumber:    p.WhatsappNumber,
		IsVerified:        p.IsVerified,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if viewerID != "" && viewerID == p.ID {
		credits := p.LeadCredits
		resp.LeadCredits = &credits
	}
	if p.PhotoKey != "" && s.photos != nil {
		url, err := s.photos.GenerateDownloadURL(ctx, s.photoBucket, p.PhotoKey)
		if err != nil {
			s.log.WithContext(ctx).Warn("failed to presign profile photo", "bosId", p.ID, "error", err)
		} else {
			resp.PhotoURL = url.URL
		}
	}
	return resp
}

func optionalPhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	number, err := phone.ParseE164(raw)
	if err != nil {
		return "", apperr.Validation("invalid whatsapp number")
	}
	return number, nil
}

func storageError(op string, err error) error {
	return apperr.Storage("storage unavailable", err).WithOp(op)
}
