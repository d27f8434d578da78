package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"bosfinder_backend/internal/adapters/storage"
	"bosfinder_backend/internal/bos/repository"
	"bosfinder_backend/internal/bos/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/docstore/memstore"
	"bosfinder_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOwners map[string]Owner

func (f fakeOwners) GetOwner(_ context.Context, userID string) (Owner, error) {
	owner, ok := f[userID]
	if !ok {
		return Owner{}, apperr.NotFound("user not found")
	}
	return owner, nil
}

type fakeCatalog struct{}

var communeCity = map[string]string{"delmas": "Port-au-Prince", "jacmel": "Jacmel"}

func (fakeCatalog) CanonicalCategory(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plumber":
		return "Plumber", nil
	case "electrician":
		return "Electrician", nil
	}
	return "", apperr.Validation("unknown category: " + name)
}

func (c fakeCatalog) CanonicalCategories(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		canonical, err := c.CanonicalCategory(n)
		if err != nil {
			return nil, err
		}
		out = append(out, canonical)
	}
	return out, nil
}

func (fakeCatalog) CanonicalPlace(commune string) (string, string, error) {
	key := strings.ToLower(strings.TrimSpace(commune))
	city, ok := communeCity[key]
	if !ok {
		return "", "", apperr.Validation("unknown commune: " + commune)
	}
	return strings.ToUpper(key[:1]) + key[1:], city, nil
}

type fakePhotos struct {
	uploads int
	deleted []string
}

func (f *fakePhotos) UploadFile(_ context.Context, _, folder, fileName, _ string, _ io.Reader, _ int64) (string, error) {
	f.uploads++
	return fmt.Sprintf("%s/%d-%s", folder, f.uploads, fileName), nil
}

func (f *fakePhotos) GenerateDownloadURL(_ context.Context, bucket, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://cdn.test/" + bucket + "/" + fileKey, FileKey: fileKey}, nil
}

func (f *fakePhotos) DeleteObject(_ context.Context, _, fileKey string) error {
	f.deleted = append(f.deleted, fileKey)
	return nil
}

func (f *fakePhotos) EnsureBucketExists(context.Context, string) error { return nil }

func (f *fakePhotos) ValidateUpload(contentType string, size int64) error {
	if contentType != "image/jpeg" {
		return fmt.Errorf("%w: unsupported content type", storage.ErrRejected)
	}
	return nil
}

func newService(photos storage.StorageService) *Service {
	owners := fakeOwners{
		"bos-1":    {Role: "bos", FullName: "Jean Plombier"},
		"bos-2":    {Role: "bos", FullName: "Paul Elektrik"},
		"client-1": {Role: "client", FullName: "Marie Joseph"},
	}
	return New(repository.New(memstore.New()), owners, fakeCatalog{}, photos, Config{InitialLeadCredits: 5, PhotoBucket: "photos"}, logger.Discard())
}

func createProfile(t *testing.T, svc *Service, id string, categories []string, commune string) transport.ProfileResponse {
	t.Helper()
	resp, err := svc.CreateProfile(context.Background(), id, transport.CreateProfileRequest{
		Categories: categories,
		Commune:    commune,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateProfileDefaultsFromOwner(t *testing.T) {
	svc := newService(nil)
	resp := createProfile(t, svc, "bos-1", []string{"plumber", "Electrician"}, "delmas")

	assert.Equal(t, "bos-1", resp.ID)
	assert.Equal(t, "Jean Plombier", resp.DisplayName)
	assert.Equal(t, []string{"Plumber", "Electrician"}, resp.Categories)
	assert.Equal(t, "Delmas", resp.Commune)
	assert.Equal(t, "Port-au-Prince", resp.City)
	require.NotNil(t, resp.LeadCredits)
	assert.Equal(t, 5, *resp.LeadCredits)
}

func TestCreateProfileRules(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	createProfile(t, svc, "bos-1", []string{"plumber"}, "delmas")

	tests := []struct {
		name string
		user string
		req  transport.CreateProfileRequest
		kind apperr.Kind
	}{
		{"client role", "client-1", transport.CreateProfileRequest{Categories: []string{"plumber"}, Commune: "delmas"}, apperr.KindForbidden},
		{"unknown user", "ghost", transport.CreateProfileRequest{Categories: []string{"plumber"}, Commune: "delmas"}, apperr.KindNotFound},
		{"duplicate", "bos-1", transport.CreateProfileRequest{Categories: []string{"plumber"}, Commune: "delmas"}, apperr.KindConflict},
		{"unknown category", "bos-2", transport.CreateProfileRequest{Categories: []string{"astronaut"}, Commune: "delmas"}, apperr.KindValidation},
		{"unknown commune", "bos-2", transport.CreateProfileRequest{Categories: []string{"plumber"}, Commune: "Atlantis"}, apperr.KindValidation},
		{"price range", "bos-2", transport.CreateProfileRequest{Categories: []string{"plumber"}, Commune: "delmas", PriceRangeMin: 900, PriceRangeMax: 100}, apperr.KindValidation},
		{"bad whatsapp", "bos-2", transport.CreateProfileRequest{Categories: []string{"plumber"}, Commune: "delmas", WhatsappNumber: "call me"}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProfile(ctx, tt.user, tt.req)
			assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestLeadCreditsVisibleOnlyToOwner(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	createProfile(t, svc, "bos-1", []string{"plumber"}, "delmas")

	own, err := svc.GetProfile(ctx, "bos-1", "bos-1")
	require.NoError(t, err)
	assert.NotNil(t, own.LeadCredits)

	public, err := svc.GetProfile(ctx, "bos-1", "client-1")
	require.NoError(t, err)
	assert.Nil(t, public.LeadCredits)

	_, err = svc.GetProfile(ctx, "nobody", "client-1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateProfileKeepsCredits(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	createProfile(t, svc, "bos-1", []string{"plumber"}, "delmas")

	name := "Jean & Fils"
	commune := "jacmel"
	lo := 300
	resp, err := svc.UpdateProfile(ctx, "bos-1", transport.UpdateProfileRequest{
		DisplayName:   &name,
		Commune:       &commune,
		PriceRangeMin: &lo,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jean & Fils", resp.DisplayName)
	assert.Equal(t, "Jacmel", resp.Commune)
	assert.Equal(t, "Jacmel", resp.City)
	assert.Equal(t, 300, resp.PriceRangeMin)
	require.NotNil(t, resp.LeadCredits)
	assert.Equal(t, 5, *resp.LeadCredits)

	hi := 100
	_, err = svc.UpdateProfile(ctx, "bos-1", transport.UpdateProfileRequest{PriceRangeMax: &hi})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	_, err = svc.UpdateProfile(ctx, "bos-2", transport.UpdateProfileRequest{DisplayName: &name})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestSearchAndMatchingHelpers(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	createProfile(t, svc, "bos-1", []string{"plumber"}, "delmas")
	createProfile(t, svc, "bos-2", []string{"electrician"}, "delmas")

	list, err := svc.SearchProfiles(ctx, transport.SearchProfilesRequest{Category: "Plumber"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "bos-1", list.Items[0].ID)
	assert.Nil(t, list.Items[0].LeadCredits)

	list, err = svc.SearchProfiles(ctx, transport.SearchProfilesRequest{Commune: "Delmas"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	ids, err := svc.ProfessionalsFor(ctx, "Electrician", "Delmas")
	require.NoError(t, err)
	assert.Equal(t, []string{"bos-2"}, ids)

	categories, commune, err := svc.MatchingPreferences(ctx, "bos-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Plumber"}, categories)
	assert.Equal(t, "Delmas", commune)
}

func TestUploadPhotoReplacesPrevious(t *testing.T) {
	photos := &fakePhotos{}
	svc := newService(photos)
	ctx := context.Background()
	createProfile(t, svc, "bos-1", []string{"plumber"}, "delmas")

	first, err := svc.UploadPhoto(ctx, "bos-1", "me.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/photos/profiles/bos-1/1-me.jpg", first.PhotoURL)

	second, err := svc.UploadPhoto(ctx, "bos-1", "new.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.Contains(t, second.PhotoURL, "2-new.jpg")
	assert.Equal(t, []string{"profiles/bos-1/1-me.jpg"}, photos.deleted)

	_, err = svc.UploadPhoto(ctx, "bos-1", "doc.pdf", "application/pdf", strings.NewReader("pdf"), 3)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestUploadPhotoWithoutStorage(t *testing.T) {
	svc := newService(nil)
	createProfile(t, svc, "bos-1", []string{"plumber"}, "delmas")

	_, err := svc.UploadPhoto(context.Background(), "bos-1", "me.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	assert.True(t, apperr.Is(err, apperr.KindStorage), "got %v", err)
}
