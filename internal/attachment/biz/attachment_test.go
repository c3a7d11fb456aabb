package biz

import (
	"context"
	"testing"

	apperrors "github.com/sitedesk/inspection-backend/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor(t *testing.T) {
	assert.Equal(t, "site-photos", BucketFor(EntitySite))
	assert.Equal(t, "audit-photos", BucketFor(EntityAudit))
	assert.Equal(t, "risk-photos", BucketFor(EntityRisk))
	assert.Equal(t, "equipment-photos", BucketFor(EntityEquipment))
}

func TestRegisterPreUploadedFile(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	att, err := uc.Register(context.Background(), &RegisterInput{
		EntityType: EntitySite,
		EntityID:   12,
		FileURL:    "https://cdn.example.com/photos/roof.jpg",
		FileName:   "roof.jpg",
	})
	require.NoError(t, err)

	assert.NotZero(t, att.ID)
	assert.Equal(t, "https://cdn.example.com/photos/roof.jpg", att.FileURL)
	assert.Equal(t, "image", att.FileType, "file_type defaults to image")
	assert.Empty(t, att.Bucket, "registered files live outside our buckets")
	assert.Empty(t, store.uploads)
}

func TestRegisterValidation(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	uc := newTestUseCase(t, repo, &fakeObjectStore{})

	cases := []struct {
		name string
		in   *RegisterInput
	}{
		{"missing entity_type", &RegisterInput{EntityID: 1, FileURL: "https://x/y"}},
		{"zero entity_id", &RegisterInput{EntityType: "site", FileURL: "https://x/y"}},
		{"missing file_url", &RegisterInput{EntityType: "site", EntityID: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tc.in)
			assert.True(t, apperrors.Is(err, apperrors.ErrAttachInvalidInput))
		})
	}

	assert.Empty(t, repo.created)
}

func TestListByEntity(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	uc := newTestUseCase(t, repo, &fakeObjectStore{})

	for _, id := range []int64{1, 1, 2} {
		_, err := uc.Register(context.Background(), &RegisterInput{
			EntityType: EntitySite, EntityID: id, FileURL: "https://x/y",
		})
		require.NoError(t, err)
	}

	atts, err := uc.ListByEntity(context.Background(), EntitySite, 1)
	require.NoError(t, err)
	assert.Len(t, atts, 2)

	_, err = uc.ListByEntity(context.Background(), "", 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrAttachInvalidInput))
}

func TestRemoveByEntityDeletesObjects(t *testing.T) {
	repo := &fakeAttachmentRepo{
		created: []*Attachment{
			{ID: 1, EntityType: EntitySite, EntityID: 5, Bucket: "site-photos", FilePath: "site/5/a.jpg"},
			{ID: 2, EntityType: EntitySite, EntityID: 5, Bucket: "site-photos", FilePath: "site/5/b.jpg"},
			{ID: 3, EntityType: EntitySite, EntityID: 6, Bucket: "site-photos", FilePath: "site/6/c.jpg"},
		},
	}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	count, err := uc.RemoveByEntity(context.Background(), EntitySite, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Len(t, store.deletes, 2)
	assert.Len(t, repo.created, 1)
}

func TestRemoveByEntitySkipsExternalFiles(t *testing.T) {
	// Rows registered by URL carry no bucket or path; nothing to delete
	// from storage.
	repo := &fakeAttachmentRepo{
		created: []*Attachment{
			{ID: 1, EntityType: EntitySite, EntityID: 5, FileURL: "https://x/y"},
		},
	}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	count, err := uc.RemoveByEntity(context.Background(), EntitySite, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Empty(t, store.deletes)
}
