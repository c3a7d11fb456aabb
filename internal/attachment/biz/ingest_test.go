package biz

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	apperrors "github.com/sitedesk/inspection-backend/internal/pkg/errors"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedObject struct {
	Bucket      string
	Path        string
	Data        []byte
	ContentType string
}

type fakeObjectStore struct {
	uploads   []storedObject
	deletes   []storedObject
	uploadErr error
	deleteErr error
}

func (s *fakeObjectStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, storedObject{Bucket: bucket, Path: path, Data: data, ContentType: contentType})
	return nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, bucket, path string) error {
	s.deletes = append(s.deletes, storedObject{Bucket: bucket, Path: path})
	return s.deleteErr
}

type fakeAttachmentRepo struct {
	created   []*Attachment
	createErr error
	nextID    int64
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, att *Attachment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	att.ID = r.nextID
	r.created = append(r.created, att)
	return nil
}

func (r *fakeAttachmentRepo) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*Attachment, error) {
	var out []*Attachment
	for _, att := range r.created {
		if att.EntityType == entityType && att.EntityID == entityID {
			out = append(out, att)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) DeleteByEntity(ctx context.Context, entityType string, entityID int64) ([]*Attachment, error) {
	var deleted, kept []*Attachment
	for _, att := range r.created {
		if att.EntityType == entityType && att.EntityID == entityID {
			deleted = append(deleted, att)
		} else {
			kept = append(kept, att)
		}
	}
	r.created = kept
	return deleted, nil
}

func newTestUseCase(t *testing.T, repo AttachmentRepo, store ObjectStore) *AttachmentUseCase {
	t.Helper()

	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "console"})
	require.NoError(t, err)

	return NewAttachmentUseCase(repo, store, log)
}

type formFile struct {
	Field    string
	FileName string
	Data     []byte
}

// buildForm assembles a multipart/form-data body. Fields are ordered pairs so
// tests can submit duplicates.
func buildForm(t *testing.T, fields [][2]string, files ...formFile) ([]byte, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range fields {
		require.NoError(t, w.WriteField(kv[0], kv[1]))
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			`form-data; name="`+f.Field+`"; filename="`+f.FileName+`"`)
		h.Set("Content-Type", "application/octet-stream")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return buf.Bytes(), "multipart/form-data; boundary=" + w.Boundary()
}

func uploadForm(t *testing.T, entityType, entityID string, fileData []byte) ([]byte, string) {
	t.Helper()
	return buildForm(t,
		[][2]string{{"entity_type", entityType}, {"entity_id", entityID}},
		formFile{Field: "file", FileName: "photo.jpg", Data: fileData},
	)
}

func TestIngestHappyPath(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "audit", "7", []byte("jpeg-bytes"))

	att, err := uc.Ingest(context.Background(), &IngestRequest{
		Method:      http.MethodPost,
		ContentType: contentType,
		Body:        body,
	})
	require.NoError(t, err)
	require.NotNil(t, att)

	assert.Equal(t, "audit", att.EntityType)
	assert.Equal(t, int64(7), att.EntityID)
	assert.Equal(t, "audit-photos", att.Bucket)
	assert.Equal(t, "photo.jpg", att.FileName)
	assert.Equal(t, "image", att.FileType)
	assert.True(t, strings.HasPrefix(att.FilePath, "audit/7/"), "path %q must start with audit/7/", att.FilePath)
	assert.True(t, strings.HasSuffix(att.FilePath, "-photo.jpg"), "path %q must end with -photo.jpg", att.FilePath)

	require.Len(t, store.uploads, 1)
	assert.Equal(t, "audit-photos", store.uploads[0].Bucket)
	assert.Equal(t, att.FilePath, store.uploads[0].Path)
	assert.Equal(t, []byte("jpeg-bytes"), store.uploads[0].Data)
	assert.Equal(t, "image/*", store.uploads[0].ContentType)

	require.Len(t, repo.created, 1)
	assert.NotZero(t, att.ID)
	assert.Empty(t, store.deletes)
}

func TestIngestObjectPathsAreUnique(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "site", "3", []byte("same-bytes"))

	first, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})
	require.NoError(t, err)

	second, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.FilePath, second.FilePath)
	assert.Len(t, repo.created, 2)
}

func TestIngestRejectsNonPost(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "site", "1", []byte("x"))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		_, err := uc.Ingest(context.Background(), &IngestRequest{
			Method: method, ContentType: contentType, Body: body,
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrAttachMethodNotAllowed), "method %s", method)
	}

	assert.Empty(t, store.uploads)
	assert.Empty(t, repo.created)
}

func TestIngestRejectsWrongContentType(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	_, err := uc.Ingest(context.Background(), &IngestRequest{
		Method:      http.MethodPost,
		ContentType: "application/json",
		Body:        []byte(`{"entity_type":"site"}`),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrAttachInvalidContentType))
	assert.Empty(t, store.uploads)
}

func TestIngestMissingFile(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	// Entity fields present, no file part at all.
	body, contentType := buildForm(t, [][2]string{
		{"entity_type", "site"},
		{"entity_id", "1"},
	})

	_, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrAttachMissingFile))
	assert.Empty(t, store.uploads)
	assert.Empty(t, repo.created)
}

func TestIngestEmptyFileCountsAsMissing(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "site", "1", nil)

	_, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrAttachMissingFile))
	assert.Empty(t, store.uploads)
}

func TestIngestMissingEntityData(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	cases := []struct {
		name   string
		fields [][2]string
	}{
		{"no fields", nil},
		{"missing entity_id", [][2]string{{"entity_type", "site"}}},
		{"missing entity_type", [][2]string{{"entity_id", "5"}}},
		{"blank entity_type", [][2]string{{"entity_type", "  "}, {"entity_id", "5"}}},
		{"non-numeric entity_id", [][2]string{{"entity_type", "site"}, {"entity_id", "abc"}}},
		{"zero entity_id", [][2]string{{"entity_type", "site"}, {"entity_id", "0"}}},
		{"negative entity_id", [][2]string{{"entity_type", "site"}, {"entity_id", "-3"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := buildForm(t, tc.fields,
				formFile{Field: "file", FileName: "a.png", Data: []byte("png")})

			_, err := uc.Ingest(context.Background(), &IngestRequest{
				Method: http.MethodPost, ContentType: contentType, Body: body,
			})
			assert.True(t, apperrors.Is(err, apperrors.ErrAttachMissingEntityData))
		})
	}

	// Validation happens before any storage I/O.
	assert.Empty(t, store.uploads)
	assert.Empty(t, repo.created)
}

func TestIngestUploadFailureSkipsInsert(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{uploadErr: errors.New("bucket unreachable")}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "risk", "2", []byte("x"))

	_, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrAttachUploadFailed))
	assert.Empty(t, repo.created)
	assert.Empty(t, store.deletes)
}

func TestIngestInsertFailureCompensates(t *testing.T) {
	repo := &fakeAttachmentRepo{createErr: errors.New("connection reset")}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "equipment", "9", []byte("x"))

	_, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrAttachInsertFailed))

	require.Len(t, store.uploads, 1)
	require.Len(t, store.deletes, 1)
	assert.Equal(t, store.uploads[0].Bucket, store.deletes[0].Bucket)
	assert.Equal(t, store.uploads[0].Path, store.deletes[0].Path)
}

func TestIngestInsertErrorWinsOverDeleteError(t *testing.T) {
	repo := &fakeAttachmentRepo{createErr: errors.New("insert failed")}
	store := &fakeObjectStore{deleteErr: errors.New("delete also failed")}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "site", "4", []byte("x"))

	_, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})

	// The compensating delete failed too, but the reported error is still
	// the insert failure.
	assert.True(t, apperrors.Is(err, apperrors.ErrAttachInsertFailed))
	assert.Len(t, store.deletes, 1)
}

func TestIngestBase64Body(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "site", "11", []byte("raw-bytes"))
	encoded := []byte(base64.StdEncoding.EncodeToString(body))

	att, err := uc.Ingest(context.Background(), &IngestRequest{
		Method:      http.MethodPost,
		ContentType: contentType,
		Body:        encoded,
		IsBase64:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(11), att.EntityID)
	require.Len(t, store.uploads, 1)
	assert.Equal(t, []byte("raw-bytes"), store.uploads[0].Data)
}

func TestIngestInvalidBase64Body(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	_, contentType := uploadForm(t, "site", "11", []byte("x"))

	_, err := uc.Ingest(context.Background(), &IngestRequest{
		Method:      http.MethodPost,
		ContentType: contentType,
		Body:        []byte("%%% not base64 %%%"),
		IsBase64:    true,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrInternalServer))
	assert.Empty(t, store.uploads)
}

func TestIngestUnknownEntityTypePassesValidation(t *testing.T) {
	// Entity type membership is not checked here; an unknown type simply
	// targets a bucket that was never provisioned.
	repo := &fakeAttachmentRepo{}
	store := &fakeObjectStore{}
	uc := newTestUseCase(t, repo, store)

	body, contentType := uploadForm(t, "warehouse", "1", []byte("x"))

	att, err := uc.Ingest(context.Background(), &IngestRequest{
		Method: http.MethodPost, ContentType: contentType, Body: body,
	})
	require.NoError(t, err)
	assert.Equal(t, "warehouse-photos", att.Bucket)
}
