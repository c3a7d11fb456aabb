package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMultipartFieldsAndFile(t *testing.T) {
	body, contentType := buildForm(t,
		[][2]string{{"entity_type", "site"}, {"entity_id", "42"}},
		formFile{Field: "file", FileName: "roof.png", Data: []byte("png-bytes")},
	)

	upload, err := DecodeMultipart(body, contentType)
	require.NoError(t, err)

	assert.Equal(t, "site", upload.Fields["entity_type"])
	assert.Equal(t, "42", upload.Fields["entity_id"])
	assert.Equal(t, "roof.png", upload.FileName)
	assert.Equal(t, []byte("png-bytes"), upload.FileData)
}

func TestDecodeMultipartDuplicateFieldLastWins(t *testing.T) {
	body, contentType := buildForm(t,
		[][2]string{
			{"entity_type", "site"},
			{"entity_id", "1"},
			{"entity_id", "2"},
		},
		formFile{Field: "file", FileName: "a.jpg", Data: []byte("x")},
	)

	upload, err := DecodeMultipart(body, contentType)
	require.NoError(t, err)

	assert.Equal(t, "2", upload.Fields["entity_id"])
}

func TestDecodeMultipartMultipleFilesLastWins(t *testing.T) {
	body, contentType := buildForm(t, nil,
		formFile{Field: "file", FileName: "first.jpg", Data: []byte("first")},
		formFile{Field: "file", FileName: "second.jpg", Data: []byte("second")},
	)

	upload, err := DecodeMultipart(body, contentType)
	require.NoError(t, err)

	assert.Equal(t, "second.jpg", upload.FileName)
	assert.Equal(t, []byte("second"), upload.FileData)
}

func TestDecodeMultipartDefaultFileName(t *testing.T) {
	body, contentType := buildForm(t, nil,
		formFile{Field: "upload", FileName: "", Data: []byte("bytes")},
	)

	upload, err := DecodeMultipart(body, contentType)
	require.NoError(t, err)

	assert.Equal(t, "file", upload.FileName)
	assert.Equal(t, []byte("bytes"), upload.FileData)
}

func TestDecodeMultipartMissingBoundary(t *testing.T) {
	_, err := DecodeMultipart([]byte("irrelevant"), "multipart/form-data")
	assert.Error(t, err)
}

func TestDecodeMultipartNotMultipart(t *testing.T) {
	_, err := DecodeMultipart([]byte(`{}`), "application/json")
	assert.Error(t, err)
}

func TestDecodeMultipartTruncatedBody(t *testing.T) {
	body, contentType := buildForm(t,
		[][2]string{{"entity_type", "site"}},
		formFile{Field: "file", FileName: "a.jpg", Data: []byte("0123456789")},
	)

	_, err := DecodeMultipart(body[:len(body)/2], contentType)
	assert.Error(t, err)
}
