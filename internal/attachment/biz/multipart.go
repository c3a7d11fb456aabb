package biz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

// ParsedUpload is the result of decoding a multipart/form-data body
type ParsedUpload struct {
	// FileData holds the bytes of the uploaded file part. When several file
	// parts are submitted the last one wins.
	FileData []byte
	// FileName is the submitted filename, "file" when the part carried none
	FileName string
	// Fields maps text field names to values, last value winning on duplicates
	Fields map[string]string
}

// defaultFileName is used when a file part carries no filename
const defaultFileName = "file"

// DecodeMultipart parses a fully buffered multipart/form-data body. The
// boundary is taken from the Content-Type header value.
func DecodeMultipart(body []byte, contentType string) (*ParsedUpload, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("invalid content type: %w", err)
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("not a multipart content type: %s", mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, errors.New("missing multipart boundary")
	}

	upload := &ParsedUpload{Fields: make(map[string]string)}

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read multipart part: %w", err)
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part data: %w", err)
		}

		if isFilePart(part) {
			name := part.FileName()
			if name == "" {
				name = defaultFileName
			}
			upload.FileData = data
			upload.FileName = name
		} else {
			upload.Fields[part.FormName()] = string(data)
		}
	}

	return upload, nil
}

// isFilePart reports whether the part's Content-Disposition carries a
// filename parameter. Text fields have only a name parameter.
func isFilePart(part *multipart.Part) bool {
	cd := part.Header.Get("Content-Disposition")
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}
