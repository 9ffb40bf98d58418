package ingest

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		wantMsg     string
	}{
		{"plain text", "notes.txt", "text/plain; charset=utf-8", []byte("hi"), ""},
		{"markdown any type", "notes.md", "application/octet-stream", []byte("# hi"), ""},
		{"docx", "notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("x"), ""},
		{"no filename", "", "text/plain", []byte("x"), "Filename is required"},
		{"bad content type", "img.png", "image/png", []byte("x"), "Unsupported file type for img.png"},
		{"empty", "notes.txt", "text/plain", nil, "File content is required"},
		{"bad extension", "notes.csv", "text/plain", []byte("x"), "Unsupported file type. Allowed types: txt, md, pdf, doc, docx"},
		{"too large", "big.txt", "text/plain", bytes.Repeat([]byte("a"), MaxFileSize+1), "File size exceeds 10MB limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.filename, tt.contentType, tt.data)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.wantMsg, vErr.Message)
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "docx", Extension("Interview.DOCX"))
	assert.Equal(t, "md", Extension("a.b.md"))
	assert.Equal(t, "", Extension("README"))
}

func TestNormalize(t *testing.T) {
	in := "  line one\r\n\tline two\n\n\n\nline three  "
	assert.Equal(t, "line one\n line two\n\nline three", Normalize(in))
}

func TestFormatForAI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello,   world!", "Hello, world!"},
		{"price: $40 & rising\n\nnext", "price: 40 rising next"},
		{`She said "it's (kind of) slow"; ok?`, `She said "it's (kind of) slow"; ok?`},
		{"bullets • and → arrows", "bullets and arrows"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatForAI(tt.in))
	}
}

func TestFromUpload(t *testing.T) {
	tr, err := FromUpload(1, "Interview.TXT", "text/plain", []byte("a\r\nb\n\n\n\nc"))
	require.NoError(t, err)
	assert.Equal(t, "txt", tr.FileType)
	assert.Equal(t, "Interview.TXT", tr.Filename)
	assert.Equal(t, "a\nb\n\nc", tr.Content)
	assert.Equal(t, int64(1), tr.ProjectID)

	_, err = FromUpload(1, "x.exe", "application/pdf", []byte("x"))
	assert.Error(t, err)
}

func TestFromText(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	tr, err := FromText(1, "  Users   love * bundles  ", now)
	require.NoError(t, err)
	assert.Equal(t, "Pasted Text 2024-05-01T12:30:00.000Z", tr.Filename)
	assert.Equal(t, "Users love bundles", tr.Content)
	assert.Equal(t, "txt", tr.FileType)

	_, err = FromText(1, "   ", now)
	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))

	_, err = FromText(1, "★ ★", now)
	assert.True(t, errors.As(err, &vErr))
}
