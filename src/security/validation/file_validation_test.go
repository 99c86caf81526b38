package validation

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/mpesaviz/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestValidateClientContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{"application/pdf", false},
		{"application/x-pdf", false},
		{"application/octet-stream", false},
		{"APPLICATION/PDF", false},
		{"application/pdf; charset=binary", false},
		{"text/csv", true},
		{"image/png", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateClientContentType(tt.contentType)
		if tt.wantErr {
			assert.Error(t, err, "contentType=%q", tt.contentType)
		} else {
			assert.NoError(t, err, "contentType=%q", tt.contentType)
		}
	}
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	t.Run("valid pdf", func(t *testing.T) {
		file := bytes.NewReader([]byte("%PDF-1.7 rest of document"))
		require.NoError(t, ValidateFileContentByMagicBytes(file))

		// The read pointer must be back at the start for the transfer.
		rest, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7 rest of document", string(rest))
	})

	t.Run("wrong signature", func(t *testing.T) {
		file := bytes.NewReader([]byte("PK\x03\x04 zip archive"))
		assert.Error(t, ValidateFileContentByMagicBytes(file))
	})

	t.Run("too short", func(t *testing.T) {
		file := bytes.NewReader([]byte("%PD"))
		assert.Error(t, ValidateFileContentByMagicBytes(file))
	})

	t.Run("empty file", func(t *testing.T) {
		file := bytes.NewReader(nil)
		assert.Error(t, ValidateFileContentByMagicBytes(file))
	})

	t.Run("nil file", func(t *testing.T) {
		assert.Error(t, ValidateFileContentByMagicBytes(nil))
	})
}
