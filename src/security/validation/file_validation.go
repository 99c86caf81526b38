package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/username/mpesaviz/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
// Statement uploads are PDF only.
var AllowedClientContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/x-pdf":        true,
	"application/octet-stream": true, // generic fallback, magic bytes decide
}

// pdfMagic is the signature every PDF begins with.
var pdfMagic = []byte("%PDF-")

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.Split(contentType, ";")[0])
	if allowed, exists := AllowedClientContentTypes[normalized]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for statement upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// It returns an error when the content is not a PDF, and resets the read
// pointer so the transfer can read the full file afterwards.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, len(pdfMagic))
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if !bytes.Equal(buffer[:n], pdfMagic) {
		logger.L.Warn("Uploaded file does not carry a PDF signature")
		return fmt.Errorf("file content is not a PDF statement")
	}

	logger.L.Debug("File content validated as PDF")
	return nil
}
