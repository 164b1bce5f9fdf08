package validation

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/username/fundfolio/backend/src/logger"
)

// pdfMagic is the signature every PDF starts with. Statements renamed from
// HTML downloads or ZIP exports fail here before the extractor touches them.
var pdfMagic = []byte("%PDF-")

// ValidateStatementFile checks that the file at path exists, is within the
// size limit, and actually is a PDF by signature rather than extension.
func ValidateStatementFile(path string, maxSizeBytes int64) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("statement file is not accessible: %w", err)
	}
	if fi.IsDir() {
		return fmt.Errorf("statement path '%s' is a directory", path)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("statement file '%s' is empty", path)
	}
	if maxSizeBytes > 0 && fi.Size() > maxSizeBytes {
		logger.L.Warn("Statement exceeds size limit", "path", path, "size", fi.Size(), "limit", maxSizeBytes)
		return fmt.Errorf("statement file is %d bytes, above the %d byte limit", fi.Size(), maxSizeBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open statement for validation: %w", err)
	}
	defer f.Close()
	return ValidateStatementContent(f)
}

// ValidateStatementContent checks the magic bytes of an already-open reader.
func ValidateStatementContent(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, len(pdfMagic))
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for content checking: %w", err)
	}

	// Reset the read pointer so the extractor sees the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if !bytes.HasPrefix(buffer[:n], pdfMagic) {
		logger.L.Warn("Statement file does not carry a PDF signature")
		return fmt.Errorf("file content is not a PDF statement")
	}
	logger.L.Debug("Statement file signature validated")
	return nil
}
