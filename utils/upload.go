package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// MaxUploadSize is the per-file limit for spreadsheet uploads.
	MaxUploadSize = 10 << 20 // 10 MiB
	// MaxBatchSize is the combined limit across all files in one request.
	MaxBatchSize = 50 << 20 // 50 MiB
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the 10MB size limit")
	ErrBatchTooLarge   = errors.New("combined upload exceeds the 50MB size limit")
	ErrUnsupportedFile = errors.New("unsupported file type, only CSV and XLSX files are accepted")
)

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// allowedMIMETypes covers what browsers and office suites actually send for
// CSV and XLSX content. XLSX is a zip container so plain application/zip is
// accepted when the extension matches.
var allowedMIMETypes = map[string]bool{
	"text/csv":        true,
	"text/plain":      true,
	"application/zip": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
}

// ValidateSpreadsheetUpload checks a single uploaded file against size,
// extension and sniffed content-type limits. It returns the file contents
// on success.
func ValidateSpreadsheetUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	// The extension alone is not trusted. Content sniffing catches renamed
	// binaries while still letting real CSV text through.
	mtype := mimetype.Detect(data)
	ok := false
	for m := mtype; m != nil; m = m.Parent() {
		if allowedMIMETypes[m.String()] {
			ok = true
			break
		}
	}
	if !ok {
		return nil, ErrUnsupportedFile
	}

	return data, nil
}

// ValidateBatchSize enforces the combined size limit across a multi-file upload.
func ValidateBatchSize(files []*multipart.FileHeader) error {
	var total int64
	for _, fh := range files {
		total += fh.Size
	}
	if total > MaxBatchSize {
		return ErrBatchTooLarge
	}
	return nil
}

// SaveUploadedFile stores an uploaded file under dir with a random name,
// preserving the original extension. It returns the stored path.
func SaveUploadedFile(fh *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return dstPath, nil
}

// TruthyString normalizes form-field booleans the way browsers send them.
func TruthyString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

const (
	filenameTruncateAt  = 30
	filenameTruncateTo  = 27
	filenameEllipsis    = "..."
	filenameSummarySort = ", "
)

// TruncateFilename shortens long filenames for display in batch summaries.
func TruncateFilename(name string) string {
	if len(name) > filenameTruncateAt {
		return name[:filenameTruncateTo] + filenameEllipsis
	}
	return name
}

// SummarizeFilenames builds the stored label for a multi-file batch,
// e.g. "3 files: a.csv, b.csv, c.xlsx". A single file keeps its full name,
// truncation only applies when several names share the label.
func SummarizeFilenames(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	truncated := make([]string, len(names))
	for i, n := range names {
		truncated[i] = TruncateFilename(n)
	}
	return fmt.Sprintf("%d files: %s", len(names), strings.Join(truncated, filenameSummarySort))
}
