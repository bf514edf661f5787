package filestorage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
)

const (
	// MaxResumeSize is the upload limit for résumés.
	MaxResumeSize = 5 << 20
	// ResumeDir is the storage subdirectory for résumés.
	ResumeDir = "resumes"
)

var pdfMagic = []byte("%PDF-")

// ValidateResume accepts PDF uploads up to MaxResumeSize.
func ValidateResume(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return apperrors.NewBadRequestError("resume file is required")
	}
	if fileHeader.Size > MaxResumeSize {
		return apperrors.NewCustomError(apperrors.ErrInvalidUpload, "resume must be 5MB or smaller")
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		return apperrors.NewCustomError(apperrors.ErrInvalidUpload, "only PDF files are allowed")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return apperrors.NewCustomError(apperrors.ErrInvalidUpload, "only PDF files are allowed")
	}
	return nil
}
