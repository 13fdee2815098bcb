package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openkraft/encmend/internal/domain"
)

// ValidateService re-parses files with the structural XML parser.
type ValidateService struct {
	scanner   domain.FileScanner
	validator domain.XMLValidator
	log       *slog.Logger
}

// NewValidateService creates a new ValidateService.
func NewValidateService(scanner domain.FileScanner, validator domain.XMLValidator) *ValidateService {
	return &ValidateService{
		scanner:   scanner,
		validator: validator,
		log:       slog.Default().With("component", "validate"),
	}
}

// Validate parses every file with extension ext under root.
func (s *ValidateService) Validate(ctx context.Context, root, ext string, exclude ...string) (*domain.ValidationReport, error) {
	files, err := s.scanner.Scan(root, ext, exclude...)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	report := &domain.ValidationReport{Root: root}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Add(s.ValidateFile(f))
	}
	return report, nil
}

// ValidateFile reads and parses one file.
func (s *ValidateService) ValidateFile(path string) domain.ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ValidationResult{
			File:    filepath.Base(path),
			Path:    path,
			Message: fmt.Sprintf("reading file: %v", err),
		}
	}
	return s.ValidateBytes(path, data)
}

// ValidateBytes parses data as the contents of path.
func (s *ValidateService) ValidateBytes(path string, data []byte) domain.ValidationResult {
	res := s.validator.Validate(path, data)
	if !res.Valid {
		s.log.Debug("not well-formed", "path", path, "line", res.Line, "reason", res.Message)
	}
	return res
}
