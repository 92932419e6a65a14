package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

var validate = validator.New()

// ValidateBatchConfig checks a batch configuration before it is started.
// Struct rules come from the validate tags on domain.BatchConfig; the
// template must additionally be an existing .docx file.
func ValidateBatchConfig(cfg domain.BatchConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return validationError(err)
	}

	if !strings.EqualFold(filepath.Ext(cfg.TemplatePath), ".docx") {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTemplate, cfg.TemplatePath)
	}
	info, err := os.Stat(cfg.TemplatePath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, cfg.TemplatePath)
	}

	return nil
}

// validationError maps the first failed field to a domain error.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "APIKey":
		return domain.ErrMissingAPIKey
	case "Participants":
		return domain.ErrNoParticipants
	case "TemplatePath":
		return fmt.Errorf("%w: template path is required", domain.ErrTemplateNotFound)
	default:
		return fmt.Errorf("%w: %s failed %q", domain.ErrInvalidInput, fe.Field(), fe.Tag())
	}
}
