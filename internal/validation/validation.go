// Package validation provides centralized input validation for guardiand.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// =============================================================================
// Entity Validation
// =============================================================================

// Telemetry validates a drive telemetry snapshot. A failure rejects
// only this drive; batch operations continue with the rest.
func Telemetry(t model.DriveTelemetry) error {
	errs := errors.NewValidationErrors()

	if err := validate.Struct(t); err != nil {
		collectFieldErrors(errs, err)
	}

	// The struct tags catch these too; the explicit checks attach the
	// sentinel the rest of the system matches on.
	if t.ReallocatedSectors < 0 || t.PendingSectors < 0 || t.UDMACRCErrors < 0 || t.SpinRetries < 0 {
		errs.Add(fmt.Errorf("drive %s: %w", t.DriveID, errors.ErrNegativeCounter))
	}
	if t.CapacityBytes > 0 && t.UsedBytes > t.CapacityBytes {
		errs.Add(fmt.Errorf("drive %s: %w", t.DriveID, errors.ErrUsedExceedsCapacity))
	}

	return errs.Err()
}

// File validates a file record against the given reference time.
func File(f model.FileRecord, now time.Time) error {
	errs := errors.NewValidationErrors()

	if err := validate.Struct(f); err != nil {
		collectFieldErrors(errs, err)
	}

	if !f.LastAccessed.IsZero() && f.LastAccessed.After(now) {
		errs.Add(fmt.Errorf("file %s last_accessed: %w", f.FileID, errors.ErrTimestampInFuture))
	}
	if !f.CreatedAt.IsZero() && f.CreatedAt.After(now) {
		errs.Add(fmt.Errorf("file %s created_at: %w", f.FileID, errors.ErrTimestampInFuture))
	}

	return errs.Err()
}

// collectFieldErrors translates validator field errors into the
// sentinel-based taxonomy.
func collectFieldErrors(errs *errors.ValidationErrors, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add(errors.Wrap(err, "validate"))
		return
	}

	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			errs.AddMissing(fe.Field())
		case "ltefield":
			errs.Add(fmt.Errorf("%s: %w", fe.Field(), errors.ErrUsedExceedsCapacity))
		default:
			errs.AddField(fe.Field(), fmt.Sprintf("failed %s constraint", fe.Tag()))
		}
	}
}

// =============================================================================
// Identifier Validation
// =============================================================================

// IDRules defines the validation rules for entity identifiers.
type IDRules struct {
	MinLength    int
	MaxLength    int
	AllowDots    bool
	AllowHyphens bool
	AllowUnders  bool
}

// DefaultIDRules returns the default rules for drive and file IDs.
func DefaultIDRules() IDRules {
	return IDRules{
		MinLength:    1,
		MaxLength:    255,
		AllowDots:    false,
		AllowHyphens: true,
		AllowUnders:  true,
	}
}

// FileIDRules returns rules for file identifiers, which may carry
// dotted extensions.
func FileIDRules() IDRules {
	return IDRules{
		MinLength:    1,
		MaxLength:    255,
		AllowDots:    true,
		AllowHyphens: true,
		AllowUnders:  true,
	}
}

// ValidateID validates an identifier according to the given rules.
func ValidateID(id string, rules IDRules) error {
	if len(id) < rules.MinLength {
		return fmt.Errorf("id too short: minimum %d characters required", rules.MinLength)
	}
	if len(id) > rules.MaxLength {
		return fmt.Errorf("id too long: maximum %d characters allowed", rules.MaxLength)
	}

	if id == "." || id == ".." {
		return fmt.Errorf("id cannot be '.' or '..'")
	}

	if strings.HasPrefix(id, ".") {
		return fmt.Errorf("id cannot start with '.'")
	}

	for i, r := range id {
		if r < 32 || r == 127 {
			return fmt.Errorf("id cannot contain control characters at position %d", i)
		}
		if r == '/' || r == '\\' {
			return fmt.Errorf("id cannot contain path separators at position %d", i)
		}
		if !isAllowedIDChar(r, rules) {
			return fmt.Errorf("invalid character '%c' at position %d", r, i)
		}
	}

	return nil
}

func isAllowedIDChar(r rune, rules IDRules) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '.':
		return rules.AllowDots
	case '-':
		return rules.AllowHyphens
	case '_':
		return rules.AllowUnders
	}
	return false
}

// ValidateDriveID validates a drive identifier with default rules.
func ValidateDriveID(id string) error {
	return ValidateID(id, DefaultIDRules())
}

// ValidateFileID validates a file identifier.
func ValidateFileID(id string) error {
	return ValidateID(id, FileIDRules())
}

// =============================================================================
// SQL LIKE Escaping
// =============================================================================

var sqlLikeMetaChars = regexp.MustCompile(`[%_\[\]\\]`)

// EscapeLikePattern escapes special characters in a LIKE pattern.
//
func EscapeLikePattern(pattern string) string {
	return sqlLikeMetaChars.ReplaceAllStringFunc(pattern, func(s string) string {
		return "\\" + s
	})
}

// SafeLikePrefix creates a safe LIKE prefix pattern.
func SafeLikePrefix(prefix string) string {
	return EscapeLikePattern(prefix) + "%"
}

// SafeLikeContains creates a safe LIKE contains pattern.
func SafeLikeContains(pattern string) string {
	return "%" + EscapeLikePattern(pattern) + "%"
}
