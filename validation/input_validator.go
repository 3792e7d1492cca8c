// Package validation checks user supplied strings before they reach the
// medication registry or the session store.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/giygas/fiche-dentaire/interfaces"
)

// Pre-compiled once at package initialization and reused for all validations
var (
	// Drug names: letters, digits, French accents and the punctuation found in
	// dosages ("Amoxicilline 500 mg", "Chlorhexidine 0,12%", "Co-Amoxi (Mepha)")
	drugNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+',%/()àâäéèêëïîôöùûüÿçÀÂÄÉÈÊËÏÎÔÖÙÛÜŸÇ]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(", "@import",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
	}
)

const (
	minDrugNameLength = 2
	maxDrugNameLength = 100
	maxDrugNameWords  = 8
)

// InputValidatorImpl implements the interfaces.InputValidator interface
type InputValidatorImpl struct{}

var _ interfaces.InputValidator = (*InputValidatorImpl)(nil)

// NewInputValidator creates a new input validator
func NewInputValidator() interfaces.InputValidator {
	return &InputValidatorImpl{}
}

// ValidateDrugName checks a medication name before it is sent to the registry
func (v *InputValidatorImpl) ValidateDrugName(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("drug name cannot be empty")
	}

	if len([]rune(trimmed)) < minDrugNameLength {
		return fmt.Errorf("drug name too short: minimum %d characters", minDrugNameLength)
	}

	if len(trimmed) > maxDrugNameLength {
		return fmt.Errorf("drug name too long: maximum %d characters", maxDrugNameLength)
	}

	// Word count validation to prevent DoS attacks with many short words
	if len(strings.Fields(trimmed)) > maxDrugNameWords {
		return fmt.Errorf("drug name too complex: maximum %d words allowed", maxDrugNameWords)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("drug name contains potentially dangerous content")
		}
	}

	if !drugNameRegex.MatchString(trimmed) {
		return fmt.Errorf("drug name contains invalid characters")
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("drug name contains excessive character repetition")
	}

	return nil
}

// ValidateSessionID checks that id is a canonical UUID
func (v *InputValidatorImpl) ValidateSessionID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	if parsed.String() != strings.ToLower(id) {
		return fmt.Errorf("invalid session id: not in canonical form")
	}
	return nil
}

// hasExcessiveRepetition checks for the same byte repeated more than 10 times in a row
func hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
