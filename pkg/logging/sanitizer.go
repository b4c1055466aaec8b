package logging

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/facuhernandez99/shario-admin/pkg/errors"
)

const redacted = "[REDACTED]"

var (
	// Bearer credentials and JWTs are never written, in any environment.
	bearerPattern = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-_\.=]+`)
	jwtPattern    = regexp.MustCompile(`\beyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`)

	// Production-only patterns
	emailPattern = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	queryPattern = regexp.MustCompile(`(?i)([?&](?:password|token|access_token|refresh_token|secret)=)[^&\s]*`)
)

// ErrorSanitizer strips credentials from errors and log fields
type ErrorSanitizer struct {
	production    bool
	sensitiveKeys []string
	keyPatterns   []*regexp.Regexp
}

// NewErrorSanitizer creates a new error sanitizer
func NewErrorSanitizer(production bool) *ErrorSanitizer {
	s := &ErrorSanitizer{
		production: production,
		sensitiveKeys: []string{
			"password",
			"secret",
			"token",
			"credential",
			"authorization",
			"cookie",
		},
	}

	for _, keyword := range s.sensitiveKeys {
		// "keyword: value" and "keyword=value"
		s.keyPatterns = append(s.keyPatterns,
			regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)\s*[:=]\s*[^\s,;)}\]]+`, keyword)))
	}

	return s
}

// Sanitize sanitizes an error for safe logging
func (s *ErrorSanitizer) Sanitize(err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := apperrors.IsAppError(err); ok {
		return s.sanitizeAppError(appErr)
	}

	message := err.Error()
	if sanitized := s.sanitizeString(message); sanitized != message {
		return errors.New(sanitized)
	}
	return err
}

func (s *ErrorSanitizer) sanitizeAppError(appErr *apperrors.AppError) error {
	sanitized := &apperrors.AppError{Code: appErr.Code, StatusCode: appErr.StatusCode}
	if s.production && appErr.Code == apperrors.ErrCodeInternal {
		sanitized.Message = "Internal error"
		return sanitized
	}

	sanitized.Message = s.sanitizeString(appErr.Message)
	if appErr.Details != "" {
		sanitized.WithDetails(s.sanitizeString(appErr.Details))
	}
	if appErr.Err != nil {
		sanitized.Err = s.Sanitize(appErr.Err)
	}
	return sanitized
}

// SanitizeString removes credentials from free text.
func (s *ErrorSanitizer) SanitizeString(input string) string {
	return s.sanitizeString(input)
}

func (s *ErrorSanitizer) sanitizeString(input string) string {
	if input == "" {
		return input
	}

	result := bearerPattern.ReplaceAllString(input, "Bearer "+redacted)
	result = jwtPattern.ReplaceAllString(result, redacted)

	for _, re := range s.keyPatterns {
		result = re.ReplaceAllString(result, "$1: "+redacted)
	}

	if s.production {
		result = queryPattern.ReplaceAllString(result, "${1}"+redacted)
		result = emailPattern.ReplaceAllStringFunc(result, maskEmail)
	}

	return result
}

// maskEmail keeps the first two characters of the local part and the domain
func maskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return redacted
	}
	if len(parts[0]) > 2 {
		return parts[0][:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// SanitizeMap sanitizes a map of values (useful for request/response logging)
func (s *ErrorSanitizer) SanitizeMap(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(data))
	for key, value := range data {
		sanitized[key] = s.sanitizeValue(key, value)
	}
	return sanitized
}

func (s *ErrorSanitizer) sanitizeValue(key string, value interface{}) interface{} {
	if s.isSensitiveKey(key) {
		return redacted
	}

	switch v := value.(type) {
	case string:
		return s.sanitizeString(v)
	case map[string]interface{}:
		return s.SanitizeMap(v)
	case map[string]string:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = s.sanitizeValue(k, item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = s.sanitizeValue(fmt.Sprintf("%s[%d]", key, i), item)
		}
		return out
	}

	return value
}

func (s *ErrorSanitizer) isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, keyword := range s.sensitiveKeys {
		if strings.Contains(keyLower, keyword) {
			return true
		}
	}
	return false
}

// IsSensitiveError checks if an error contains sensitive information
func (s *ErrorSanitizer) IsSensitiveError(err error) bool {
	if err == nil {
		return false
	}
	return s.sanitizeString(err.Error()) != err.Error()
}
