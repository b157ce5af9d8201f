package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "jobportal/internal/common/errors"
)

// SessionRecordSchema describes the persisted "auth-storage" record.
const SessionRecordSchema = `{
  "type": "object",
  "required": ["isAuthenticated"],
  "properties": {
    "isAuthenticated": {"type": "boolean"},
    "user": {
      "oneOf": [
        {"type": "null"},
        {
          "type": "object",
          "required": ["id", "email", "savedJobs", "appliedJobs"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "name": {"type": "string"},
            "email": {"type": "string"},
            "isAdmin": {"type": "boolean"},
            "savedJobs": {"type": "array", "items": {"type": "string"}},
            "appliedJobs": {"type": "array", "items": {"type": "string"}},
            "cv": {"type": "string"}
          }
        }
      ]
    }
  }
}`

// CVAnalysisSchema describes the analysis service response and the persisted
// "cv-analysis" record.
const CVAnalysisSchema = `{
  "type": "object",
  "required": ["score", "recommendations"],
  "properties": {
    "score": {"type": "number", "minimum": 0, "maximum": 100},
    "matchedJobs": {"type": "integer", "minimum": 0},
    "categories": {"type": "array", "items": {"type": "string"}},
    "skills": {"type": "array", "items": {"type": "string"}},
    "experience": {"type": "array", "items": {"type": "string"}},
    "improvements": {"type": "array", "items": {"type": "string"}},
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["score", "payload"],
        "properties": {
          "score": {"type": "number", "minimum": 0, "maximum": 1},
          "payload": {"type": "object"}
        }
      }
    }
  }
}`

var (
	sessionRecordLoader = gojsonschema.NewStringLoader(SessionRecordSchema)
	cvAnalysisLoader    = gojsonschema.NewStringLoader(CVAnalysisSchema)

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// GetErrorMessages flattens the result into "field: message" strings.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return messages
}

// Err converts an invalid result into a VALIDATION_FAILED error.
func (vr *ValidationResult) Err(what string) error {
	if vr.Valid {
		return nil
	}
	return apperrors.NewValidationError(what, strings.Join(vr.GetErrorMessages(), "; "))
}

func validateDocument(schema gojsonschema.JSONLoader, doc []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, apperrors.NewValidationError("document", fmt.Sprintf("not valid JSON: %v", err))
	}

	vr := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		vr.Errors = append(vr.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return vr, nil
}

// ValidateSessionRecord checks a persisted session record before it is trusted.
func ValidateSessionRecord(doc []byte) error {
	vr, err := validateDocument(sessionRecordLoader, doc)
	if err != nil {
		return err
	}
	return vr.Err("auth-storage")
}

// ValidateCVAnalysis checks an analysis payload from the service or from storage.
func ValidateCVAnalysis(doc []byte) error {
	vr, err := validateDocument(cvAnalysisLoader, doc)
	if err != nil {
		return err
	}
	return vr.Err("cv-analysis")
}

// ValidateEmail reports whether email looks like an address.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateCredentials(email, password string) error {
	if !ValidateEmail(strings.TrimSpace(email)) {
		return apperrors.NewValidationError("email", "Please enter a valid email address")
	}
	if password == "" {
		return apperrors.NewValidationError("password", "Password is required")
	}
	return nil
}

func ValidateSignup(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name", "Name is required")
	}
	return ValidateCredentials(email, password)
}

// ValidateCVFile checks the file extension and size of a CV before upload.
func ValidateCVFile(filename string, size, maxBytes int64, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	ok := false
	for _, a := range allowed {
		if ext == a {
			ok = true
			break
		}
	}
	if !ok {
		return apperrors.NewValidationError("cv", "Please upload a PDF or Word document")
	}
	if size > maxBytes {
		return apperrors.NewValidationError("cv", fmt.Sprintf("File size exceeds %dMB limit", maxBytes/(1024*1024)))
	}
	return nil
}
