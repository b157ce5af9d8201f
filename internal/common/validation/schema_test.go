package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "jobportal/internal/common/errors"
)

func TestValidateSessionRecord(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{
			name:  "anonymous",
			doc:   `{"user": null, "isAuthenticated": false}`,
			valid: true,
		},
		{
			name:  "signed in",
			doc:   `{"user": {"id": "1", "name": "John Doe", "email": "a@b.test", "isAdmin": false, "savedJobs": ["j1"], "appliedJobs": [], "cv": "https://files.test/cv.pdf"}, "isAuthenticated": true}`,
			valid: true,
		},
		{
			name:  "saved jobs not strings",
			doc:   `{"user": {"id": "1", "email": "a@b.test", "savedJobs": [1, 2], "appliedJobs": []}, "isAuthenticated": true}`,
			valid: false,
		},
		{
			name:  "missing flag",
			doc:   `{"user": null}`,
			valid: false,
		},
		{
			name:  "admin flag wrong type",
			doc:   `{"user": {"id": "1", "email": "a@b.test", "isAdmin": "yes", "savedJobs": [], "appliedJobs": []}, "isAuthenticated": true}`,
			valid: false,
		},
		{
			name:  "not json",
			doc:   `{user`,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionRecord([]byte(tt.doc))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestValidateCVAnalysis(t *testing.T) {
	ok := `{"score": 72, "matchedJobs": 3, "categories": ["Engineering"], "skills": ["go"], "experience": ["3 years"], "improvements": [], "recommendations": [{"id": 1, "score": 0.91, "payload": {"title": "Go Dev"}}]}`
	assert.NoError(t, ValidateCVAnalysis([]byte(ok)))

	badScore := `{"score": 72, "recommendations": [{"score": 91, "payload": {}}]}`
	assert.Error(t, ValidateCVAnalysis([]byte(badScore)))

	missing := `{"score": 72}`
	assert.Error(t, ValidateCVAnalysis([]byte(missing)))
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("admin@example.com", "secret"))
	assert.Error(t, ValidateCredentials("not-an-email", "secret"))
	assert.Error(t, ValidateCredentials("admin@example.com", ""))

	assert.NoError(t, ValidateSignup("Jane", "jane@example.com", "pw"))
	err := ValidateSignup("  ", "jane@example.com", "pw")
	assert.Equal(t, "Name is required", apperrors.MessageOf(err))
}

func TestValidateCVFile(t *testing.T) {
	allowed := []string{".pdf", ".doc", ".docx"}
	const max = 5 * 1024 * 1024

	assert.NoError(t, ValidateCVFile("resume.PDF", 1024, max, allowed))
	assert.NoError(t, ValidateCVFile("resume.docx", max, max, allowed))

	err := ValidateCVFile("resume.txt", 10, max, allowed)
	assert.Equal(t, "Please upload a PDF or Word document", apperrors.MessageOf(err))

	err = ValidateCVFile("resume.pdf", max+1, max, allowed)
	assert.Equal(t, "File size exceeds 5MB limit", apperrors.MessageOf(err))
}
