package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps JSON field names to user-facing labels
var FieldLabels = map[string]string{
	// personalInfo
	"firstName":    "First name",
	"lastName":     "Last name",
	"email":        "Email",
	"userName":     "Username",
	"headline":     "Headline",
	"profileImage": "Profile image",
	"profileCover": "Profile cover",
	"dateOfBirth":  "Date of birth",

	// collection items
	"employmentType":  "Employment type",
	"fieldOfStudy":    "Field of study",
	"startDate":       "Start date",
	"endDate":         "End date",
	"issueDate":       "Issue date",
	"expiryDate":      "Expiry date",
	"credentialId":    "Credential ID",
	"credentialUrl":   "Credential URL",
	"publicationDate": "Publication date",
	"url":             "URL",

	// preferences
	"desiredRoles":   "Desired roles",
	"expectedSalary": "Expected salary",
	"workMode":       "Work mode",
	"noticePeriod":   "Notice period",
	"currentStage":   "Current stage",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// Message joins every formatted validation error into one line
func Message(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, formatOneOfOptions(param))

	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)

	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)

	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", label)

	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and common punctuation (. ' - /)", label)

	case "valid_phone":
		return fmt.Sprintf("%s must be a phone number of 7-15 digits, optionally starting with +", label)

	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or special symbols", label)

	case "user_name":
		return fmt.Sprintf("%s must be 3-30 letters, digits, dots, underscores or hyphens", label)

	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts camelCase to capitalised spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		switch {
		case i == 0 && r >= 'a' && r <= 'z':
			result.WriteRune(r - 'a' + 'A')
		case i > 0 && r >= 'A' && r <= 'Z':
			result.WriteRune(' ')
			result.WriteRune(r - 'A' + 'a')
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

// formatOneOfOptions formats oneof options for display
func formatOneOfOptions(param string) string {
	options := strings.Split(param, " ")
	formatted := make([]string, len(options))
	for i, opt := range options {
		formatted[i] = strings.ReplaceAll(opt, "_", " ")
	}
	return strings.Join(formatted, ", ")
}
