package render

import (
	"strings"
)

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return errorStyle.Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return successStyle.Sprintf("✅ %s", message)
}

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return warningStyle.Sprintf("⚠️  %s", message)
}
