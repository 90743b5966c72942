package helper

import (
	"strings"

	"github.com/google/uuid"
)

// NewStudentNumber generates a human-readable student identifier such as
// STU3F9A01BC for profiles created administratively.
func NewStudentNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "STU" + strings.ToUpper(raw[:8])
}
