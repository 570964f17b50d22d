package pandadoc

import (
	"fmt"
	"strings"

	"deedflow/internal/contract"
)

// FieldTags adapts PandaDoc's text-tag convention to the PDF assembler's
// FieldNamer. Each tag names exactly one role, so the provider binds each
// party's signature to its own line.
type FieldTags struct{}

// FieldTag returns the deterministic signature tag for a role, e.g.
// "{{signature:broker}}".
func (FieldTags) FieldTag(role contract.Role) string {
	return fmt.Sprintf("{{signature:%s}}", strings.ToLower(role.String()))
}
