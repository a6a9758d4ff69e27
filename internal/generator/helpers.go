package generator

import (
	"strings"

	"github.com/calumari/neatgen/internal/ifc"
)

// Identifier transliterates a fully-qualified type name into the variable
// name its registration is bound to: lower case, an underscore before every
// upper-case letter that follows a non-upper-case character, every
// non-alphanumeric character replaced by an underscore, plus a trailing
// underscore. "Game::Base" becomes "game___base_".
func Identifier(typeName string) string {
	var b strings.Builder
	b.Grow(len(typeName) + 8)
	prevUpper := true
	for _, r := range typeName {
		upper := 'A' <= r && r <= 'Z'
		if upper && !prevUpper {
			b.WriteByte('_')
		}
		switch {
		case upper:
			b.WriteRune(r + 'a' - 'A')
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		prevUpper = upper
	}
	b.WriteByte('_')
	return b.String()
}

// accessLiteral renders an access value as the runtime enumerator. a must
// already be an effective access.
func accessLiteral(namespace string, a ifc.Access) string {
	switch a {
	case ifc.AccessPrivate:
		return namespace + "::Access::Private"
	case ifc.AccessProtected:
		return namespace + "::Access::Protected"
	default:
		return namespace + "::Access::Public"
	}
}

func joinRendered(parts []string) string {
	return strings.Join(parts, ", ")
}
