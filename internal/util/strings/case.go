package strings

import (
	"strings"
	"unicode"
)

// APIName converts a model type name to its canonical wire name. An
// underscore is inserted before every uppercase letter except the first
// character, and the result is lowercased
// (MinecraftVersion -> minecraft_version, Profile -> profile).
func APIName(typeName string) string {
	var result strings.Builder
	for i, r := range typeName {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToPascalCase converts snake_case to PascalCase
func ToPascalCase(s string) string {
	parts := strings.Split(s, "_")
	var result strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(part[1:])
	}
	return result.String()
}
