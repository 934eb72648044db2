package models

import (
	"fmt"
	"regexp"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// RenderPrompt substitutes `{field}` placeholders with values from fields.
// Unknown placeholders are left untouched.
func RenderPrompt(template string, fields map[string]any) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := fields[name]
		if !ok || v == nil {
			return m
		}
		return fmt.Sprint(v)
	})
}
