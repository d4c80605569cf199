package util

import (
	"fmt"
	"strings"
	"text/template"
)

var instructionFuncs = template.FuncMap{
	"join":  func(sep string, items []string) string { return strings.Join(items, sep) },
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"default": func(fallback, v any) any {
		if v == nil || v == "" {
			return fallback
		}
		return v
	},
}

// RenderTemplate renders an agent instruction against the turn variables.
// Text without actions is returned as is.
func RenderTemplate(text string, data map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("instruction").Option("missingkey=zero").Funcs(instructionFuncs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse instruction: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render instruction: %w", err)
	}
	return sb.String(), nil
}
