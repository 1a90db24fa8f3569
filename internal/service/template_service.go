// internal/service/template_service.go
package service

import (
	"strings"
)

// campaignTemplate is the greeting wrapped around every campaign message.
const campaignTemplate = "Hi {name}, {message}"

// RenderTemplate replaces each {key} in template with data[key].
func RenderTemplate(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	// One pass, so a value containing a placeholder is not expanded again.
	return strings.NewReplacer(pairs...).Replace(template)
}

// PersonalizeMessage renders the campaign greeting for one recipient.
func PersonalizeMessage(name, message string) string {
	return RenderTemplate(campaignTemplate, map[string]string{
		"name":    name,
		"message": message,
	})
}
