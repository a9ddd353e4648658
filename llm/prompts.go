package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/EasterCompany/dex-interview-service/interfaces"
)

// BuildSystemPrompt renders the interviewer instructions from a template and
// the persona. The result seeds every new conversation.
func BuildSystemPrompt(tmplText string, persona interfaces.Persona) (string, error) {
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}

	tmpl, err := template.New("systemMessage").Funcs(funcMap).Option("missingkey=error").Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("failed to parse system message template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, persona); err != nil {
		return "", fmt.Errorf("failed to execute system message template: %w", err)
	}

	prompt := strings.TrimSpace(buf.String())
	if prompt == "" {
		return "", fmt.Errorf("system message template rendered an empty prompt")
	}
	return prompt, nil
}
