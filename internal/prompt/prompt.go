package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"rhetoric/internal/store"
)

//go:embed system_prompt.txt
var defaultSystemTemplate string

// SchemaName is the name sent with the response schema.
const SchemaName = "incitement_verdict"

const userTemplate = "Video: {{title}}\nChannel: {{channel}}\n\nTranscript:\n{{transcript}}"

var schema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "answer": {
      "type": "string",
      "enum": ["Yes", "No", "Cannot determine"]
    },
    "reasoning": {
      "type": "string"
    },
    "evidence": {
      "type": "array",
      "items": {
        "type": "string"
      }
    }
  },
  "required": ["answer", "reasoning", "evidence"],
  "additionalProperties": false
}`)

// Payload is everything the classifier sends for one transcript.
type Payload struct {
	System     string
	User       string
	SchemaName string
	Schema     json.RawMessage
}

// Schema returns the response schema.
func Schema() json.RawMessage {
	out := make(json.RawMessage, len(schema))
	copy(out, schema)
	return out
}

// DefaultSystemTemplate returns the built-in instruction template.
func DefaultSystemTemplate() string {
	return defaultSystemTemplate
}

// LoadTemplate reads an instruction template from path. An empty path returns
// the built-in template.
func LoadTemplate(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return defaultSystemTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	tmpl := string(data)
	if strings.TrimSpace(tmpl) == "" {
		return "", fmt.Errorf("prompt template %s is empty", path)
	}
	return tmpl, nil
}

type options struct {
	system string
}

// Option customizes Build.
type Option func(*options)

// WithSystemTemplate replaces the built-in instruction template. A template
// without {{schema}} gets the schema appended.
func WithSystemTemplate(tmpl string) Option {
	return func(o *options) {
		if strings.TrimSpace(tmpl) != "" {
			o.system = tmpl
		}
	}
}

// Build renders the prompt pair and schema for a stored transcript. The
// transcript text is embedded unmodified.
func Build(t store.Transcript, opts ...Option) Payload {
	o := options{system: defaultSystemTemplate}
	for _, opt := range opts {
		opt(&o)
	}

	system := o.system
	if strings.Contains(system, "{{schema}}") {
		system = strings.ReplaceAll(system, "{{schema}}", string(schema))
	} else {
		system = strings.TrimRight(system, "\n") + "\n\nRespond with JSON matching this schema:\n" + string(schema)
	}

	user := strings.NewReplacer(
		"{{title}}", t.Title,
		"{{channel}}", t.Channel,
		"{{transcript}}", t.Text,
	).Replace(userTemplate)

	return Payload{
		System:     strings.TrimSpace(system),
		User:       user,
		SchemaName: SchemaName,
		Schema:     Schema(),
	}
}
