package prompt

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/kapu/liqu-discord-bot/internal/constants"
)

type TemplateName string

const (
	TemplateAsk TemplateName = "ask"
)

var templateSources = map[TemplateName]string{
	TemplateAsk: "{{.Context}}\n\nUser Question: {{.Question}}\n\nAnswer:",
}

// AskData is the input of the ask template.
type AskData struct {
	Context  string
	Question string
}

type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[TemplateName]*template.Template
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[TemplateName]*template.Template),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

// Build renders the ask prompt. An empty context falls back to the default
// assistant persona; any other value is used verbatim.
func Build(context, question string) (string, error) {
	if context == "" {
		context = constants.DefaultPersona
	}
	return DefaultPromptBuilder().Render(TemplateAsk, AskData{
		Context:  context,
		Question: question,
	})
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	tmpl, err := pb.getTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return buf.String(), nil
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*template.Template, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	source, ok := templateSources[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt template %s", name)
	}

	tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = tmpl

	return tmpl, nil
}
