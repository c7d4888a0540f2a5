// Package capability is the startup-time registry of optional renderers that
// task bodies can ask for by name. Callers query presence explicitly with
// Lookup, or use Require to get an UnavailableError for a missing renderer.
package capability

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"
	"text/template"

	"github.com/cbroglie/mustache"
	"github.com/yuin/goldmark"
)

// Built-in renderer names.
const (
	Markdown = "markdown"
	Mustache = "mustache"
	Template = "template"
)

// Renderer turns input text and optional data into output text.
type Renderer interface {
	Render(input string, data interface{}) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(input string, data interface{}) (string, error)

// Render calls fn.
func (fn RendererFunc) Render(input string, data interface{}) (string, error) {
	return fn(input, data)
}

// UnavailableError is returned by Require for a name with no renderer.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("no %s, sorry", e.Name)
}

// IsUnavailable checks if an error is an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Registry maps names to renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Builtin creates a registry holding the markdown, mustache and template
// renderers, minus any names listed in disabled.
func Builtin(disabled ...string) *Registry {
	r := NewRegistry()
	r.Register(Markdown, RendererFunc(renderMarkdown))
	r.Register(Mustache, RendererFunc(renderMustache))
	r.Register(Template, RendererFunc(renderTemplate))
	for _, name := range disabled {
		r.Unregister(name)
	}
	return r
}

// Register adds or replaces a renderer.
func (r *Registry) Register(name string, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[name] = renderer
}

// Unregister removes a renderer.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.renderers, name)
}

// Lookup returns the renderer for name and whether it is present.
func (r *Registry) Lookup(name string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[name]
	return renderer, ok
}

// Require returns the renderer for name or an UnavailableError.
func (r *Registry) Require(name string) (Renderer, error) {
	renderer, ok := r.Lookup(name)
	if !ok {
		return nil, &UnavailableError{Name: name}
	}
	return renderer, nil
}

// Render renders input with the named renderer.
func (r *Registry) Render(name, input string, data interface{}) (string, error) {
	renderer, err := r.Require(name)
	if err != nil {
		return "", err
	}
	return renderer.Render(input, data)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func renderMarkdown(input string, _ interface{}) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func renderMustache(input string, data interface{}) (string, error) {
	out, err := mustache.Render(input, data)
	if err != nil {
		return "", fmt.Errorf("failed to render mustache: %w", err)
	}
	return out, nil
}

func renderTemplate(input string, data interface{}) (string, error) {
	tpl, err := template.New("inline").Option("missingkey=zero").Parse(input)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
