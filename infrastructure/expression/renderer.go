// Package expression renders smart link dynamic labels with CEL.
package expression

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/internal/domain"
)

// maxCachedPrograms caps the compiled program cache. A deployment carries
// a handful of distinct dynamic labels; past the cap the cache resets
// instead of tracking recency.
const maxCachedPrograms = 256

// Renderer compiles and evaluates dynamic label expressions. Expressions
// see a single `document` variable carrying the source document's fields
// and metadata, and must produce a string:
//
//	"Invoices for " + document.metadata.customer_id
//
// Compiled programs are cached per expression; a Renderer is safe for
// concurrent use.
type Renderer struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewRenderer creates a Renderer with the document variable declared.
func NewRenderer() (*Renderer, error) {
	env, err := cel.NewEnv(
		cel.Variable("document", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create expression environment: %w", err)
	}
	return &Renderer{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Validate checks that an expression compiles and produces a string.
// Used when a dynamic label is stored, so bad expressions are rejected
// up front instead of failing at render time. Expressions touching
// document fields type-check as dyn; those pass here and fail at render
// time if they produce anything but a string.
func (r *Renderer) Validate(expression string) error {
	ast, issues := r.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("%w: dynamic label: %v", domain.ErrValidation, issues.Err())
	}
	if out := ast.OutputType(); out != cel.StringType && out != cel.DynType {
		return fmt.Errorf("%w: dynamic label must produce a string, got %s", domain.ErrValidation, out)
	}
	return nil
}

// Render evaluates an expression for a document and its metadata values.
func (r *Renderer) Render(expression string, doc document.Document, metadata map[string]string) (string, error) {
	program, err := r.program(expression)
	if err != nil {
		return "", err
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	vars := map[string]any{
		"document": map[string]any{
			"label":       doc.Label(),
			"description": doc.Description(),
			"language":    doc.Language(),
			"uuid":        doc.UUID().String(),
			"metadata":    metadata,
		},
	}

	result, _, err := program.Eval(vars)
	if err != nil {
		return "", fmt.Errorf("render dynamic label: %w", err)
	}

	label, ok := result.Value().(string)
	if !ok {
		return "", fmt.Errorf("render dynamic label: produced %T, want string", result.Value())
	}
	return label, nil
}

// program returns the cached compiled program for an expression,
// compiling it on first use.
func (r *Renderer) program(expression string) (cel.Program, error) {
	r.mu.RLock()
	program, ok := r.programs[expression]
	r.mu.RUnlock()
	if ok {
		return program, nil
	}

	ast, issues := r.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile dynamic label: %w", issues.Err())
	}
	program, err := r.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build dynamic label program: %w", err)
	}

	r.mu.Lock()
	if len(r.programs) >= maxCachedPrograms {
		r.programs = make(map[string]cel.Program, maxCachedPrograms)
	}
	r.programs[expression] = program
	r.mu.Unlock()
	return program, nil
}
