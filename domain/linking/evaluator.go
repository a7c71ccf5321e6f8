package linking

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pagekeep/doclink/domain/document"
)

// Evaluation errors.
var (
	// ErrUnknownField indicates a field reference outside the allowed set.
	ErrUnknownField = errors.New("unknown field reference")

	// ErrMissingMetadata indicates the source document lacks a metadata
	// value a condition's operand references.
	ErrMissingMetadata = errors.New("missing metadata value")
)

// FieldValues exposes one document's comparable fields to the evaluator.
type FieldValues struct {
	doc      document.Document
	metadata map[string]string
}

// NewFieldValues pairs a document with its metadata values by name.
func NewFieldValues(doc document.Document, metadata map[string]string) FieldValues {
	return FieldValues{doc: doc, metadata: metadata}
}

// Document returns the underlying document.
func (v FieldValues) Document() document.Document { return v.doc }

// Metadata returns the document's metadata values keyed by type name.
func (v FieldValues) Metadata() map[string]string {
	out := make(map[string]string, len(v.metadata))
	for k, val := range v.metadata {
		out[k] = val
	}
	return out
}

// Resolve returns the value of a field reference. A metadata reference the
// document does not carry resolves to ErrMissingMetadata.
func (v FieldValues) Resolve(ref FieldRef) (string, error) {
	switch ref {
	case FieldLabel:
		return v.doc.Label(), nil
	case FieldDescription:
		return v.doc.Description(), nil
	case FieldLanguage:
		return v.doc.Language(), nil
	case FieldUUID:
		return v.doc.UUID().String(), nil
	}
	if ref.IsMetadata() {
		value, ok := v.metadata[ref.MetadataName()]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingMetadata, ref)
		}
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, ref)
}

// Evaluate resolves a set of conditions for one source document against the
// given candidates and returns the matching candidates in input order.
//
// Disabled conditions are skipped. With no active conditions every
// candidate matches. Otherwise the first active condition's match set seeds
// the result and each following condition folds in per its inclusion, with
// negated conditions contributing the complement of their match set within
// the candidate set.
func Evaluate(conditions []Condition, source FieldValues, candidates []FieldValues) ([]FieldValues, error) {
	var active []Condition
	for _, cond := range conditions {
		if cond.Enabled() {
			active = append(active, cond)
		}
	}
	if len(active) == 0 {
		return append([]FieldValues(nil), candidates...), nil
	}

	universe := mapset.NewSet[int64]()
	for _, cand := range candidates {
		universe.Add(cand.Document().ID())
	}

	var result mapset.Set[int64]
	for i, cond := range active {
		matches, err := matchSet(cond, source, candidates)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", cond.String(), err)
		}
		if cond.Negated() {
			matches = universe.Difference(matches)
		}
		switch {
		case i == 0:
			result = matches
		case cond.Inclusion() == InclusionOr:
			result = result.Union(matches)
		default:
			result = result.Intersect(matches)
		}
	}

	out := make([]FieldValues, 0, result.Cardinality())
	for _, cand := range candidates {
		if result.Contains(cand.Document().ID()) {
			out = append(out, cand)
		}
	}
	return out, nil
}

// matchSet returns the IDs of the candidates satisfying one condition,
// ignoring negation.
func matchSet(cond Condition, source FieldValues, candidates []FieldValues) (mapset.Set[int64], error) {
	operand, err := resolveOperand(cond.Operand(), source)
	if err != nil {
		return nil, err
	}

	match, err := cond.Operator().Matcher(operand)
	if err != nil {
		return nil, err
	}

	matches := mapset.NewSet[int64]()
	for _, cand := range candidates {
		value, err := cand.Resolve(cond.TargetField())
		if errors.Is(err, ErrMissingMetadata) {
			// A candidate without the metadata value simply does not match.
			continue
		}
		if err != nil {
			return nil, err
		}
		if match(value) {
			matches.Add(cand.Document().ID())
		}
	}
	return matches, nil
}

// resolveOperand produces the comparison value: literal text as-is, field
// operands resolved from the source document.
func resolveOperand(operand Operand, source FieldValues) (string, error) {
	if !operand.IsField() {
		return operand.Value(), nil
	}
	value, err := source.Resolve(FieldRef(operand.Value()))
	if err != nil {
		return "", fmt.Errorf("resolve source operand: %w", err)
	}
	return value, nil
}
