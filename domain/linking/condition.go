package linking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pagekeep/doclink/internal/domain"
)

// FieldRef names a document field usable in a condition: one of the
// built-in fields, or "metadata.<name>" for a metadata value.
type FieldRef string

// Built-in field references.
const (
	FieldLabel       FieldRef = "label"
	FieldDescription FieldRef = "description"
	FieldLanguage    FieldRef = "language"
	FieldUUID        FieldRef = "uuid"
)

const metadataPrefix = "metadata."

// MetadataField returns the field reference for a metadata name.
func MetadataField(name string) FieldRef {
	return FieldRef(metadataPrefix + name)
}

// ParseFieldRef validates a field reference.
func ParseFieldRef(s string) (FieldRef, error) {
	f := FieldRef(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown field reference %q", domain.ErrValidation, s)
	}
	return f, nil
}

// String returns the reference text.
func (f FieldRef) String() string {
	return string(f)
}

// Valid returns true for built-in fields and well-formed metadata
// references.
func (f FieldRef) Valid() bool {
	switch f {
	case FieldLabel, FieldDescription, FieldLanguage, FieldUUID:
		return true
	}
	return f.IsMetadata() && f.MetadataName() != ""
}

// IsMetadata returns true for "metadata.<name>" references.
func (f FieldRef) IsMetadata() bool {
	return strings.HasPrefix(string(f), metadataPrefix)
}

// MetadataName returns the metadata name of a metadata reference, or "".
func (f FieldRef) MetadataName() string {
	if !f.IsMetadata() {
		return ""
	}
	return strings.TrimPrefix(string(f), metadataPrefix)
}

// Operator is the comparison applied between a target document's field and
// the condition's operand. The i-prefixed variants compare
// case-insensitively.
type Operator string

// Operator values.
const (
	OperatorExact       Operator = "exact"
	OperatorIExact      Operator = "iexact"
	OperatorContains    Operator = "contains"
	OperatorIContains   Operator = "icontains"
	OperatorStartsWith  Operator = "startswith"
	OperatorIStartsWith Operator = "istartswith"
	OperatorEndsWith    Operator = "endswith"
	OperatorIEndsWith   Operator = "iendswith"
	OperatorRegex       Operator = "regex"
	OperatorIRegex      Operator = "iregex"
)

// AllOperators returns every known operator, in a stable order.
func AllOperators() []Operator {
	return []Operator{
		OperatorExact,
		OperatorIExact,
		OperatorContains,
		OperatorIContains,
		OperatorStartsWith,
		OperatorIStartsWith,
		OperatorEndsWith,
		OperatorIEndsWith,
		OperatorRegex,
		OperatorIRegex,
	}
}

// ParseOperator validates an operator name.
func ParseOperator(s string) (Operator, error) {
	o := Operator(s)
	if !o.Valid() {
		return "", fmt.Errorf("%w: unknown operator %q", domain.ErrValidation, s)
	}
	return o, nil
}

// String returns the operator name.
func (o Operator) String() string {
	return string(o)
}

// Valid returns true for known operators.
func (o Operator) Valid() bool {
	for _, known := range AllOperators() {
		if o == known {
			return true
		}
	}
	return false
}

// IsRegex returns true for the pattern-matching operators.
func (o Operator) IsRegex() bool {
	return o == OperatorRegex || o == OperatorIRegex
}

// Matcher returns the operator's predicate bound to an operand. Regex
// operands are compiled once here; a bad pattern is returned as an error.
func (o Operator) Matcher(operand string) (func(string) bool, error) {
	switch o {
	case OperatorExact:
		return func(s string) bool { return s == operand }, nil
	case OperatorIExact:
		return func(s string) bool { return strings.EqualFold(s, operand) }, nil
	case OperatorContains:
		return func(s string) bool { return strings.Contains(s, operand) }, nil
	case OperatorIContains:
		needle := strings.ToLower(operand)
		return func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }, nil
	case OperatorStartsWith:
		return func(s string) bool { return strings.HasPrefix(s, operand) }, nil
	case OperatorIStartsWith:
		prefix := strings.ToLower(operand)
		return func(s string) bool { return strings.HasPrefix(strings.ToLower(s), prefix) }, nil
	case OperatorEndsWith:
		return func(s string) bool { return strings.HasSuffix(s, operand) }, nil
	case OperatorIEndsWith:
		suffix := strings.ToLower(operand)
		return func(s string) bool { return strings.HasSuffix(strings.ToLower(s), suffix) }, nil
	case OperatorRegex:
		re, err := regexp.Compile(operand)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", operand, err)
		}
		return re.MatchString, nil
	case OperatorIRegex:
		re, err := regexp.Compile("(?i)" + operand)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", operand, err)
		}
		return re.MatchString, nil
	default:
		return nil, fmt.Errorf("unknown operator %q", o)
	}
}

// Apply evaluates the operator for a single value and operand.
func (o Operator) Apply(value, operand string) (bool, error) {
	match, err := o.Matcher(operand)
	if err != nil {
		return false, err
	}
	return match(value), nil
}

// Inclusion controls how a condition's match set folds into the running
// result during resolution.
type Inclusion string

// Inclusion values.
const (
	InclusionAnd Inclusion = "and"
	InclusionOr  Inclusion = "or"
)

// ParseInclusion validates an inclusion name. Empty defaults to and.
func ParseInclusion(s string) (Inclusion, error) {
	switch i := Inclusion(s); i {
	case InclusionAnd, InclusionOr:
		return i, nil
	case "":
		return InclusionAnd, nil
	default:
		return "", fmt.Errorf("%w: unknown inclusion %q", domain.ErrValidation, s)
	}
}

// String returns the inclusion name.
func (i Inclusion) String() string {
	return string(i)
}

// OperandKind tags how a condition's comparison value is produced.
type OperandKind string

// OperandKind values.
const (
	// OperandLiteral compares against fixed text.
	OperandLiteral OperandKind = "literal"
	// OperandField compares against a field resolved from the source
	// document at resolution time.
	OperandField OperandKind = "field"
)

// Operand is the right-hand side of a condition's comparison.
type Operand struct {
	kind  OperandKind
	value string
}

// LiteralOperand creates an operand holding fixed text.
func LiteralOperand(text string) Operand {
	return Operand{kind: OperandLiteral, value: text}
}

// FieldOperand creates an operand resolved from the source document.
func FieldOperand(ref FieldRef) Operand {
	return Operand{kind: OperandField, value: string(ref)}
}

// ParseOperand validates an operand kind and value pair.
func ParseOperand(kind, value string) (Operand, error) {
	switch OperandKind(kind) {
	case OperandLiteral:
		return LiteralOperand(value), nil
	case OperandField:
		ref, err := ParseFieldRef(value)
		if err != nil {
			return Operand{}, err
		}
		return FieldOperand(ref), nil
	default:
		return Operand{}, fmt.Errorf("%w: unknown operand kind %q", domain.ErrValidation, kind)
	}
}

// Kind returns the operand kind.
func (o Operand) Kind() OperandKind { return o.kind }

// Value returns the literal text or the field reference.
func (o Operand) Value() string { return o.value }

// IsField returns true for source-field operands.
func (o Operand) IsField() bool { return o.kind == OperandField }

// String returns a readable representation.
func (o Operand) String() string {
	if o.IsField() {
		return "source." + o.value
	}
	return fmt.Sprintf("%q", o.value)
}

// Condition is one comparison belonging to a smart link. Conditions are
// evaluated in creation order; each condition's match set folds into the
// running result per its inclusion.
type Condition struct {
	id          int64
	smartLinkID int64
	inclusion   Inclusion
	targetField FieldRef
	operator    Operator
	operand     Operand
	negated     bool
	enabled     bool
}

// NewCondition creates an enabled condition with inclusion and.
// Regex operands are not compiled here; bad patterns surface as resolution
// errors.
func NewCondition(smartLinkID int64, targetField FieldRef, operator Operator, operand Operand) (Condition, error) {
	if smartLinkID <= 0 {
		return Condition{}, fmt.Errorf("%w: condition requires a smart link", domain.ErrValidation)
	}
	if !targetField.Valid() {
		return Condition{}, fmt.Errorf(
			"%w: unknown field reference %q", domain.ErrValidation, targetField,
		)
	}
	if !operator.Valid() {
		return Condition{}, fmt.Errorf("%w: unknown operator %q", domain.ErrValidation, operator)
	}
	if operand.kind == "" {
		return Condition{}, fmt.Errorf("%w: condition requires an operand", domain.ErrValidation)
	}
	if operand.IsField() && !FieldRef(operand.value).Valid() {
		return Condition{}, fmt.Errorf(
			"%w: unknown field reference %q", domain.ErrValidation, operand.value,
		)
	}
	return Condition{
		smartLinkID: smartLinkID,
		inclusion:   InclusionAnd,
		targetField: targetField,
		operator:    operator,
		operand:     operand,
		enabled:     true,
	}, nil
}

// ReconstructCondition creates a Condition from persisted state.
func ReconstructCondition(
	id, smartLinkID int64,
	inclusion Inclusion,
	targetField FieldRef,
	operator Operator,
	operand Operand,
	negated, enabled bool,
) Condition {
	return Condition{
		id:          id,
		smartLinkID: smartLinkID,
		inclusion:   inclusion,
		targetField: targetField,
		operator:    operator,
		operand:     operand,
		negated:     negated,
		enabled:     enabled,
	}
}

// ID returns the condition ID.
func (c Condition) ID() int64 { return c.id }

// SmartLinkID returns the owning smart link's ID.
func (c Condition) SmartLinkID() int64 { return c.smartLinkID }

// Inclusion returns how this condition folds into the running result.
func (c Condition) Inclusion() Inclusion { return c.inclusion }

// TargetField returns the candidate document field being compared.
func (c Condition) TargetField() FieldRef { return c.targetField }

// Operator returns the comparison operator.
func (c Condition) Operator() Operator { return c.operator }

// Operand returns the comparison operand.
func (c Condition) Operand() Operand { return c.operand }

// Negated returns true when the condition's match set is inverted.
func (c Condition) Negated() bool { return c.negated }

// Enabled returns false when the condition is skipped during resolution.
func (c Condition) Enabled() bool { return c.enabled }

// WithID returns a copy with the given ID set.
func (c Condition) WithID(id int64) Condition {
	c.id = id
	return c
}

// WithInclusion returns a copy with the inclusion replaced.
func (c Condition) WithInclusion(inclusion Inclusion) Condition {
	c.inclusion = inclusion
	return c
}

// WithNegated returns a copy with the negation flag set.
func (c Condition) WithNegated(negated bool) Condition {
	c.negated = negated
	return c
}

// WithEnabled returns a copy with the enabled flag set.
func (c Condition) WithEnabled(enabled bool) Condition {
	c.enabled = enabled
	return c
}

// Update returns a copy with all mutable fields replaced, applying the same
// validation as NewCondition.
func (c Condition) Update(
	inclusion Inclusion,
	targetField FieldRef,
	operator Operator,
	operand Operand,
	negated, enabled bool,
) (Condition, error) {
	updated, err := NewCondition(c.smartLinkID, targetField, operator, operand)
	if err != nil {
		return Condition{}, err
	}
	if _, err := ParseInclusion(string(inclusion)); err != nil {
		return Condition{}, err
	}
	if inclusion == "" {
		inclusion = InclusionAnd
	}
	updated.id = c.id
	updated.inclusion = inclusion
	updated.negated = negated
	updated.enabled = enabled
	return updated, nil
}

// String returns a readable representation of the comparison.
func (c Condition) String() string {
	not := ""
	if c.negated {
		not = "not "
	}
	return fmt.Sprintf("%s%s %s %s", not, c.targetField, c.operator, c.operand)
}
