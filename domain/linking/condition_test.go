package linking

import (
	"errors"
	"strings"
	"testing"

	"github.com/pagekeep/doclink/internal/domain"
)

func TestOperator_Apply(t *testing.T) {
	tests := []struct {
		operator Operator
		value    string
		operand  string
		want     bool
	}{
		{OperatorExact, "Invoice", "Invoice", true},
		{OperatorExact, "Invoice", "invoice", false},
		{OperatorIExact, "Invoice", "invoice", true},
		{OperatorIExact, "Invoice", "voice", false},
		{OperatorContains, "Invoice 42", "voice", true},
		{OperatorContains, "Invoice 42", "Voice", false},
		{OperatorIContains, "Invoice 42", "VOICE", true},
		{OperatorIContains, "Invoice 42", "receipt", false},
		{OperatorStartsWith, "Invoice 42", "Inv", true},
		{OperatorStartsWith, "Invoice 42", "inv", false},
		{OperatorIStartsWith, "Invoice 42", "inv", true},
		{OperatorIStartsWith, "Invoice 42", "42", false},
		{OperatorEndsWith, "Invoice 42", "42", true},
		{OperatorEndsWith, "Invoice 42", "43", false},
		{OperatorIEndsWith, "Invoice 42B", "42b", true},
		{OperatorIEndsWith, "Invoice 42B", "inv", false},
		{OperatorRegex, "Invoice 42", `\d+$`, true},
		{OperatorRegex, "Invoice", `\d+$`, false},
		{OperatorRegex, "Invoice 42", "voice", true},
		{OperatorIRegex, "INVOICE 42", "invoice", true},
		{OperatorIRegex, "RECEIPT", "invoice", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.operator)+"/"+tt.operand, func(t *testing.T) {
			got, err := tt.operator.Apply(tt.value, tt.operand)
			if err != nil {
				t.Fatalf("Apply(%q, %q) error = %v", tt.value, tt.operand, err)
			}
			if got != tt.want {
				t.Errorf("Apply(%q, %q) = %v, want %v", tt.value, tt.operand, got, tt.want)
			}
		})
	}
}

func TestOperator_Matcher_BadPattern(t *testing.T) {
	for _, op := range []Operator{OperatorRegex, OperatorIRegex} {
		if _, err := op.Matcher("["); err == nil {
			t.Errorf("%s.Matcher([) expected an error", op)
		}
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range AllOperators() {
		parsed, err := ParseOperator(string(op))
		if err != nil {
			t.Errorf("ParseOperator(%q) error = %v", op, err)
		}
		if parsed != op {
			t.Errorf("ParseOperator(%q) = %v", op, parsed)
		}
	}
	if _, err := ParseOperator("equals"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ParseOperator(equals) error = %v, want ErrValidation", err)
	}
}

func TestParseInclusion(t *testing.T) {
	tests := []struct {
		in      string
		want    Inclusion
		wantErr bool
	}{
		{"and", InclusionAnd, false},
		{"or", InclusionOr, false},
		{"", InclusionAnd, false},
		{"xor", "", true},
	}
	for _, tt := range tests {
		got, err := ParseInclusion(tt.in)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("ParseInclusion(%q) error = %v, want ErrValidation", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseInclusion(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseInclusion(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFieldRef(t *testing.T) {
	valid := []string{"label", "description", "language", "uuid", "metadata.customer_id"}
	for _, s := range valid {
		if _, err := ParseFieldRef(s); err != nil {
			t.Errorf("ParseFieldRef(%q) error = %v", s, err)
		}
	}

	invalid := []string{"", "title", "metadata.", "id", "document.label"}
	for _, s := range invalid {
		if _, err := ParseFieldRef(s); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("ParseFieldRef(%q) error = %v, want ErrValidation", s, err)
		}
	}
}

func TestFieldRef_Metadata(t *testing.T) {
	ref := MetadataField("customer_id")
	if !ref.IsMetadata() {
		t.Error("IsMetadata() = false")
	}
	if ref.MetadataName() != "customer_id" {
		t.Errorf("MetadataName() = %q, want %q", ref.MetadataName(), "customer_id")
	}
	if FieldLabel.IsMetadata() {
		t.Error("label should not be a metadata reference")
	}
	if FieldLabel.MetadataName() != "" {
		t.Errorf("MetadataName() = %q, want empty", FieldLabel.MetadataName())
	}
}

func TestParseOperand(t *testing.T) {
	lit, err := ParseOperand("literal", "42")
	if err != nil {
		t.Fatalf("ParseOperand(literal) error = %v", err)
	}
	if lit.IsField() || lit.Value() != "42" {
		t.Errorf("ParseOperand(literal, 42) = %v", lit)
	}

	field, err := ParseOperand("field", "metadata.customer_id")
	if err != nil {
		t.Fatalf("ParseOperand(field) error = %v", err)
	}
	if !field.IsField() || field.Value() != "metadata.customer_id" {
		t.Errorf("ParseOperand(field, metadata.customer_id) = %v", field)
	}

	if _, err := ParseOperand("field", "bogus"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ParseOperand(field, bogus) error = %v, want ErrValidation", err)
	}
	if _, err := ParseOperand("template", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ParseOperand(template) error = %v, want ErrValidation", err)
	}
}

func TestNewSmartLink(t *testing.T) {
	link, err := NewSmartLink("Related Invoices", "")
	if err != nil {
		t.Fatalf("NewSmartLink() error = %v", err)
	}
	if link.Label() != "Related Invoices" {
		t.Errorf("Label() = %q", link.Label())
	}
	if !link.Enabled() {
		t.Error("Enabled() = false for new link")
	}
	if link.HasDynamicLabel() {
		t.Error("HasDynamicLabel() = true with no expression")
	}

	if _, err := NewSmartLink("", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("NewSmartLink(\"\") error = %v, want ErrValidation", err)
	}
	long := strings.Repeat("x", MaxLinkLabelLength+1)
	if _, err := NewSmartLink(long, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("NewSmartLink(long) error = %v, want ErrValidation", err)
	}
	longExpr := strings.Repeat("x", MaxDynamicLabelLength+1)
	if _, err := NewSmartLink("ok", longExpr); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("NewSmartLink(long dynamic label) error = %v, want ErrValidation", err)
	}
}

func TestNewCondition(t *testing.T) {
	cond, err := NewCondition(1, FieldLabel, OperatorIContains, LiteralOperand("invoice"))
	if err != nil {
		t.Fatalf("NewCondition() error = %v", err)
	}
	if cond.Inclusion() != InclusionAnd {
		t.Errorf("Inclusion() = %v, want and", cond.Inclusion())
	}
	if !cond.Enabled() {
		t.Error("Enabled() = false for new condition")
	}
	if cond.Negated() {
		t.Error("Negated() = true for new condition")
	}

	// A regex operand with a bad pattern is storable; it fails at
	// resolution time instead.
	if _, err := NewCondition(1, FieldLabel, OperatorRegex, LiteralOperand("[")); err != nil {
		t.Errorf("NewCondition(bad regex) error = %v, want nil", err)
	}
}

func TestNewCondition_Validation(t *testing.T) {
	tests := []struct {
		name        string
		smartLinkID int64
		field       FieldRef
		operator    Operator
		operand     Operand
	}{
		{"no link", 0, FieldLabel, OperatorExact, LiteralOperand("x")},
		{"bad field", 1, "title", OperatorExact, LiteralOperand("x")},
		{"bad operator", 1, FieldLabel, "equals", LiteralOperand("x")},
		{"zero operand", 1, FieldLabel, OperatorExact, Operand{}},
		{"bad operand field", 1, FieldLabel, OperatorExact, FieldOperand("title")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCondition(tt.smartLinkID, tt.field, tt.operator, tt.operand)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("NewCondition() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCondition_Update(t *testing.T) {
	cond, err := NewCondition(1, FieldLabel, OperatorExact, LiteralOperand("x"))
	if err != nil {
		t.Fatalf("NewCondition() error = %v", err)
	}
	cond = cond.WithID(10)

	updated, err := cond.Update(
		InclusionOr, FieldDescription, OperatorIContains, LiteralOperand("y"), true, false,
	)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID() != 10 || updated.SmartLinkID() != 1 {
		t.Errorf("identity = (%v, %v), want (10, 1)", updated.ID(), updated.SmartLinkID())
	}
	if updated.Inclusion() != InclusionOr || !updated.Negated() || updated.Enabled() {
		t.Errorf("flags = (%v, %v, %v), want (or, true, false)",
			updated.Inclusion(), updated.Negated(), updated.Enabled())
	}

	if _, err := cond.Update("xor", FieldLabel, OperatorExact, LiteralOperand("x"), false, true); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Update(xor) error = %v, want ErrValidation", err)
	}
}

func TestCondition_String(t *testing.T) {
	cond, err := NewCondition(1, MetadataField("customer_id"), OperatorExact, FieldOperand(MetadataField("customer_id")))
	if err != nil {
		t.Fatalf("NewCondition() error = %v", err)
	}
	want := "metadata.customer_id exact source.metadata.customer_id"
	if cond.String() != want {
		t.Errorf("String() = %q, want %q", cond.String(), want)
	}

	negated := cond.WithNegated(true)
	if negated.String() != "not "+want {
		t.Errorf("String() = %q, want %q", negated.String(), "not "+want)
	}
}
