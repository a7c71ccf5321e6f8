// Package linking defines smart links: reusable, condition-based
// relationships between documents. A smart link is resolved for a source
// document by evaluating its conditions against candidate documents of the
// link's enabled document types.
package linking

import (
	"fmt"
	"strings"

	"github.com/pagekeep/doclink/internal/domain"
)

// Column limits for smart links.
const (
	MaxLinkLabelLength    = 96
	MaxDynamicLabelLength = 96
)

// SmartLink is a named definition of a document relationship. Conditions
// and document type assignments are held separately and reference the link
// by ID.
type SmartLink struct {
	id           int64
	label        string
	dynamicLabel string
	enabled      bool
}

// NewSmartLink creates an enabled smart link. The dynamic label is an
// optional expression rendered per source document in place of the label.
func NewSmartLink(label, dynamicLabel string) (SmartLink, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return SmartLink{}, fmt.Errorf("%w: smart link label is required", domain.ErrValidation)
	}
	if len(label) > MaxLinkLabelLength {
		return SmartLink{}, fmt.Errorf(
			"%w: smart link label exceeds %d characters", domain.ErrValidation, MaxLinkLabelLength,
		)
	}
	if len(dynamicLabel) > MaxDynamicLabelLength {
		return SmartLink{}, fmt.Errorf(
			"%w: dynamic label exceeds %d characters", domain.ErrValidation, MaxDynamicLabelLength,
		)
	}
	return SmartLink{label: label, dynamicLabel: dynamicLabel, enabled: true}, nil
}

// ReconstructSmartLink creates a SmartLink from persisted state.
func ReconstructSmartLink(id int64, label, dynamicLabel string, enabled bool) SmartLink {
	return SmartLink{id: id, label: label, dynamicLabel: dynamicLabel, enabled: enabled}
}

// ID returns the smart link ID.
func (l SmartLink) ID() int64 { return l.id }

// Label returns the smart link label.
func (l SmartLink) Label() string { return l.label }

// DynamicLabel returns the per-document label expression, or "".
func (l SmartLink) DynamicLabel() string { return l.dynamicLabel }

// Enabled returns false when the link is switched off entirely.
func (l SmartLink) Enabled() bool { return l.enabled }

// HasDynamicLabel returns true when a label expression is set.
func (l SmartLink) HasDynamicLabel() bool { return l.dynamicLabel != "" }

// WithID returns a copy with the given ID set.
func (l SmartLink) WithID(id int64) SmartLink {
	l.id = id
	return l
}

// Update returns a copy with the mutable fields replaced, applying the same
// validation as NewSmartLink.
func (l SmartLink) Update(label, dynamicLabel string, enabled bool) (SmartLink, error) {
	updated, err := NewSmartLink(label, dynamicLabel)
	if err != nil {
		return SmartLink{}, err
	}
	updated.id = l.id
	updated.enabled = enabled
	return updated, nil
}
