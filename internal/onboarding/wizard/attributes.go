package wizard

import (
	"strings"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

type attributeSlot struct {
	name   string
	values []string
}

// AttributeSetBuilder collects the attributes of a product as editable slots.
// It always holds at least one attribute, and every attribute at least one
// value slot.
type AttributeSetBuilder struct {
	slots []attributeSlot
}

// NewAttributeSetBuilder returns a builder with one empty attribute slot
func NewAttributeSetBuilder() *AttributeSetBuilder {
	b := &AttributeSetBuilder{}
	b.AddAttribute()
	return b
}

// AddAttribute appends an empty attribute with one empty value slot
func (b *AttributeSetBuilder) AddAttribute() {
	b.slots = append(b.slots, attributeSlot{values: []string{""}})
}

// RemoveAttribute drops the attribute at index. It refuses to remove the last
// remaining attribute and reports whether anything was removed.
func (b *AttributeSetBuilder) RemoveAttribute(index int) bool {
	if len(b.slots) <= 1 || index < 0 || index >= len(b.slots) {
		return false
	}
	b.slots = append(b.slots[:index], b.slots[index+1:]...)
	return true
}

// AddValue appends an empty value slot to the attribute at attributeIndex
func (b *AttributeSetBuilder) AddValue(attributeIndex int) bool {
	if attributeIndex < 0 || attributeIndex >= len(b.slots) {
		return false
	}
	b.slots[attributeIndex].values = append(b.slots[attributeIndex].values, "")
	return true
}

// RemoveValue drops a value slot, keeping at least one per attribute
func (b *AttributeSetBuilder) RemoveValue(attributeIndex, valueIndex int) bool {
	if attributeIndex < 0 || attributeIndex >= len(b.slots) {
		return false
	}
	values := b.slots[attributeIndex].values
	if len(values) <= 1 || valueIndex < 0 || valueIndex >= len(values) {
		return false
	}
	b.slots[attributeIndex].values = append(values[:valueIndex], values[valueIndex+1:]...)
	return true
}

// SetName renames the attribute at attributeIndex
func (b *AttributeSetBuilder) SetName(attributeIndex int, name string) error {
	if attributeIndex < 0 || attributeIndex >= len(b.slots) {
		return ErrIndexOutOfRange
	}
	b.slots[attributeIndex].name = name
	return nil
}

// SetValue overwrites one value of an attribute; both indexes must exist
func (b *AttributeSetBuilder) SetValue(attributeIndex, valueIndex int, value string) error {
	if attributeIndex < 0 || attributeIndex >= len(b.slots) {
		return ErrIndexOutOfRange
	}
	if valueIndex < 0 || valueIndex >= len(b.slots[attributeIndex].values) {
		return ErrIndexOutOfRange
	}
	b.slots[attributeIndex].values[valueIndex] = value
	return nil
}

// Replace rebuilds the slots from a whole attribute list, the way a form
// submission would fill them one field at a time.
func (b *AttributeSetBuilder) Replace(attrs []domain.Attribute) {
	b.slots = nil
	for i, attr := range attrs {
		b.AddAttribute()
		_ = b.SetName(i, attr.Name)
		for j, v := range attr.Values {
			if j > 0 {
				b.AddValue(i)
			}
			_ = b.SetValue(i, j, v)
		}
	}
	if len(b.slots) == 0 {
		b.AddAttribute()
	}
}

// Len returns the number of attribute slots
func (b *AttributeSetBuilder) Len() int {
	return len(b.slots)
}

// ValueCount returns the number of value slots of one attribute, or 0
func (b *AttributeSetBuilder) ValueCount(attributeIndex int) int {
	if attributeIndex < 0 || attributeIndex >= len(b.slots) {
		return 0
	}
	return len(b.slots[attributeIndex].values)
}

// Slots returns the raw slot contents, empty entries included
func (b *AttributeSetBuilder) Slots() []domain.Attribute {
	out := make([]domain.Attribute, len(b.slots))
	for i, s := range b.slots {
		out[i] = domain.Attribute{Name: s.name, Values: append([]string{}, s.values...)}
	}
	return out
}

// IsValid is true when there is at least one attribute and every attribute has
// a non-empty name, unique within the set, and at least one non-empty value.
func (b *AttributeSetBuilder) IsValid() bool {
	if len(b.slots) == 0 {
		return false
	}

	seen := make(map[string]struct{}, len(b.slots))
	for _, s := range b.slots {
		name := strings.TrimSpace(s.name)
		if name == "" {
			return false
		}
		if _, dup := seen[name]; dup {
			return false
		}
		seen[name] = struct{}{}

		if len(nonEmpty(s.values)) == 0 {
			return false
		}
	}
	return true
}

// Freeze returns the attribute set handed to the variant phase: names trimmed,
// empty and repeated values dropped, order preserved.
func (b *AttributeSetBuilder) Freeze() ([]domain.Attribute, error) {
	if !b.IsValid() {
		return nil, ErrInvalidAttributes
	}

	out := make([]domain.Attribute, 0, len(b.slots))
	for _, s := range b.slots {
		out = append(out, domain.Attribute{
			Name:   strings.TrimSpace(s.name),
			Values: nonEmpty(s.values),
		})
	}
	return out, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
