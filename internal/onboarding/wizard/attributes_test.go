package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

func TestAttributeSetBuilder_StartsWithOneEmptySlot(t *testing.T) {
	b := NewAttributeSetBuilder()

	require.Equal(t, 1, b.Len())
	assert.Equal(t, []domain.Attribute{{Name: "", Values: []string{""}}}, b.Slots())
	assert.False(t, b.IsValid())
}

func TestAttributeSetBuilder_NeverDropsBelowOne(t *testing.T) {
	b := NewAttributeSetBuilder()

	assert.False(t, b.RemoveAttribute(0))
	assert.Equal(t, 1, b.Len())

	assert.False(t, b.RemoveValue(0, 0))
	assert.Equal(t, 1, b.ValueCount(0))

	b.AddAttribute()
	b.AddValue(1)
	assert.True(t, b.RemoveValue(1, 0))
	assert.False(t, b.RemoveValue(1, 0))
	assert.True(t, b.RemoveAttribute(1))
	assert.False(t, b.RemoveAttribute(0))
}

func TestAttributeSetBuilder_OutOfRangeIsNoop(t *testing.T) {
	b := NewAttributeSetBuilder()
	b.AddAttribute()

	assert.False(t, b.RemoveAttribute(5))
	assert.False(t, b.RemoveAttribute(-1))
	assert.False(t, b.AddValue(9))
	assert.ErrorIs(t, b.SetName(3, "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.SetValue(0, 4, "x"), ErrIndexOutOfRange)
	assert.Equal(t, 2, b.Len())
}

func TestAttributeSetBuilder_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		attrs []domain.Attribute
		want  bool
	}{
		{"single attribute single value", []domain.Attribute{{Name: "size", Values: []string{"S"}}}, true},
		{"two attributes", []domain.Attribute{{Name: "size", Values: []string{"S", "M"}}, {Name: "color", Values: []string{"red"}}}, true},
		{"one empty value among others", []domain.Attribute{{Name: "size", Values: []string{"S", ""}}}, true},
		{"missing name", []domain.Attribute{{Name: "  ", Values: []string{"S"}}}, false},
		{"only empty values", []domain.Attribute{{Name: "size", Values: []string{"", " "}}}, false},
		{"duplicate names", []domain.Attribute{{Name: "size", Values: []string{"S"}}, {Name: "size", Values: []string{"M"}}}, false},
		{"names are case sensitive", []domain.Attribute{{Name: "Size", Values: []string{"S"}}, {Name: "size", Values: []string{"M"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewAttributeSetBuilder()
			b.Replace(tt.attrs)
			assert.Equal(t, tt.want, b.IsValid())
		})
	}
}

func TestAttributeSetBuilder_FreezeDropsEmptyAndRepeatedValues(t *testing.T) {
	b := NewAttributeSetBuilder()
	require.NoError(t, b.SetName(0, " size "))
	require.NoError(t, b.SetValue(0, 0, "S"))
	b.AddValue(0)
	b.AddValue(0)
	b.AddValue(0)
	require.NoError(t, b.SetValue(0, 2, "M"))
	require.NoError(t, b.SetValue(0, 3, "S"))

	attrs, err := b.Freeze()
	require.NoError(t, err)
	assert.Equal(t, []domain.Attribute{{Name: "size", Values: []string{"S", "M"}}}, attrs)
}

func TestAttributeSetBuilder_FreezeInvalid(t *testing.T) {
	_, err := NewAttributeSetBuilder().Freeze()
	assert.ErrorIs(t, err, ErrInvalidAttributes)
}

func TestAttributeSetBuilder_ReplaceWithNothingKeepsOneSlot(t *testing.T) {
	b := NewAttributeSetBuilder()
	b.Replace(nil)
	assert.Equal(t, 1, b.Len())
}
