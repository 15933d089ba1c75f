package rms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldKeyRoundTrip(t *testing.T) {
	for _, sec := range AllSections {
		for _, field := range sec.Fields() {
			key := sec.FieldKey(3, field)
			pk, ok := ParseFieldKey(key)
			require.True(t, ok, "key %q should parse", key)
			assert.Equal(t, sec, pk.Section)
			assert.Equal(t, 3, pk.Index)
			assert.Equal(t, field, pk.Field)
		}
	}
}

func TestParseFieldKeyCasing(t *testing.T) {
	pk, ok := ParseFieldKey("Experience_0_Company")
	require.True(t, ok)
	assert.Equal(t, SectionExperience, pk.Section)
	assert.Equal(t, 0, pk.Index)
	assert.Equal(t, "company", pk.Field)
}

func TestParseFieldKeyRejects(t *testing.T) {
	tests := []string{
		"experience_count",
		"experience_16_company", // beyond capacity
		"experience_-1_company",
		"experience_x_company",
		"experience_0_",
		"unknown_0_field",
		"Producer",
		"summary",
		"contact_email",
	}
	for _, key := range tests {
		_, ok := ParseFieldKey(key)
		assert.False(t, ok, "key %q should not parse", key)
	}
}

func TestParseCountKey(t *testing.T) {
	sec, ok := ParseCountKey("involvement_count")
	require.True(t, ok)
	assert.Equal(t, SectionInvolvement, sec)

	sec, ok = ParseCountKey("Experience_Count")
	require.True(t, ok)
	assert.Equal(t, SectionExperience, sec)

	_, ok = ParseCountKey("banana_count")
	assert.False(t, ok)
	_, ok = ParseCountKey("experience_0_company")
	assert.False(t, ok)
}

func TestSectionFieldsDefined(t *testing.T) {
	for _, sec := range AllSections {
		assert.NotEmpty(t, sec.Fields(), "section %q has no fields", sec)
	}
}
