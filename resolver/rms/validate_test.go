package rms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchema() FlatSchema {
	return FlatSchema{
		ProducerKey:         ProducerValue,
		SchemaDetailKey:     SchemaDetailValue,
		ContactKey("name"):  "Jordan Reyes",
		ContactKey("email"): "jordan@example.com",
		SectionExperience.CountKey():                "1",
		SectionExperience.FieldKey(0, "company"):    "Acme Corp",
		SectionExperience.FieldKey(0, "role"):       "Engineer",
		SectionExperience.FieldKey(0, "date_begin"): "June 2021",
		SectionExperience.FieldKey(0, "date_end"):   "Present",
	}
}

func TestValidateAcceptsCompliantSchema(t *testing.T) {
	res := Validate(validSchema())
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.Empty(t, res.Errors)
}

func TestValidateMissingProducer(t *testing.T) {
	f := validSchema()
	delete(f, ProducerKey)

	res := Validate(f)

	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "missing compliance marker")
}

func TestValidateWrongProducerValue(t *testing.T) {
	f := validSchema()
	f[ProducerKey] = "Some Other Producer"

	res := Validate(f)

	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "Some Other Producer")
}

func TestValidateNilSchema(t *testing.T) {
	res := Validate(nil)
	assert.False(t, res.Valid)
}

func TestValidateCountHole(t *testing.T) {
	f := validSchema()
	f[SectionSkill.CountKey()] = "2"
	f[SectionSkill.FieldKey(0, "category")] = "Languages"
	// Index 1 declared by count but has no fields

	res := Validate(f)

	assert.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		found = found || strings.Contains(e, "skill") && strings.Contains(e, "index 1")
	}
	assert.True(t, found, "expected a hole error, got %v", res.Errors)
}

func TestValidateStragglerBeyondCount(t *testing.T) {
	f := validSchema()
	f[SectionSkill.CountKey()] = "2"
	f[SectionSkill.FieldKey(0, "category")] = "Languages"
	f[SectionSkill.FieldKey(1, "category")] = "Tools"
	f[SectionSkill.FieldKey(3, "category")] = "Straggler"

	res := Validate(f)

	// The straggler at index 3 is a warning, not an error
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	found := false
	for _, w := range res.Warnings {
		found = found || strings.Contains(w, "skill") && strings.Contains(w, "index 3")
	}
	assert.True(t, found, "expected a straggler warning, got %v", res.Warnings)
}

func TestValidateCountExceedsCapacity(t *testing.T) {
	f := validSchema()
	f[SectionSkill.CountKey()] = 99

	res := Validate(f)

	assert.False(t, res.Valid)
}

func TestValidateFieldWarningsNeverInvalidate(t *testing.T) {
	f := validSchema()
	f[ContactKey("email")] = "not-an-email"
	f[ContactKey("phone")] = "12"
	f[SectionExperience.FieldKey(0, "date_begin")] = "whenever"

	res := Validate(f)

	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.GreaterOrEqual(t, len(res.Warnings), 3)
}

func TestValidateAndFixRepairs(t *testing.T) {
	f := FlatSchema{
		SectionSkill.CountKey():                     5,
		SectionSkill.FieldKey(0, "category"):        "Languages",
		SectionSkill.FieldKey(1, "category"):        "Tools",
		SectionExperience.CountKey():                "1",
		SectionExperience.FieldKey(0, "company"):    "Acme",
		SectionExperience.FieldKey(0, "date_begin"): "",
		SectionExperience.FieldKey(0, "date_end"):   "jun 2021",
	}

	fix := ValidateAndFix(f)

	assert.True(t, fix.IsValid)
	assert.Equal(t, ProducerValue, fix.FixedData[ProducerKey])
	assert.Equal(t, SchemaDetailValue, fix.FixedData[SchemaDetailKey])
	assert.Equal(t, 2, fix.FixedData.GetInt(SectionSkill.CountKey()))
	assert.Equal(t, Sentinel, fix.FixedData.GetString(SectionExperience.FieldKey(0, "date_begin")))
	assert.Equal(t, "June 2021", fix.FixedData.GetString(SectionExperience.FieldKey(0, "date_end")))
	assert.NotEmpty(t, fix.Suggestions)

	// Input untouched
	assert.Equal(t, 5, f.GetInt(SectionSkill.CountKey()))
}

func TestValidateAndFixKeepsStragglersInPlace(t *testing.T) {
	f := FlatSchema{
		ProducerKey:                          ProducerValue,
		SchemaDetailKey:                      SchemaDetailValue,
		SectionSkill.CountKey():              "1",
		SectionSkill.FieldKey(0, "category"): "Languages",
		SectionSkill.FieldKey(2, "category"): "Orphan",
	}

	fix := ValidateAndFix(f)

	// Count reflects the contiguous prefix; the orphan is never dropped
	assert.Equal(t, 1, fix.FixedData.GetInt(SectionSkill.CountKey()))
	assert.Equal(t, "Orphan", fix.FixedData.GetString(SectionSkill.FieldKey(2, "category")))
}

func TestValidateAcceptsCapitalizedKeys(t *testing.T) {
	// Capitalized_Snake keys are within the wire contract; the
	// validator must resolve them the same way the decoder does
	f := FlatSchema{
		ProducerKey:            ProducerValue,
		"Schema_Detail":        SchemaDetailValue,
		"Contact_Name":         "Ada Lovelace",
		"Contact_Email":        "ada@example.com",
		"Experience_Count":     "1",
		"Experience_0_Company": "Acme",
	}

	res := Validate(f)

	assert.True(t, res.Valid, "errors: %v", res.Errors)
	for _, w := range res.Warnings {
		assert.NotContains(t, w, "contact name is empty")
		assert.NotContains(t, w, "contact email is empty")
		assert.NotContains(t, w, "at or beyond count")
	}
}

func TestValidateAndFixKeepsKeyCasing(t *testing.T) {
	f := FlatSchema{
		ProducerKey:            ProducerValue,
		SchemaDetailKey:        SchemaDetailValue,
		"Experience_Count":     "5",
		"Experience_0_Company": "Acme",
	}

	fix := ValidateAndFix(f)

	// The stale count is corrected in place under its original key,
	// never duplicated under the lowercase spelling
	assert.Equal(t, 1, fix.FixedData.GetInt("Experience_Count"))
	assert.NotContains(t, fix.FixedData, SectionExperience.CountKey())

	s, err := Decode(fix.FixedData)
	require.NoError(t, err)
	require.Len(t, s.Experiences, 1)
	assert.Equal(t, "Acme", s.Experiences[0].Company)
}
