package rms

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks a flat schema for structural and field-level
// compliance. It never mutates its input and never fails with an error:
// findings come back as structured data.
func Validate(f FlatSchema) ValidationResult {
	res := ValidationResult{Valid: true}
	addError := func(format string, args ...any) {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
	}
	addWarning := func(format string, args ...any) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(format, args...))
	}

	if f == nil {
		addError("schema is nil")
		return res
	}

	// The same casing-tolerant reader the decoder uses, so a schema
	// Decode accepts never draws spurious findings here
	r := newSchemaReader(f)

	// Compliance marker must be present and literal
	if v, ok := r.lookup(ProducerKey); v != ProducerValue {
		if !ok {
			addError("missing compliance marker %q", ProducerKey)
		} else {
			addError("compliance marker %q has value %q, expected %q", ProducerKey, v, ProducerValue)
		}
	}

	if _, ok := r.actualKey(SchemaDetailKey); !ok {
		addWarning("missing schema detail marker %q", SchemaDetailKey)
	}

	// Contact requirements are lenient: partial extraction is tolerated
	if name, _ := r.lookup(ContactKey("name")); isBlank(name) {
		addWarning("contact name is empty")
	}
	if email, _ := r.lookup(ContactKey("email")); isBlank(email) {
		addWarning("contact email is empty")
	}

	validateStructure(f, r, addError, addWarning)
	validateFields(f, addWarning)

	return res
}

// declaredCount reads a section count under either casing, coerced but
// not clamped; validation reports out-of-range values itself.
func declaredCount(r *schemaReader, sec Section) int {
	v, ok := r.lookup(sec.CountKey())
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// validateStructure enforces the count invariant per section: every
// index below count populated (error), no stragglers at or beyond
// count (warning), count within capacity (error).
func validateStructure(f FlatSchema, r *schemaReader, addError, addWarning func(string, ...any)) {
	populated := populatedIndices(f)

	for _, sec := range AllSections {
		count := declaredCount(r, sec)
		if count < 0 {
			addError("section %q has negative count %d", sec, count)
			continue
		}
		if count > MaxItemsPerSection {
			addError("section %q count %d exceeds capacity %d", sec, count, MaxItemsPerSection)
			count = MaxItemsPerSection
		}
		for i := 0; i < count; i++ {
			if !populated[sec][i] {
				addError("section %q declares count %d but index %d has no fields", sec, count, i)
			}
		}
		for i := count; i < MaxItemsPerSection; i++ {
			if populated[sec][i] {
				addWarning("section %q has populated index %d at or beyond count %d", sec, i, count)
			}
		}
	}
}

// populatedIndices maps each section to the set of indices that have at
// least one field key present.
func populatedIndices(f FlatSchema) map[Section]map[int]bool {
	out := make(map[Section]map[int]bool, len(AllSections))
	for _, sec := range AllSections {
		out[sec] = make(map[int]bool)
	}
	for key := range f {
		if pk, ok := ParseFieldKey(key); ok {
			out[pk.Section][pk.Index] = true
		}
	}
	return out
}

// validateFields applies plausibility checks to email, phone, URL and
// date shaped fields. All findings are warnings; this layer never
// rejects a schema over a field value.
func validateFields(f FlatSchema, addWarning func(string, ...any)) {
	for _, key := range f.SortedKeys() {
		var field string
		if pk, ok := ParseFieldKey(key); ok {
			field = pk.Field
		} else if strings.HasPrefix(strings.ToLower(key), ContactKeyPrefix) {
			field = strings.ToLower(key[len(ContactKeyPrefix):])
		} else {
			continue
		}

		value := strings.TrimSpace(f.GetString(key))
		if value == "" || value == Sentinel {
			continue
		}

		switch {
		case field == "email":
			if !emailRe.MatchString(value) {
				addWarning("field %q has implausible email %q", key, value)
			}
		case field == "phone":
			if n := countDigits(value); n < 7 || n > 15 {
				addWarning("field %q has implausible phone number %q", key, value)
			}
		case field == "url" || field == "website" || field == "linkedin":
			if u, err := url.Parse(value); err != nil || u.Host == "" && !strings.Contains(value, ".") {
				addWarning("field %q has unparseable URL %q", key, value)
			}
		case field == "date" || field == "date_begin" || field == "date_end":
			if ClassifyFormat(value) == Sentinel {
				addWarning("field %q has unrecognized date format %q", key, value)
			}
		}
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == "" || s == Sentinel
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// ValidateAndFix clones the schema, applies repair routines, and
// re-validates. The input is never mutated; the repaired schema and the
// list of applied fixes come back alongside the final verdict.
func ValidateAndFix(f FlatSchema) FixResult {
	if f == nil {
		return FixResult{Suggestions: []string{"schema is nil; nothing to fix"}}
	}

	fixed := f.Clone()
	var suggestions []string
	note := func(format string, args ...any) {
		suggestions = append(suggestions, fmt.Sprintf(format, args...))
	}

	// Repairs write through the key already present, whatever its
	// casing; adding a lowercase duplicate beside a capitalized key
	// would make a later Decode pick one nondeterministically
	r := newSchemaReader(fixed)
	keyFor := func(canonical string) string {
		if actual, ok := r.actualKey(canonical); ok {
			return actual
		}
		return canonical
	}

	if v, _ := r.lookup(ProducerKey); v != ProducerValue {
		fixed[keyFor(ProducerKey)] = ProducerValue
		note("set compliance marker %q to %q", ProducerKey, ProducerValue)
	}
	if _, ok := r.actualKey(SchemaDetailKey); !ok {
		fixed[SchemaDetailKey] = SchemaDetailValue
		note("added schema detail marker %q", SchemaDetailKey)
	}

	populated := populatedIndices(fixed)
	for _, sec := range AllSections {
		count := declaredCount(r, sec)
		contiguous := 0
		for contiguous < MaxItemsPerSection && populated[sec][contiguous] {
			contiguous++
		}
		if count != contiguous {
			countKey := keyFor(sec.CountKey())
			fixed[countKey] = contiguous
			note("corrected %q from %d to %d contiguous populated indices", countKey, count, contiguous)
		}
		// Stragglers past a hole stay in place; dropping data is not a fix
	}

	for _, key := range fixed.SortedKeys() {
		pk, ok := ParseFieldKey(key)
		if !ok {
			continue
		}
		if pk.Field != "date" && pk.Field != "date_begin" && pk.Field != "date_end" {
			continue
		}
		value := strings.TrimSpace(fixed.GetString(key))
		if value == "" {
			fixed[key] = Sentinel
			note("replaced empty date field %q with sentinel", key)
			continue
		}
		if norm := NormalizeDate(value); norm != value && ClassifyFormat(norm) != Sentinel {
			fixed[key] = norm
			note("normalized date field %q from %q to %q", key, value, norm)
		}
	}

	verdict := Validate(fixed)
	return FixResult{
		IsValid:     verdict.Valid,
		Suggestions: suggestions,
		FixedData:   fixed,
	}
}
