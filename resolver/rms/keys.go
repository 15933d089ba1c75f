package rms

import (
	"fmt"
	"strconv"
	"strings"
)

// Reserved keys and literals of the flat schema wire contract
const (
	// ProducerKey holds the compliance marker; its value must be exact
	ProducerKey   = "Producer"
	ProducerValue = "RMS Resume Metadata v1"

	SchemaDetailKey   = "schema_detail"
	SchemaDetailValue = "rms_flat_v1"

	SummaryKey       = "summary"
	ContactKeyPrefix = "contact_"

	// Sentinel stands in for an absent scalar value
	Sentinel = "n/a"
	// PresentSentinel marks an ongoing date range
	PresentSentinel = "Present"

	// MaxItemsPerSection bounds indices to [0, 15]
	MaxItemsPerSection = 16
)

// Section is one of the ten resume categories
type Section string

const (
	SectionExperience    Section = "experience"
	SectionEducation     Section = "education"
	SectionCertification Section = "certification"
	SectionCoursework    Section = "coursework"
	SectionInvolvement   Section = "involvement"
	SectionProject       Section = "project"
	SectionSkill         Section = "skill"
	SectionPublication   Section = "publication"
	SectionAward         Section = "award"
	SectionReference     Section = "reference"
)

// AllSections in canonical encoding order
var AllSections = []Section{
	SectionExperience,
	SectionEducation,
	SectionCertification,
	SectionCoursework,
	SectionInvolvement,
	SectionProject,
	SectionSkill,
	SectionPublication,
	SectionAward,
	SectionReference,
}

func (s Section) String() string { return string(s) }

// IsValid reports whether s names one of the ten sections
func (s Section) IsValid() bool {
	for _, sec := range AllSections {
		if sec == s {
			return true
		}
	}
	return false
}

// CountKey returns the {section}_count key
func (s Section) CountKey() string {
	return string(s) + "_count"
}

// FieldKey returns the {section}_{index}_{field} key. Index must be in
// [0, MaxItemsPerSection); out-of-range indices indicate a caller bug.
func (s Section) FieldKey(index int, field string) string {
	return fmt.Sprintf("%s_%d_%s", s, index, field)
}

// ContactKey returns the contact_{field} key
func ContactKey(field string) string {
	return ContactKeyPrefix + field
}

// ParsedKey is the decomposed form of an indexed field key
type ParsedKey struct {
	Section Section
	Index   int
	Field   string
}

// ParseFieldKey decomposes a {section}_{index}_{field} key. It accepts
// both lower_snake and Capitalized_Snake casing since externally
// produced schemas are not guaranteed consistent. Count keys, reserved
// keys and anything else non-matching report ok=false.
func ParseFieldKey(key string) (ParsedKey, bool) {
	lower := strings.ToLower(key)
	for _, sec := range AllSections {
		prefix := string(sec) + "_"
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := lower[len(prefix):]
		idxStr, field, found := strings.Cut(rest, "_")
		if !found || field == "" {
			return ParsedKey{}, false
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= MaxItemsPerSection {
			return ParsedKey{}, false
		}
		return ParsedKey{Section: sec, Index: idx, Field: field}, true
	}
	return ParsedKey{}, false
}

// ParseCountKey reports the section of a {section}_count key, tolerating
// both casing conventions.
func ParseCountKey(key string) (Section, bool) {
	lower := strings.ToLower(key)
	sec, found := strings.CutSuffix(lower, "_count")
	if !found {
		return "", false
	}
	s := Section(sec)
	if !s.IsValid() {
		return "", false
	}
	return s, true
}

// ContactFields in canonical encoding order
var ContactFields = []string{"name", "email", "phone", "location", "website", "linkedin"}

// sectionFields lists each section's field names in encoding order.
// Field names double as the wire suffixes of FieldKey.
var sectionFields = map[Section][]string{
	SectionExperience:    {"company", "role", "location", "date_begin", "date_end", "is_current", "description"},
	SectionEducation:     {"institution", "qualification", "location", "date", "is_graduate", "score", "score_type", "minor", "description"},
	SectionCertification: {"name", "issuer", "date"},
	SectionCoursework:    {"name", "institution", "date"},
	SectionInvolvement:   {"organization", "role", "location", "date_begin", "date_end", "description"},
	SectionProject:       {"title", "organization", "description"},
	SectionSkill:         {"category", "keywords"},
	SectionPublication:   {"title", "publisher", "date", "url"},
	SectionAward:         {"name", "issuer", "date", "description"},
	SectionReference:     {"name", "title", "organization", "email", "phone"},
}

// Fields returns the section's field names in encoding order
func (s Section) Fields() []string {
	return sectionFields[s]
}
