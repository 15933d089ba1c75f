package rms

import (
	"fmt"
	"strconv"
	"strings"
)

// escapeDescription HTML-entity-escapes &, < and > only. Applied to
// description fields exclusively; other fields ride the wire verbatim.
func escapeDescription(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func unescapeDescription(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// ============================================================
// Encode
// ============================================================

// Encode transforms a structured resume into the flat indexed schema.
// It never truncates sections; capacity enforcement belongs to Validate.
// Absent scalars become the sentinel, booleans the strings "true"/"false".
func Encode(s *StructuredResume) FlatSchema {
	f := FlatSchema{
		ProducerKey:     ProducerValue,
		SchemaDetailKey: SchemaDetailValue,
	}

	f[ContactKey("name")] = orSentinel(s.Contact.Name)
	f[ContactKey("email")] = orSentinel(s.Contact.Email)
	f[ContactKey("phone")] = orSentinel(s.Contact.Phone)
	f[ContactKey("location")] = orSentinel(s.Contact.Location)
	f[ContactKey("website")] = orSentinel(s.Contact.Website)
	f[ContactKey("linkedin")] = orSentinel(s.Contact.LinkedIn)
	f[SummaryKey] = orSentinel(s.Summary)

	w := schemaWriter{f: f}

	w.count(SectionExperience, len(s.Experiences))
	for i, e := range s.Experiences {
		w.str(SectionExperience, i, "company", e.Company)
		w.str(SectionExperience, i, "role", e.Role)
		w.str(SectionExperience, i, "location", e.Location)
		w.str(SectionExperience, i, "date_begin", e.DateBegin)
		w.str(SectionExperience, i, "date_end", e.DateEnd)
		w.boolean(SectionExperience, i, "is_current", e.IsCurrent)
		w.desc(SectionExperience, i, "description", e.Description)
	}

	w.count(SectionEducation, len(s.Education))
	for i, e := range s.Education {
		w.str(SectionEducation, i, "institution", e.Institution)
		w.str(SectionEducation, i, "qualification", e.Qualification)
		w.str(SectionEducation, i, "location", e.Location)
		w.str(SectionEducation, i, "date", e.Date)
		w.boolean(SectionEducation, i, "is_graduate", e.IsGraduate)
		w.str(SectionEducation, i, "score", e.Score)
		w.str(SectionEducation, i, "score_type", e.ScoreType)
		w.str(SectionEducation, i, "minor", e.Minor)
		w.desc(SectionEducation, i, "description", e.Description)
	}

	w.count(SectionCertification, len(s.Certifications))
	for i, c := range s.Certifications {
		w.str(SectionCertification, i, "name", c.Name)
		w.str(SectionCertification, i, "issuer", c.Issuer)
		w.str(SectionCertification, i, "date", c.Date)
	}

	w.count(SectionCoursework, len(s.Coursework))
	for i, c := range s.Coursework {
		w.str(SectionCoursework, i, "name", c.Name)
		w.str(SectionCoursework, i, "institution", c.Institution)
		w.str(SectionCoursework, i, "date", c.Date)
	}

	w.count(SectionInvolvement, len(s.Involvement))
	for i, v := range s.Involvement {
		w.str(SectionInvolvement, i, "organization", v.Organization)
		w.str(SectionInvolvement, i, "role", v.Role)
		w.str(SectionInvolvement, i, "location", v.Location)
		w.str(SectionInvolvement, i, "date_begin", v.DateBegin)
		w.str(SectionInvolvement, i, "date_end", v.DateEnd)
		w.desc(SectionInvolvement, i, "description", v.Description)
	}

	w.count(SectionProject, len(s.Projects))
	for i, p := range s.Projects {
		w.str(SectionProject, i, "title", p.Title)
		w.str(SectionProject, i, "organization", p.Organization)
		w.desc(SectionProject, i, "description", p.Description)
	}

	w.count(SectionSkill, len(s.Skills))
	for i, sk := range s.Skills {
		w.str(SectionSkill, i, "category", sk.Category)
		w.str(SectionSkill, i, "keywords", sk.Keywords)
	}

	w.count(SectionPublication, len(s.Publications))
	for i, p := range s.Publications {
		w.str(SectionPublication, i, "title", p.Title)
		w.str(SectionPublication, i, "publisher", p.Publisher)
		w.str(SectionPublication, i, "date", p.Date)
		w.str(SectionPublication, i, "url", p.URL)
	}

	w.count(SectionAward, len(s.Awards))
	for i, a := range s.Awards {
		w.str(SectionAward, i, "name", a.Name)
		w.str(SectionAward, i, "issuer", a.Issuer)
		w.str(SectionAward, i, "date", a.Date)
		w.desc(SectionAward, i, "description", a.Description)
	}

	w.count(SectionReference, len(s.References))
	for i, r := range s.References {
		w.str(SectionReference, i, "name", r.Name)
		w.str(SectionReference, i, "title", r.Title)
		w.str(SectionReference, i, "organization", r.Organization)
		w.str(SectionReference, i, "email", r.Email)
		w.str(SectionReference, i, "phone", r.Phone)
	}

	return f
}

func orSentinel(s string) string {
	if strings.TrimSpace(s) == "" {
		return Sentinel
	}
	return s
}

type schemaWriter struct {
	f FlatSchema
}

func (w schemaWriter) count(sec Section, n int) {
	w.f[sec.CountKey()] = n
}

func (w schemaWriter) str(sec Section, i int, field, value string) {
	w.f[sec.FieldKey(i, field)] = orSentinel(value)
}

func (w schemaWriter) boolean(sec Section, i int, field string, value bool) {
	if value {
		w.f[sec.FieldKey(i, field)] = "true"
	} else {
		w.f[sec.FieldKey(i, field)] = "false"
	}
}

func (w schemaWriter) desc(sec Section, i int, field, value string) {
	w.f[sec.FieldKey(i, field)] = orSentinel(escapeDescription(value))
}

// ============================================================
// Decode
// ============================================================

// Decode reconstructs the structured form from a flat schema. It is
// tolerant by design: counts are coerced and clamped, indices with no
// populated fields are skipped, sentinels become empty strings, and
// both key-casing conventions are accepted.
func Decode(f FlatSchema) (*StructuredResume, error) {
	if f == nil {
		return nil, fmt.Errorf("nil schema")
	}

	r := newSchemaReader(f)
	s := &StructuredResume{}

	s.Contact = Contact{
		Name:     r.reserved(ContactKey("name")),
		Email:    r.reserved(ContactKey("email")),
		Phone:    r.reserved(ContactKey("phone")),
		Location: r.reserved(ContactKey("location")),
		Website:  r.reserved(ContactKey("website")),
		LinkedIn: r.reserved(ContactKey("linkedin")),
	}
	s.Summary = r.reserved(SummaryKey)

	for i := range r.indices(SectionExperience) {
		e := r.entry(SectionExperience, i)
		exp := Experience{
			Company:     e.str("company"),
			Role:        e.str("role"),
			Location:    e.str("location"),
			DateBegin:   e.str("date_begin"),
			DateEnd:     e.str("date_end"),
			IsCurrent:   e.boolean("is_current"),
			Description: e.desc("description"),
		}
		if e.populated() {
			s.Experiences = append(s.Experiences, exp)
		}
	}

	for i := range r.indices(SectionEducation) {
		e := r.entry(SectionEducation, i)
		edu := Education{
			Institution:   e.str("institution"),
			Qualification: e.str("qualification"),
			Location:      e.str("location"),
			Date:          e.str("date"),
			IsGraduate:    e.boolean("is_graduate"),
			Score:         e.str("score"),
			ScoreType:     e.str("score_type"),
			Minor:         e.str("minor"),
			Description:   e.desc("description"),
		}
		if e.populated() {
			s.Education = append(s.Education, edu)
		}
	}

	for i := range r.indices(SectionCertification) {
		e := r.entry(SectionCertification, i)
		c := Certification{
			Name:   e.str("name"),
			Issuer: e.str("issuer"),
			Date:   e.str("date"),
		}
		if e.populated() {
			s.Certifications = append(s.Certifications, c)
		}
	}

	for i := range r.indices(SectionCoursework) {
		e := r.entry(SectionCoursework, i)
		c := Coursework{
			Name:        e.str("name"),
			Institution: e.str("institution"),
			Date:        e.str("date"),
		}
		if e.populated() {
			s.Coursework = append(s.Coursework, c)
		}
	}

	for i := range r.indices(SectionInvolvement) {
		e := r.entry(SectionInvolvement, i)
		v := Involvement{
			Organization: e.str("organization"),
			Role:         e.str("role"),
			Location:     e.str("location"),
			DateBegin:    e.str("date_begin"),
			DateEnd:      e.str("date_end"),
			Description:  e.desc("description"),
		}
		if e.populated() {
			s.Involvement = append(s.Involvement, v)
		}
	}

	for i := range r.indices(SectionProject) {
		e := r.entry(SectionProject, i)
		p := Project{
			Title:        e.str("title"),
			Organization: e.str("organization"),
			Description:  e.desc("description"),
		}
		if e.populated() {
			s.Projects = append(s.Projects, p)
		}
	}

	for i := range r.indices(SectionSkill) {
		e := r.entry(SectionSkill, i)
		sk := Skill{
			Category: e.str("category"),
			Keywords: e.str("keywords"),
		}
		if e.populated() {
			s.Skills = append(s.Skills, sk)
		}
	}

	for i := range r.indices(SectionPublication) {
		e := r.entry(SectionPublication, i)
		p := Publication{
			Title:     e.str("title"),
			Publisher: e.str("publisher"),
			Date:      e.str("date"),
			URL:       e.str("url"),
		}
		if e.populated() {
			s.Publications = append(s.Publications, p)
		}
	}

	for i := range r.indices(SectionAward) {
		e := r.entry(SectionAward, i)
		a := Award{
			Name:        e.str("name"),
			Issuer:      e.str("issuer"),
			Date:        e.str("date"),
			Description: e.desc("description"),
		}
		if e.populated() {
			s.Awards = append(s.Awards, a)
		}
	}

	for i := range r.indices(SectionReference) {
		e := r.entry(SectionReference, i)
		ref := Reference{
			Name:         e.str("name"),
			Title:        e.str("title"),
			Organization: e.str("organization"),
			Email:        e.str("email"),
			Phone:        e.str("phone"),
		}
		if e.populated() {
			s.References = append(s.References, ref)
		}
	}

	return s, nil
}

// schemaReader indexes the schema by lowercased key so either casing
// convention resolves.
type schemaReader struct {
	f     FlatSchema
	lower map[string]string
}

func newSchemaReader(f FlatSchema) *schemaReader {
	lower := make(map[string]string, len(f))
	for k := range f {
		lower[strings.ToLower(k)] = k
	}
	return &schemaReader{f: f, lower: lower}
}

func (r *schemaReader) lookup(key string) (string, bool) {
	actual, ok := r.actualKey(key)
	if !ok {
		return "", false
	}
	return r.f.GetString(actual), true
}

// actualKey resolves a key under either casing convention to the key
// actually present in the schema. Writers that repair a schema must
// target the actual key so no duplicate casing variant appears.
func (r *schemaReader) actualKey(key string) (string, bool) {
	actual, ok := r.lower[strings.ToLower(key)]
	return actual, ok
}

// reserved reads a reserved key, mapping sentinel to empty
func (r *schemaReader) reserved(key string) string {
	v, ok := r.lookup(key)
	if !ok || v == Sentinel {
		return ""
	}
	return v
}

// indices returns the iteration bound for a section: the coerced count,
// clamped to [0, MaxItemsPerSection].
func (r *schemaReader) indices(sec Section) int {
	v, ok := r.lookup(sec.CountKey())
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	if n > MaxItemsPerSection {
		return MaxItemsPerSection
	}
	return n
}

func (r *schemaReader) entry(sec Section, i int) *entryReader {
	return &entryReader{r: r, sec: sec, i: i}
}

// entryReader collects one index's fields and tracks whether any key
// was present at all, so fully absent indices can be skipped.
type entryReader struct {
	r     *schemaReader
	sec   Section
	i     int
	found int
}

func (e *entryReader) raw(field string) (string, bool) {
	v, ok := e.r.lookup(e.sec.FieldKey(e.i, field))
	if ok {
		e.found++
	}
	return v, ok
}

func (e *entryReader) str(field string) string {
	v, ok := e.raw(field)
	if !ok || v == Sentinel {
		return ""
	}
	return v
}

func (e *entryReader) desc(field string) string {
	return unescapeDescription(e.str(field))
}

func (e *entryReader) boolean(field string) bool {
	v, _ := e.raw(field)
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// populated reports whether at least one key existed for this index
func (e *entryReader) populated() bool {
	return e.found > 0
}
