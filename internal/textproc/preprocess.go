// Package textproc segments raw resume text into a linear marked stream
// suitable for embedding directly into an extraction prompt.
package textproc

import (
	"regexp"
	"strings"
)

// Marker tokens emitted into the preprocessed stream
const (
	SectionMarkerPrefix = "[SECTION:"
	SectionMarkerSuffix = "]"
	BulletsOpenMarker   = "[BULLETS]"
	BulletsCloseMarker  = "[/BULLETS]"
)

// Config controls preprocessing. The zero value is not usable; build it
// with DefaultConfig and override as needed.
type Config struct {
	// MaxHeaderLen is the longest line still considered a section header
	MaxHeaderLen int
	// HeaderSynonyms maps lowercase header phrasings to a canonical section name
	HeaderSynonyms map[string]string
	// RoleKeywords start a new entry when found at line start, capitalized
	RoleKeywords []string
	// OrgSuffixes start a new entry when found anywhere in the line
	OrgSuffixes []string
}

// DefaultConfig returns the standard preprocessing configuration
func DefaultConfig() Config {
	return Config{
		MaxHeaderLen: 40,
		HeaderSynonyms: map[string]string{
			"leadership & extracurriculars":   "INVOLVEMENT",
			"leadership and extracurriculars": "INVOLVEMENT",
			"volunteer experience":            "INVOLVEMENT",
			"campus involvement":              "INVOLVEMENT",
			"community involvement":           "INVOLVEMENT",
			"extracurricular activities":      "INVOLVEMENT",
			"activities":                      "INVOLVEMENT",
			"work experience":                 "EXPERIENCE",
			"professional experience":         "EXPERIENCE",
			"employment history":              "EXPERIENCE",
			"work history":                    "EXPERIENCE",
			"academic background":             "EDUCATION",
			"education & training":            "EDUCATION",
			"technical skills":                "SKILLS",
			"core competencies":               "SKILLS",
			"skills & abilities":              "SKILLS",
			"licenses & certifications":       "CERTIFICATIONS",
			"licenses and certifications":     "CERTIFICATIONS",
			"certificates":                    "CERTIFICATIONS",
			"personal projects":               "PROJECTS",
			"selected projects":               "PROJECTS",
			"relevant coursework":             "COURSEWORK",
			"publications & presentations":    "PUBLICATIONS",
			"honors & awards":                 "AWARDS",
			"honors and awards":               "AWARDS",
			"achievements":                    "AWARDS",
		},
		RoleKeywords: []string{
			"Manager", "Engineer", "Developer", "Analyst", "Director",
			"Coordinator", "Assistant", "Intern", "Consultant", "Specialist",
			"Coach", "Tutor", "Instructor", "President", "Treasurer",
			"Secretary", "Lead", "Supervisor", "Administrator", "Designer",
		},
		OrgSuffixes: []string{
			"University", "College", "Institute", "Academy",
			"Inc.", "LLC", "Ltd.", "Corp.", "Corporation", "Company",
		},
	}
}

var (
	monthYearRe = regexp.MustCompile(`(?i)\b(Jan(uary)?|Feb(ruary)?|Mar(ch)?|Apr(il)?|May|Jun(e)?|Jul(y)?|Aug(ust)?|Sep(tember)?|Oct(ober)?|Nov(ember)?|Dec(ember)?)\.?\s+\d{4}\b`)
	allCapsRe   = regexp.MustCompile(`^[A-Z][A-Z &]*$`)
)

// Preprocessor normalizes section headers and segments text into blocks.
// It is stateless across calls; the same input always yields the same output.
type Preprocessor struct {
	cfg Config
}

func New(cfg Config) *Preprocessor {
	return &Preprocessor{cfg: cfg}
}

// Process returns the linear marked stream for the given raw resume text.
// It never fails; empty input yields an empty stream.
func (p *Preprocessor) Process(raw string) string {
	canonical := p.canonicalizeHeaders(raw)

	var out []string
	var block []string
	var bullets []string

	flushBullets := func() {
		if len(bullets) == 0 {
			return
		}
		block = append(block, BulletsOpenMarker)
		block = append(block, bullets...)
		block = append(block, BulletsCloseMarker)
		bullets = nil
	}
	flushBlock := func() {
		flushBullets()
		if len(block) == 0 {
			return
		}
		out = append(out, strings.Join(block, "\n"))
		block = nil
	}

	for _, line := range strings.Split(canonical, "\n") {
		line = strings.TrimRight(line, " \t")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushBlock()

		case p.isSectionHeader(trimmed):
			flushBlock()
			out = append(out, SectionMarkerPrefix+trimmed+SectionMarkerSuffix)

		case isBulletLine(trimmed):
			bullets = append(bullets, trimmed)

		default:
			// Bullets end as soon as a non-bullet line arrives
			flushBullets()
			if len(block) > 0 && p.startsNewEntry(trimmed) {
				flushBlock()
			}
			block = append(block, trimmed)
		}
	}
	flushBlock()

	return strings.Join(out, "\n\n")
}

// canonicalizeHeaders rewrites synonymous header phrasings to their
// canonical section name, case-insensitively, anywhere in the text.
func (p *Preprocessor) canonicalizeHeaders(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		key := strings.ToLower(strings.TrimSpace(line))
		if canon, ok := p.cfg.HeaderSynonyms[key]; ok {
			lines[i] = canon
		}
	}
	return strings.Join(lines, "\n")
}

// isSectionHeader reports whether a short all-caps letters/spaces/ampersand
// line names a section.
func (p *Preprocessor) isSectionHeader(line string) bool {
	if len(line) == 0 || len(line) > p.cfg.MaxHeaderLen {
		return false
	}
	return allCapsRe.MatchString(line)
}

// startsNewEntry applies the new-entry heuristics: a month-year date,
// "Present", a capitalized role keyword, or an organization suffix.
func (p *Preprocessor) startsNewEntry(line string) bool {
	if monthYearRe.MatchString(line) {
		return true
	}
	if strings.Contains(line, "Present") {
		return true
	}
	for _, kw := range p.cfg.RoleKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	for _, suffix := range p.cfg.OrgSuffixes {
		if strings.Contains(line, suffix) {
			return true
		}
	}
	return false
}

func isBulletLine(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '-', '*', '"', '\'':
		return true
	}
	// Unicode bullet glyphs survive copy/paste from PDF viewers
	return strings.HasPrefix(line, "•") || strings.HasPrefix(line, "▪") || strings.HasPrefix(line, "·")
}

// StripMarkers removes any stream markers that leaked into model output
func StripMarkers(text string) string {
	text = strings.ReplaceAll(text, BulletsOpenMarker, "")
	text = strings.ReplaceAll(text, BulletsCloseMarker, "")
	for {
		start := strings.Index(text, SectionMarkerPrefix)
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], SectionMarkerSuffix)
		if end < 0 {
			text = text[:start] + text[start+len(SectionMarkerPrefix):]
			continue
		}
		text = text[:start] + text[start+end+len(SectionMarkerSuffix):]
	}
	return text
}
