package rmssrv

import (
	"regexp"
	"strings"

	"github.com/Abraxas-365/rms/internal/textproc"
	"github.com/Abraxas-365/rms/resolver/rms"
)

// Keyword tables backing the reclassification rules. Matching is
// case-insensitive on whole words.
var (
	involvementKeywords = []string{
		"coach", "coaching", "tutor", "tutoring", "mentor", "mentoring",
		"volunteer", "volunteering", "club", "chapter", "leadership",
		"president", "treasurer", "secretary", "fundraising", "community",
	}
	projectKeywords = []string{
		"built", "developed", "implemented", "designed", "engineered",
		"programmed", "deployed", "prototype", "application", "website",
		"repository", "codebase", "api", "database",
	}
	coachingKeywords = []string{
		"coach", "coaching", "teacher", "teaching", "tutor", "tutoring",
		"instructor", "mentor",
	}
	schoolContextKeywords = []string{
		"elementary", "middle school", "high school", "school district",
		"k-12", "junior varsity", "jv",
	}
)

// reclassifyRule is one ordered {predicate, action} pair. Rules are
// evaluated top to bottom; the first match wins for an entry.
type projectRule struct {
	name      string
	predicate func(p rms.Project) bool
	toInvolve func(p rms.Project) rms.Involvement
}

type experienceRule struct {
	name      string
	predicate func(e rms.Experience) bool
	toInvolve func(e rms.Experience) rms.Involvement
}

var projectRules = []projectRule{
	{
		name: "involvement-keywords-without-project-keywords",
		predicate: func(p rms.Project) bool {
			text := p.Title + " " + p.Organization + " " + p.Description
			return matchesAny(text, involvementKeywords) && !matchesAny(text, projectKeywords)
		},
		toInvolve: func(p rms.Project) rms.Involvement {
			role, org := splitRoleOrganization(p.Title)
			if org == "" {
				org = p.Organization
			}
			return rms.Involvement{
				Organization:     org,
				Role:             role,
				Description:      p.Description,
				ReclassifiedFrom: string(rms.SectionProject),
			}
		},
	},
}

var experienceRules = []experienceRule{
	{
		name: "coaching-in-school-context",
		predicate: func(e rms.Experience) bool {
			text := e.Company + " " + e.Role + " " + e.Description
			return matchesAny(text, coachingKeywords) && matchesAny(text, schoolContextKeywords)
		},
		// All fields preserved unchanged on the move
		toInvolve: func(e rms.Experience) rms.Involvement {
			return rms.Involvement{
				Organization:     e.Company,
				Role:             e.Role,
				Location:         e.Location,
				DateBegin:        e.DateBegin,
				DateEnd:          e.DateEnd,
				Description:      e.Description,
				ReclassifiedFrom: string(rms.SectionExperience),
			}
		},
	},
}

// Reclassify reassigns ambiguous entries between sections and cleans
// descriptions using the original text. Pure: the input is never
// mutated and no entry is ever discarded. Applying it twice yields the
// same result as once.
func Reclassify(s *rms.StructuredResume, originalText string) *rms.StructuredResume {
	out := *s
	out.Projects = nil
	out.Experiences = nil
	out.Involvement = append([]rms.Involvement(nil), s.Involvement...)

	for _, p := range s.Projects {
		moved := false
		for _, rule := range projectRules {
			if rule.predicate(p) {
				out.Involvement = append(out.Involvement, rule.toInvolve(p))
				moved = true
				break
			}
		}
		if !moved {
			out.Projects = append(out.Projects, p)
		}
	}

	for _, e := range s.Experiences {
		moved := false
		for _, rule := range experienceRules {
			if rule.predicate(e) {
				out.Involvement = append(out.Involvement, rule.toInvolve(e))
				moved = true
				break
			}
		}
		if !moved {
			out.Experiences = append(out.Experiences, e)
		}
	}

	for i := range out.Involvement {
		if isSentinelOrEmpty(out.Involvement[i].Description) {
			if d := backfillDescription(originalText, out.Involvement[i].Organization, out.Involvement[i].Role); d != "" {
				out.Involvement[i].Description = d
			}
		}
		out.Involvement[i].Description = cleanDescription(out.Involvement[i].Description)
	}
	for i := range out.Projects {
		if isSentinelOrEmpty(out.Projects[i].Description) {
			if d := backfillDescription(originalText, out.Projects[i].Organization, out.Projects[i].Title); d != "" {
				out.Projects[i].Description = d
			}
		}
		out.Projects[i].Description = cleanDescription(out.Projects[i].Description)
	}
	for i := range out.Experiences {
		out.Experiences[i].Description = cleanDescription(out.Experiences[i].Description)
	}
	for i := range out.Education {
		out.Education[i].Description = cleanDescription(out.Education[i].Description)
	}
	for i := range out.Awards {
		out.Awards[i].Description = cleanDescription(out.Awards[i].Description)
	}
	out.Summary = cleanDescription(out.Summary)

	return &out
}

// matchesAny reports a case-insensitive whole-word hit of any keyword
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		idx := 0
		for {
			i := strings.Index(lower[idx:], kw)
			if i < 0 {
				break
			}
			start := idx + i
			end := start + len(kw)
			if isWordBoundary(lower, start-1) && isWordBoundary(lower, end) {
				return true
			}
			idx = start + 1
		}
	}
	return false
}

func isWordBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}

var roleOrgPatterns = []*regexp.Regexp{
	// "JV Assistant Coach - Lincoln High School"
	regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`),
	// "Coach at Lincoln High School", "Tutor for City Youth Program"
	regexp.MustCompile(`(?i)^(.+?)\s+(?:at|for)\s+(.+)$`),
}

// splitRoleOrganization splits a combined title into role and
// organization on a dash or an "X at/for Y" pattern. A title matching
// neither becomes the role with an empty organization.
func splitRoleOrganization(title string) (role, org string) {
	title = strings.TrimSpace(title)
	for _, re := range roleOrgPatterns {
		if m := re.FindStringSubmatch(title); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
	}
	return title, ""
}

// backfillDescription searches the original text for the entry's
// anchor followed by a run of bullet-marked lines, trying organization,
// role, then role-then-organization anchors in that order.
func backfillDescription(originalText, org, role string) string {
	if originalText == "" {
		return ""
	}
	patterns := make([]string, 0, 3)
	if org != "" {
		patterns = append(patterns, regexp.QuoteMeta(org))
	}
	if role != "" {
		patterns = append(patterns, regexp.QuoteMeta(role))
	}
	if role != "" && org != "" {
		patterns = append(patterns, regexp.QuoteMeta(role)+`[^\n]*`+regexp.QuoteMeta(org))
	}

	for _, pattern := range patterns {
		re, err := regexp.Compile(`(?i)` + pattern + `[^\n]*\n((?:\s*[-*•"']\s*[^\n]+\n?)+)`)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(originalText); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// cleanDescription strips leaked stream markers and collapses runs of
// three or more blank lines down to two.
func cleanDescription(s string) string {
	s = textproc.StripMarkers(s)
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func isSentinelOrEmpty(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, rms.Sentinel)
}
