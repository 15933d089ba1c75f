package rmssrv

import (
	"strings"

	"github.com/Abraxas-365/rms/resolver/rms"
)

// NormalizeDates canonicalizes every date field and independently
// backfills a missing begin or end from the entry's own concatenated
// fields, never overwriting a side that is already present. Pure.
func NormalizeDates(s *rms.StructuredResume) *rms.StructuredResume {
	out := *s
	out.Experiences = append([]rms.Experience(nil), s.Experiences...)
	out.Involvement = append([]rms.Involvement(nil), s.Involvement...)
	out.Education = append([]rms.Education(nil), s.Education...)
	out.Certifications = append([]rms.Certification(nil), s.Certifications...)
	out.Coursework = append([]rms.Coursework(nil), s.Coursework...)
	out.Publications = append([]rms.Publication(nil), s.Publications...)
	out.Awards = append([]rms.Award(nil), s.Awards...)

	for i := range out.Experiences {
		e := &out.Experiences[i]
		e.DateBegin, e.DateEnd = normalizeRange(e.DateBegin, e.DateEnd,
			strings.Join([]string{e.Company, e.Role, e.Location, e.Description}, "\n"))
		if e.DateEnd == rms.PresentSentinel {
			e.IsCurrent = true
		}
	}

	for i := range out.Involvement {
		v := &out.Involvement[i]
		v.DateBegin, v.DateEnd = normalizeRange(v.DateBegin, v.DateEnd,
			strings.Join([]string{v.Organization, v.Role, v.Location, v.Description}, "\n"))
	}

	for i := range out.Education {
		out.Education[i].Date = normalizeSingle(out.Education[i].Date,
			out.Education[i].Institution+"\n"+out.Education[i].Description)
	}
	for i := range out.Certifications {
		out.Certifications[i].Date = rms.NormalizeDate(out.Certifications[i].Date)
	}
	for i := range out.Coursework {
		out.Coursework[i].Date = rms.NormalizeDate(out.Coursework[i].Date)
	}
	for i := range out.Publications {
		out.Publications[i].Date = rms.NormalizeDate(out.Publications[i].Date)
	}
	for i := range out.Awards {
		out.Awards[i].Date = rms.NormalizeDate(out.Awards[i].Date)
	}

	return &out
}

// normalizeRange canonicalizes present sides and backfills each absent
// side from the fallback text independently.
func normalizeRange(begin, end, fallback string) (string, string) {
	begin = normalizeSide(begin)
	end = normalizeSide(end)

	if begin == "" || end == "" {
		if r := rms.ExtractDateRange(fallback); r != nil {
			if begin == "" {
				begin = r.Start
			}
			if end == "" {
				end = r.End
			}
		}
	}
	return begin, end
}

func normalizeSide(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, rms.Sentinel) {
		return ""
	}
	return rms.NormalizeDate(s)
}

func normalizeSingle(date, fallback string) string {
	date = normalizeSide(date)
	if date == "" {
		if r := rms.ExtractDateRange(fallback); r != nil {
			date = r.End
			if date == rms.PresentSentinel {
				date = r.Start
			}
		}
	}
	return date
}
