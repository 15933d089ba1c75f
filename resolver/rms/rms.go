// Package rms defines the resume metadata schema domain: the structured
// resume model, the flat indexed wire schema, the codec between them,
// date normalization and validation.
package rms

import "strings"

// Contact holds the resume header fields
type Contact struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website"`
	LinkedIn string `json:"linkedin"`
}

type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Location    string `json:"location"`
	DateBegin   string `json:"date_begin"`
	DateEnd     string `json:"date_end"`
	IsCurrent   bool   `json:"is_current"`
	Description string `json:"description"`
}

type Education struct {
	Institution   string `json:"institution"`
	Qualification string `json:"qualification"`
	Location      string `json:"location"`
	Date          string `json:"date"`
	IsGraduate    bool   `json:"is_graduate"`
	Score         string `json:"score"`
	ScoreType     string `json:"score_type"`
	Minor         string `json:"minor"`
	Description   string `json:"description"`
}

type Skill struct {
	Category string `json:"category"`
	// Keywords is a comma-joined list
	Keywords string `json:"keywords"`
}

type Project struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Description  string `json:"description"`
}

type Involvement struct {
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Location     string `json:"location"`
	DateBegin    string `json:"date_begin"`
	DateEnd      string `json:"date_end"`
	Description  string `json:"description"`

	// ReclassifiedFrom records the section this entry was moved out of
	// during correction. Audit-only; never encoded into the flat schema.
	ReclassifiedFrom string `json:"-"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

type Coursework struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Date        string `json:"date"`
}

type Publication struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	URL       string `json:"url"`
}

type Award struct {
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type Reference struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// StructuredResume is the nested, human-readable form. It lives only
// inside one parse attempt; the flat schema is the durable output.
type StructuredResume struct {
	Contact        Contact         `json:"contact"`
	Summary        string          `json:"summary"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Involvement    []Involvement   `json:"involvement"`
	Certifications []Certification `json:"certifications"`
	Coursework     []Coursework    `json:"coursework"`
	Publications   []Publication   `json:"publications"`
	Awards         []Award         `json:"awards"`
	References     []Reference     `json:"references"`
}

// IsEmpty reports whether extraction produced nothing usable
func (s *StructuredResume) IsEmpty() bool {
	return s.Contact == (Contact{}) &&
		strings.TrimSpace(s.Summary) == "" &&
		len(s.Experiences) == 0 &&
		len(s.Education) == 0 &&
		len(s.Skills) == 0 &&
		len(s.Projects) == 0 &&
		len(s.Involvement) == 0 &&
		len(s.Certifications) == 0 &&
		len(s.Coursework) == 0 &&
		len(s.Publications) == 0 &&
		len(s.Awards) == 0 &&
		len(s.References) == 0
}
