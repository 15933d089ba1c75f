package rmssrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/rms/resolver/rms"
)

func TestReclassifyProjectToInvolvement(t *testing.T) {
	in := &rms.StructuredResume{
		Projects: []rms.Project{
			{Title: "JV Assistant Coach - Lincoln High School"},
			{Title: "Inventory Tracker", Description: "Built and deployed a Go web application"},
		},
	}

	out := Reclassify(in, "")

	require.Len(t, out.Involvement, 1)
	assert.Equal(t, "JV Assistant Coach", out.Involvement[0].Role)
	assert.Equal(t, "Lincoln High School", out.Involvement[0].Organization)
	assert.Equal(t, string(rms.SectionProject), out.Involvement[0].ReclassifiedFrom)

	require.Len(t, out.Projects, 1)
	assert.Equal(t, "Inventory Tracker", out.Projects[0].Title)
}

func TestReclassifyTitleAtPattern(t *testing.T) {
	in := &rms.StructuredResume{
		Projects: []rms.Project{
			{Title: "Volunteer Tutor at City Youth Center"},
		},
	}

	out := Reclassify(in, "")

	require.Len(t, out.Involvement, 1)
	assert.Equal(t, "Volunteer Tutor", out.Involvement[0].Role)
	assert.Equal(t, "City Youth Center", out.Involvement[0].Organization)
}

func TestReclassifyExperienceToInvolvement(t *testing.T) {
	in := &rms.StructuredResume{
		Experiences: []rms.Experience{
			{
				Company:   "Lincoln High School",
				Role:      "JV Coach",
				Location:  "Portland, OR",
				DateBegin: "August 2019",
				DateEnd:   "May 2020",
			},
			{
				Company:   "Acme Corp",
				Role:      "Software Engineer",
				DateBegin: "June 2021",
				DateEnd:   "Present",
				IsCurrent: true,
			},
		},
	}

	out := Reclassify(in, "")

	require.Len(t, out.Involvement, 1)
	moved := out.Involvement[0]
	assert.Equal(t, "Lincoln High School", moved.Organization)
	assert.Equal(t, "JV Coach", moved.Role)
	assert.Equal(t, "Portland, OR", moved.Location)
	assert.Equal(t, "August 2019", moved.DateBegin)
	assert.Equal(t, "May 2020", moved.DateEnd)
	assert.Equal(t, string(rms.SectionExperience), moved.ReclassifiedFrom)

	require.Len(t, out.Experiences, 1)
	assert.Equal(t, "Acme Corp", out.Experiences[0].Company)
}

func TestReclassifyNeverDiscardsEntries(t *testing.T) {
	in := &rms.StructuredResume{
		Projects: []rms.Project{
			{Title: "Coding Club Mentor"},
			{Title: "Compiler", Description: "Implemented a toy compiler"},
		},
		Experiences: []rms.Experience{
			{Company: "Initech", Role: "Analyst"},
		},
	}

	out := Reclassify(in, "")
	total := len(out.Projects) + len(out.Experiences) + len(out.Involvement)
	assert.Equal(t, 3, total)
}

func TestReclassifyIdempotent(t *testing.T) {
	original := "Lincoln High School\n- Led weekly practices\n- Organized travel\n"
	in := &rms.StructuredResume{
		Projects: []rms.Project{
			{Title: "JV Assistant Coach - Lincoln High School"},
		},
		Experiences: []rms.Experience{
			{Company: "Acme Corp", Role: "Engineer", Description: "shipped code"},
		},
	}

	once := Reclassify(in, original)
	twice := Reclassify(once, original)
	assert.Equal(t, once, twice)
}

func TestBackfillDescription(t *testing.T) {
	original := "INVOLVEMENT\nJV Assistant Coach - Lincoln High School\n- Led weekly practices\n- Organized team travel\n\nNext block"

	in := &rms.StructuredResume{
		Projects: []rms.Project{
			{Title: "JV Assistant Coach - Lincoln High School"},
		},
	}
	out := Reclassify(in, original)

	require.Len(t, out.Involvement, 1)
	desc := out.Involvement[0].Description
	assert.Contains(t, desc, "Led weekly practices")
	assert.Contains(t, desc, "Organized team travel")
	assert.NotContains(t, desc, "Next block")
}

func TestBackfillAnchorOrder(t *testing.T) {
	// Organization anchor is preferred over role anchor
	original := "Lincoln High School\n- From the organization block\n\nJV Coach\n- From the role block\n"
	got := backfillDescription(original, "Lincoln High School", "JV Coach")
	assert.Contains(t, got, "From the organization block")
	assert.NotContains(t, got, "From the role block")

	// With no organization hit, the role anchor is used
	got = backfillDescription(original, "Somewhere Else", "JV Coach")
	assert.Contains(t, got, "From the role block")
}

func TestCleanDescriptionStripsMarkersAndBlankRuns(t *testing.T) {
	dirty := "[SECTION:INVOLVEMENT]\nfirst\n\n\n\nsecond\n[BULLETS]\n- a\n[/BULLETS]"
	got := cleanDescription(dirty)
	assert.NotContains(t, got, "[SECTION:")
	assert.NotContains(t, got, "[BULLETS]")
	assert.Contains(t, got, "first\n\nsecond")
}

func TestSplitRoleOrganization(t *testing.T) {
	tests := []struct {
		title string
		role  string
		org   string
	}{
		{"JV Assistant Coach - Lincoln High School", "JV Assistant Coach", "Lincoln High School"},
		{"Tutor at Bright Futures", "Tutor", "Bright Futures"},
		{"Mentor for First Robotics", "Mentor", "First Robotics"},
		{"Treasurer", "Treasurer", ""},
	}
	for _, tt := range tests {
		role, org := splitRoleOrganization(tt.title)
		assert.Equal(t, tt.role, role, "title %q", tt.title)
		assert.Equal(t, tt.org, org, "title %q", tt.title)
	}
}
