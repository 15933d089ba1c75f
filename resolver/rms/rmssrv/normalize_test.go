package rmssrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/rms/resolver/rms"
)

func TestNormalizeDatesCanonicalizes(t *testing.T) {
	in := &rms.StructuredResume{
		Experiences: []rms.Experience{
			{Company: "Acme", DateBegin: "Jun 2021", DateEnd: "present"},
		},
	}

	out := NormalizeDates(in)

	require.Len(t, out.Experiences, 1)
	assert.Equal(t, "June 2021", out.Experiences[0].DateBegin)
	assert.Equal(t, "Present", out.Experiences[0].DateEnd)
	assert.True(t, out.Experiences[0].IsCurrent)
}

func TestNormalizeDatesBackfillsFromFields(t *testing.T) {
	in := &rms.StructuredResume{
		Involvement: []rms.Involvement{
			{
				Organization: "Lincoln High",
				Role:         "JV Coach",
				Description:  "Coached the team Aug 2019 - May 2020 across two seasons",
			},
		},
	}

	out := NormalizeDates(in)

	require.Len(t, out.Involvement, 1)
	assert.Equal(t, "August 2019", out.Involvement[0].DateBegin)
	assert.Equal(t, "May 2020", out.Involvement[0].DateEnd)
}

func TestNormalizeDatesNeverOverwritesPresentSide(t *testing.T) {
	in := &rms.StructuredResume{
		Experiences: []rms.Experience{
			{
				Company:     "Acme",
				DateBegin:   "June 2021",
				Description: "Promoted in 2022 - 2023 cycle",
			},
		},
	}

	out := NormalizeDates(in)

	require.Len(t, out.Experiences, 1)
	// Begin already present; only the missing end is backfilled
	assert.Equal(t, "June 2021", out.Experiences[0].DateBegin)
	assert.Equal(t, "2023", out.Experiences[0].DateEnd)
}

func TestNormalizeDatesEducationSingleDate(t *testing.T) {
	in := &rms.StructuredResume{
		Education: []rms.Education{
			{Institution: "State University, graduated May 2018"},
		},
	}

	out := NormalizeDates(in)

	require.Len(t, out.Education, 1)
	assert.Equal(t, "May 2018", out.Education[0].Date)
}

func TestNormalizeDatesPure(t *testing.T) {
	in := &rms.StructuredResume{
		Experiences: []rms.Experience{
			{Company: "Acme", DateBegin: "Jun 2021", DateEnd: "Present"},
		},
	}
	_ = NormalizeDates(in)
	assert.Equal(t, "Jun 2021", in.Experiences[0].DateBegin)
}
