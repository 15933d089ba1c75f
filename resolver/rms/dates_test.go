package rms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDateRange(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		start   string
		end     string
		current bool
	}{
		{"full month to present", "June 2022 - Present", "June 2022", "Present", true},
		{"full month range", "January 2020 - March 2021", "January 2020", "March 2021", false},
		{"year range", "2022 - 2024", "2022", "2024", false},
		{"year to present", "2019 - Present", "2019", "Present", true},
		{"slash range", "06/2021 - 08/2023", "06/2021", "08/2023", false},
		{"abbreviated months", "Aug 2019 - May 2020", "August 2019", "May 2020", false},
		{"en dash separator", "June 2022 – Present", "June 2022", "Present", true},
		{"embedded in prose", "Worked at Acme Corp, June 2021 - Present, remotely", "June 2021", "Present", true},
		{"single full month", "Graduated May 2018 with honors", "May 2018", "May 2018", false},
		{"single year", "Class of 2016", "2016", "2016", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDateRange(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.start, got.Start)
			assert.Equal(t, tt.end, got.End)
			assert.Equal(t, tt.current, got.IsCurrent)
		})
	}
}

func TestExtractDateRangeNoDate(t *testing.T) {
	assert.Nil(t, ExtractDateRange("no dates in this text"))
	assert.Nil(t, ExtractDateRange(""))
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "August 2019", NormalizeDate("Aug 2019"))
	assert.Equal(t, "September 2020", NormalizeDate("Sept. 2020"))
	assert.Equal(t, "June 2022", NormalizeDate("june 2022"))
	assert.Equal(t, "Present", NormalizeDate("present"))
	assert.Equal(t, "2021", NormalizeDate(" 2021 "))
	assert.Equal(t, "05/2019", NormalizeDate("05/2019"))
}

func TestClassifyFormat(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2022", "YYYY"},
		{"June 2022", "MMMM YYYY"},
		{"06/2022", "MM/YYYY"},
		{"12/1999", "MM/YYYY"},
		{"Present", "Present"},
		{"n/a", "n/a"},
		{"", "n/a"},
		{"sometime in spring", "n/a"},
		{"Jun 2022", "n/a"}, // abbreviations must be normalized first
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyFormat(tt.date), "date %q", tt.date)
	}
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "2022-01-01", Timestamp("2022"))
	assert.Equal(t, "2022-06-01", Timestamp("June 2022"))
	assert.Equal(t, "1999-12-01", Timestamp("December 1999"))
	assert.Equal(t, Sentinel, Timestamp("06/2022"))
	assert.Equal(t, Sentinel, Timestamp("Present"))
	assert.Equal(t, Sentinel, Timestamp("n/a"))
	assert.Equal(t, Sentinel, Timestamp(""))
}
