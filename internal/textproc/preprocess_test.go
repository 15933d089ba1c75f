package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCanonicalizesHeaders(t *testing.T) {
	p := New(DefaultConfig())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leadership synonym", "Leadership & Extracurriculars\nChess Club", "[SECTION:INVOLVEMENT]"},
		{"volunteer synonym", "VOLUNTEER EXPERIENCE\nFood bank", "[SECTION:INVOLVEMENT]"},
		{"campus synonym", "Campus Involvement\nDebate team", "[SECTION:INVOLVEMENT]"},
		{"work experience", "Work Experience\nAcme Corp", "[SECTION:EXPERIENCE]"},
		{"already canonical", "EDUCATION\nState University", "[SECTION:EDUCATION]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Process(tt.input)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestProcessBulletBlocks(t *testing.T) {
	p := New(DefaultConfig())

	input := "EXPERIENCE\nSoftware Engineer, Acme Corp\n- Built pipelines\n- Shipped features\nRegular line"
	got := p.Process(input)

	openIdx := strings.Index(got, BulletsOpenMarker)
	closeIdx := strings.Index(got, BulletsCloseMarker)
	require.GreaterOrEqual(t, openIdx, 0)
	require.Greater(t, closeIdx, openIdx)

	inner := got[openIdx+len(BulletsOpenMarker) : closeIdx]
	assert.Contains(t, inner, "- Built pipelines")
	assert.Contains(t, inner, "- Shipped features")
	assert.NotContains(t, inner, "Regular line")
}

func TestProcessBlankLineFlushesBlock(t *testing.T) {
	p := New(DefaultConfig())

	got := p.Process("First block line one\nline two\n\nSecond block")
	blocks := strings.Split(got, "\n\n")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "line two")
	assert.Equal(t, "Second block", blocks[1])
}

func TestProcessNewEntryHeuristics(t *testing.T) {
	p := New(DefaultConfig())

	tests := []struct {
		name  string
		lines []string
	}{
		{"month-year starts entry", []string{"Some org details", "June 2021 started here"}},
		{"present starts entry", []string{"Some org details", "2019 - Present at the lab"}},
		{"role keyword starts entry", []string{"Some org details", "Software Engineer"}},
		{"org suffix starts entry", []string{"Some role details", "Lincoln University"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Process(strings.Join(tt.lines, "\n"))
			blocks := strings.Split(got, "\n\n")
			assert.Len(t, blocks, 2, "second line should open a new block")
		})
	}
}

func TestProcessDeterministic(t *testing.T) {
	p := New(DefaultConfig())
	input := "EXPERIENCE\nEngineer at Acme\n- did things\n\nEDUCATION\nState University"
	assert.Equal(t, p.Process(input), p.Process(input))
}

func TestProcessEmptyInput(t *testing.T) {
	p := New(DefaultConfig())
	assert.Equal(t, "", p.Process(""))
	assert.Equal(t, "", p.Process("\n\n\n"))
}

func TestStripMarkers(t *testing.T) {
	in := "[SECTION:EXPERIENCE]\nled the team\n[BULLETS]\n- a\n[/BULLETS]"
	got := StripMarkers(in)
	assert.NotContains(t, got, "[SECTION:")
	assert.NotContains(t, got, BulletsOpenMarker)
	assert.NotContains(t, got, BulletsCloseMarker)
	assert.Contains(t, got, "led the team")
	assert.Contains(t, got, "- a")
}
