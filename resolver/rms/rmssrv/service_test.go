package rmssrv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/rms/internal/ai/textgen"
	"github.com/Abraxas-365/rms/resolver/rms"
)

// fakeGenerator replays scripted responses or errors, in order
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
	gets  int
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.store[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
	return nil
}

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		AttemptPause:   time.Millisecond,
		RequestTimeout: time.Second,
		CacheTTL:       time.Minute,
	}
}

const endToEndResponse = `{
  "contact": {"name": "Jordan Reyes", "email": "jordan@example.com"},
  "summary": "Engineer and youth coach.",
  "experiences": [
    {
      "company": "Acme Corp",
      "role": "Software Engineer",
      "date_begin": "June 2021",
      "date_end": "Present",
      "is_current": true,
      "description": "Shipped backend services"
    },
    {
      "company": "Lincoln High",
      "role": "JV Coach",
      "date_begin": "Aug 2019",
      "date_end": "May 2020",
      "description": "Coached junior varsity"
    }
  ]
}`

const endToEndText = "EXPERIENCE\n" +
	"Software Engineer at Acme Corp, June 2021 - Present\n" +
	"- Shipped backend services\n\n" +
	"JV Coach, Lincoln High, Aug 2019 - May 2020\n" +
	"- Coached junior varsity\n"

func TestParseResumeEndToEnd(t *testing.T) {
	gen := &fakeGenerator{responses: []string{endToEndResponse}}
	svc := NewService(gen, nil, nil, nil, nil, fastConfig())

	result := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Attempts)

	f := result.Data
	assert.Equal(t, rms.ProducerValue, f[rms.ProducerKey])

	// Acme Corp stays under experience with an ongoing range
	assert.Equal(t, 1, f.GetInt(rms.SectionExperience.CountKey()))
	assert.Equal(t, "Acme Corp", f.GetString(rms.SectionExperience.FieldKey(0, "company")))
	assert.Equal(t, "June 2021", f.GetString(rms.SectionExperience.FieldKey(0, "date_begin")))
	assert.Equal(t, "Present", f.GetString(rms.SectionExperience.FieldKey(0, "date_end")))
	assert.Equal(t, "true", f.GetString(rms.SectionExperience.FieldKey(0, "is_current")))

	// The school coaching entry moves to involvement with parsed dates
	assert.Equal(t, 1, f.GetInt(rms.SectionInvolvement.CountKey()))
	assert.Equal(t, "Lincoln High", f.GetString(rms.SectionInvolvement.FieldKey(0, "organization")))
	assert.Equal(t, "JV Coach", f.GetString(rms.SectionInvolvement.FieldKey(0, "role")))
	assert.Equal(t, "August 2019", f.GetString(rms.SectionInvolvement.FieldKey(0, "date_begin")))
	assert.Equal(t, "May 2020", f.GetString(rms.SectionInvolvement.FieldKey(0, "date_end")))

	// The move is surfaced as an audit warning, not encoded in the schema
	assert.NotContains(t, f, rms.SectionInvolvement.FieldKey(0, "reclassified_from"))
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "JV Coach") && strings.Contains(w, "involvement") {
			found = true
		}
	}
	assert.True(t, found, "expected a reclassification warning, got %v", result.Warnings)
}

func TestParseResumeRetriesTransportFailures(t *testing.T) {
	transient := fmt.Errorf("%w: dial tcp: connection refused", textgen.ErrConnection)
	gen := &fakeGenerator{
		errs:      []error{transient, nil},
		responses: []string{"", endToEndResponse},
	}
	svc := NewService(gen, nil, nil, nil, nil, fastConfig())

	result := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Attempts)
}

func TestParseResumeRetriesMalformedResponse(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{"total nonsense, no json", endToEndResponse},
	}
	svc := NewService(gen, nil, nil, nil, nil, fastConfig())

	result := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Attempts)
}

func TestParseResumeRetriesEmptyExtraction(t *testing.T) {
	// Valid JSON with no resume content is a failed extraction, not a
	// successful parse of an empty schema
	gen := &fakeGenerator{
		responses: []string{"{}", endToEndResponse},
	}
	svc := NewService(gen, nil, nil, nil, nil, fastConfig())

	result := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "Acme Corp", result.Data.GetString(rms.SectionExperience.FieldKey(0, "company")))
}

func TestParseResumeExhaustsAttempts(t *testing.T) {
	transient := fmt.Errorf("%w: i/o timeout", textgen.ErrTimeout)
	gen := &fakeGenerator{errs: []error{transient, transient, transient}}
	svc := NewService(gen, nil, nil, nil, nil, fastConfig())

	result := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})

	require.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, 3, gen.calls)
}

func TestParseResumeModelNotFoundFailsFast(t *testing.T) {
	fatal := fmt.Errorf("%w: model 'x' missing", textgen.ErrModelNotFound)
	gen := &fakeGenerator{errs: []error{fatal, fatal, fatal}}
	svc := NewService(gen, nil, nil, nil, nil, fastConfig())

	result := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})

	require.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, gen.calls)
}

func TestParseResumeEmptyInput(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewService(gen, nil, nil, nil, nil, fastConfig())

	result := svc.ParseResume(context.Background(), rms.ParseRequest{Text: "   \n  "})

	require.False(t, result.Success)
	assert.Zero(t, result.Attempts)
	assert.Zero(t, gen.calls)
}

func TestParseResumeUsesResponseCache(t *testing.T) {
	gen := &fakeGenerator{responses: []string{endToEndResponse}}
	cache := newFakeCache()
	svc := NewService(gen, cache, nil, nil, nil, fastConfig())

	first := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})
	require.True(t, first.Success)
	assert.Equal(t, 1, gen.calls)

	// Second parse of identical input is served from the cache but
	// still runs the downstream pipeline fresh
	second := svc.ParseResume(context.Background(), rms.ParseRequest{Text: endToEndText})
	require.True(t, second.Success)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Data, second.Data)
}

func TestValidateAndFixDelegation(t *testing.T) {
	svc := NewService(&fakeGenerator{}, nil, nil, nil, nil, fastConfig())

	schema := rms.FlatSchema{
		rms.SectionSkill.CountKey():              5,
		rms.SectionSkill.FieldKey(0, "category"): "Languages",
	}

	verdict := svc.ValidateSchema(schema)
	assert.False(t, verdict.Valid)

	fix := svc.ValidateAndFix(schema)
	assert.True(t, fix.IsValid)
	assert.Equal(t, rms.ProducerValue, fix.FixedData[rms.ProducerKey])
	assert.Equal(t, 1, fix.FixedData.GetInt(rms.SectionSkill.CountKey()))
}
