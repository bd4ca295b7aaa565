package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSite() SiteConfig {
	return SiteConfig{
		Name: "acme",
		URL:  "https://acme.example",
		Sections: []SectionSpec{
			{Name: StateAuth},
			{Name: StateExperience, PanelSelector: "#work-%d", AddButton: "#add", Repeat: RepeatPerEntry},
			{Name: StateReview},
		},
	}
}

func TestSiteConfig_Validate(t *testing.T) {
	require.NoError(t, validSite().Validate())

	tests := []struct {
		name   string
		mutate func(c *SiteConfig)
		want   string
	}{
		{"no name", func(c *SiteConfig) { c.Name = "" }, "name is required"},
		{"no url", func(c *SiteConfig) { c.URL = "" }, "url is required"},
		{"auth not first", func(c *SiteConfig) {
			c.Sections[0], c.Sections[1] = c.Sections[1], c.Sections[0]
		}, "first section"},
		{"review not last", func(c *SiteConfig) {
			c.Sections = append(c.Sections, SectionSpec{Name: StateSkills})
		}, "last section"},
		{"duplicate", func(c *SiteConfig) {
			c.Sections = []SectionSpec{{Name: StateAuth}, {Name: StateSkills}, {Name: StateSkills}, {Name: StateReview}}
		}, "duplicate"},
		{"unknown", func(c *SiteConfig) { c.Sections[1].Name = "cover-letter" }, "unknown section"},
		{"repeat without panel", func(c *SiteConfig) { c.Sections[1].PanelSelector = "" }, "panel selector"},
		{"repeat without add", func(c *SiteConfig) { c.Sections[1].AddButton = "" }, "add button"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validSite()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSectionSpec_Panels(t *testing.T) {
	perEntry := SectionSpec{Repeat: RepeatPerEntry, PanelSelector: "#p-%d", Selector: "#s"}
	assert.Equal(t, 3, perEntry.PanelCount(3))
	assert.False(t, perEntry.NeedsAdd(0))
	assert.True(t, perEntry.NeedsAdd(1))
	assert.Equal(t, "#p-2", perEntry.Panel(2))

	exhausted := SectionSpec{Repeat: RepeatUntilExhausted}
	assert.Equal(t, 0, exhausted.PanelCount(0))
	assert.True(t, exhausted.NeedsAdd(0))

	fixed := SectionSpec{Repeat: RepeatFixed, Selector: "#s"}
	assert.Equal(t, 1, fixed.PanelCount(5))
	assert.False(t, fixed.NeedsAdd(1))
	assert.Equal(t, "#s", fixed.Panel(1))
	assert.False(t, fixed.Repeats())

	fixed.FixedCount = 2
	assert.Equal(t, 2, fixed.PanelCount(0))
}

func TestParseState(t *testing.T) {
	s, err := ParseState(" Experience ")
	require.NoError(t, err)
	assert.Equal(t, StateExperience, s)

	s, err = ParseState("Self-Identify")
	require.NoError(t, err)
	assert.Equal(t, StateSelfIdentify, s)
	assert.True(t, s.Disclosure())
	assert.False(t, StateQuestions.Disclosure())

	_, err = ParseState("done")
	assert.Error(t, err)
	assert.True(t, StateDone.Terminal())
	assert.False(t, StateReview.Terminal())
}

func TestParseAuthMode(t *testing.T) {
	for in, want := range map[string]AuthMode{
		"sign-in":  AuthSignIn,
		"login":    AuthSignIn,
		"SignUp":   AuthSignUp,
		"register": AuthSignUp,
	} {
		got, err := ParseAuthMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAuthMode("sso")
	assert.Error(t, err)
}

func TestFieldDescriptor_MatchOption(t *testing.T) {
	f := FieldDescriptor{Options: []Option{
		{Label: "United States of America", Value: "US"},
		{Label: "Canada", Value: "CA"},
	}}

	opt, ok := f.MatchOption("CA")
	require.True(t, ok)
	assert.Equal(t, "Canada", opt.Label)

	opt, ok = f.MatchOption("  united   states of america ")
	require.True(t, ok)
	assert.Equal(t, "US", opt.Value)

	_, ok = f.MatchOption("Mexico")
	assert.False(t, ok)
}

func TestFillDecision_Skip(t *testing.T) {
	d := NewDecision(FieldDescriptor{ID: "f", Label: "Password", Kind: KindText, Required: true, Sensitive: true})
	d.Values = []string{"secret"}
	assert.Equal(t, "***", d.Display())

	d.Rationale = "label matched"
	skipped := d.Skip("no value")
	assert.True(t, skipped.Skipped())
	assert.True(t, skipped.RequiredUnfilled)
	assert.Empty(t, skipped.Values)
	assert.Equal(t, "label matched; no value", skipped.Rationale)
}
