package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want DateValue
	}{
		{"2019", DateValue{Year: 2019}},
		{"Jan 2020", DateValue{Year: 2020, Month: 1}},
		{"September, 2018", DateValue{Year: 2018, Month: 9}},
		{"03/2019", DateValue{Year: 2019, Month: 3}},
		{"2019-11", DateValue{Year: 2019, Month: 11}},
		{"2021-06-15", DateValue{Year: 2021, Month: 6, Day: 15}},
		{"Present", DateValue{Present: true}},
		{" current ", DateValue{Present: true}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "soon", "13/2019", "Foo 2020"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		start   DateValue
		end     DateValue
		current bool
	}{
		{"Jan 2020 - Present", DateValue{Year: 2020, Month: 1}, DateValue{Present: true}, true},
		{"Jan 2020 – present", DateValue{Year: 2020, Month: 1}, DateValue{Present: true}, true},
		{"03/2019 - 12/2021", DateValue{Year: 2019, Month: 3}, DateValue{Year: 2021, Month: 12}, false},
		{"2018 to 2020", DateValue{Year: 2018}, DateValue{Year: 2020}, false},
		{"2018 TO 2020", DateValue{Year: 2018}, DateValue{Year: 2020}, false},
		{"2016-2018", DateValue{Year: 2016}, DateValue{Year: 2018}, false},
		{"2019-11", DateValue{Year: 2019, Month: 11}, DateValue{}, false},
		{"2016", DateValue{Year: 2016}, DateValue{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, tt.end, r.End)
			assert.Equal(t, tt.current, r.Current())
		})
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, in := range []string{"", "Present - 2020", "whenever - 2020"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestDateValue_Parts(t *testing.T) {
	d := DateValue{Year: 2020, Month: 3}
	assert.Equal(t, "03", d.MonthPart())
	assert.Equal(t, "", d.DayPart())
	assert.Equal(t, "2020", d.YearPart())
	assert.Equal(t, "2020-03", d.ISO())
	assert.Equal(t, "2020-03-09", DateValue{Year: 2020, Month: 3, Day: 9}.ISO())
	assert.Equal(t, "present", DateValue{Present: true}.String())

	assert.Equal(t, DateValue{Year: 2020, Month: 5}, DateValue{Year: 2020}.WithDefaultMonth(5))
	assert.Equal(t, d, d.WithDefaultMonth(5))
	assert.True(t, DateValue{}.IsZero())
}
