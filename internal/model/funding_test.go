package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return v
}

func TestParseFundingRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want FundingRound
	}{
		{"Seed", RoundSeed},
		{"seed", RoundSeed},
		{"pre_seed", RoundPreSeed},
		{"Pre-Seed", RoundPreSeed},
		{"preseed", RoundPreSeed},
		{"series_a", RoundSeriesA},
		{"Series B", RoundSeriesB},
		{"series-c", RoundSeriesC},
		{"Series D", RoundSeriesD},
		{"series_e", RoundSeriesE},
		{"angel", RoundAngel},
		{"Unknown", RoundUnknown},
		{"  Debt Financing ", "Debt Financing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseFundingRound(tt.in))
		})
	}
}

func TestMatchFundingRound_PreSeedBeforeSeed(t *testing.T) {
	t.Parallel()

	r, ok := MatchFundingRound("Acme closes $2M pre-seed round")
	require.True(t, ok)
	assert.Equal(t, RoundPreSeed, r)

	_, ok = MatchFundingRound("Acme launches a new product")
	assert.False(t, ok)
}

func TestParseFundingAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"5", 5, true},
		{"$5M", 5, true},
		{"$ 5.5 million", 5.5, true},
		{"1.2B", 1200, true},
		{"$2 billion", 2000, true},
		{"750K", 0.75, true},
		{"1,500", 1500, true},
		{"USD 10m", 10, true},
		{"undisclosed", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseFundingAmount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"2024-06-01",
		"2024-06-01T23:59:00Z",
		"2024-06-01 08:00:00",
		"2024-06-01T08:00:00.123456",
		"Sat, 01 Jun 2024 08:00:00 +0000",
	} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, "2024-06-01", d.String(), s)
	}

	_, err := ParseDate("June 1st")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2023-02-03"`)))
	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2023-02-03"`, string(out))

	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	assert.True(t, d.IsZero())
	out, err = d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, d.UnmarshalJSON([]byte(`"nope"`)))
}

func TestDateBefore(t *testing.T) {
	t.Parallel()

	a := DateOf(mustTime(t, "2024-01-01"))
	b := DateOf(mustTime(t, "2024-01-02"))
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, DateOf(time.Time{}).IsZero())
}
