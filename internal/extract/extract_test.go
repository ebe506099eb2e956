package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/model"
)

const acmeArticle = `Acme, a San Francisco-based fintech startup, has raised $12.5 million in a
Series A round. The round was led by Sequoia Capital, Accel and Andreessen Horowitz, with
participation from existing investors. Acme said it will use the money to hire engineers.`

func TestFromText(t *testing.T) {
	t.Parallel()

	r := FromText(acmeArticle, "Exclusive: Acme raises $12.5M Series A to rebuild payroll")

	assert.Equal(t, "Acme", r.CompanyName)
	require.NotNil(t, r.FundingAmount)
	assert.InDelta(t, 12.5, *r.FundingAmount, 0.0001)
	assert.Equal(t, model.RoundSeriesA, r.FundingRound)
	assert.Equal(t, "Fintech", r.Industry)
	assert.Equal(t, "San Francisco", r.Location)
	assert.Equal(t, []string{"Sequoia Capital", "Accel", "Andreessen Horowitz"}, r.Investors)
	assert.Empty(t, r.URL, "identity URL is stamped by the source")
}

func TestFromText_Empty(t *testing.T) {
	t.Parallel()
	r := FromText("", "")
	assert.Zero(t, r.Completeness())
}

func TestCompanyFromHeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"Acme raises $12M Series A", "Acme"},
		{"Breaking: Zed Robotics secures $4M in seed funding", "Zed Robotics"},
		{"Just in: Nimbus gets funding from Sequoia", "Nimbus"},
		{"Orbit announces $30M Series B funding", "Orbit"},
		{"Lumen closes $8M seed round", "Lumen"},
		{"Lumen closes office in Berlin", ""},
		{"Acme secures new customers", ""},
		{"Why seed valuations are falling", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CompanyFromHeadline(tt.title))
		})
	}
}

func TestAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"raised $12 million", 12, true},
		{"a $1.2 billion valuation", 1200, true},
		{"Acme lands $5M", 5, true},
		{"the $3bn fund", 3000, true},
		{"raised 40 million dollars", 40, true},
		{"valued at $2B after raising $150M", 150, true},
		{"no money here", 0, false},
		{"$5 more", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			got, ok := Amount(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.RoundPreSeed, Round("Zed raises pre-seed", "a seed round"))
	assert.Equal(t, model.RoundSeed, Round("Zed raises $2M", "the seed round was led by"))
	assert.Equal(t, model.RoundPreSeed, Round("Zed raises $2M", "its pre-seed funding"))
	assert.Equal(t, model.RoundSeriesC, Round("Zed raises $2M", "a Series C extension"))
	assert.Equal(t, model.RoundAngel, Round("Zed raises $2M", "an angel round from"))
	assert.Equal(t, model.FundingRound(""), Round("Zed raises $2M", "backed by angel investors"))
}

func TestLocation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Austin, Texas", Location("The company, headquartered in Austin, Texas, builds..."))
	assert.Equal(t, "New York City", Location("It is based in New York City."))
	assert.Equal(t, "London", Location("The London-based startup"))
	assert.Equal(t, "", Location("decisions based in part on data"))
}

func TestInvestors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Index Ventures", "Y Combinator"},
		Investors("Investors include Index Ventures and Y Combinator."))
	assert.Equal(t, []string{"Accel", "General Catalyst"},
		Investors("led by Accel, with participation from General Catalyst."))
	assert.Nil(t, Investors("no backers named"))
}

func TestLooksLikeFunding(t *testing.T) {
	t.Parallel()

	assert.True(t, LooksLikeFunding("Acme raises $12M"))
	assert.True(t, LooksLikeFunding("Zed lands Series B"))
	assert.True(t, LooksLikeFunding("New funding for climate startups"))
	assert.False(t, LooksLikeFunding("Apple unveils new iPhone"))
	assert.False(t, LooksLikeFunding("Seedling app review"))
}

func TestCleanHeadline(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Acme raises $12M", CleanHeadline(" Acme raises $12M - TechCrunch ", "TechCrunch"))
	assert.Equal(t, "Acme raises $12M - TechCrunch", CleanHeadline("Acme raises $12M - TechCrunch", ""))
}

func TestIndustry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AI", Industry("an AI platform for lawyers"))
	assert.Equal(t, "", Industry("the founder said it was a detail"))
	assert.Equal(t, "Healthcare", Industry("a telemedicine company"))
	assert.Equal(t, []string{"AI", "Cybersecurity"}, Industries("machine learning for security teams"))
}
