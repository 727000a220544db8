package aggregation

import (
	"fmt"
	"testing"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostname(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips www", input: "https://www.example.com/page", expected: "example.com"},
		{name: "keeps subdomain", input: "https://docs.example.com/a?b=c", expected: "docs.example.com"},
		{name: "lower-cases", input: "https://WWW.Example.COM", expected: "example.com"},
		{name: "drops port", input: "http://example.com:8080/x", expected: "example.com"},
		{name: "no scheme kept raw", input: "example.com/page", expected: "example.com/page"},
		{name: "garbage kept raw", input: "::not a url", expected: "::not a url"},
		{name: "unparsed value is trimmed", input: "  junk \n", expected: "junk"},
		{name: "surrounding space around url", input: " https://example.com/a ", expected: "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hostname(tt.input))
		})
	}
}

func TestRollupDomains(t *testing.T) {
	sources := []models.Source{
		{ID: "1", URL: "https://www.example.com/a"},
		{ID: "2", URL: "https://example.com/b"},
		{ID: "3", URL: "https://news.site/x"},
		{ID: "3", URL: "https://news.site/x"},
		{ID: "4", URL: "::broken"},
	}

	domains := RollupDomains(sources)

	require.Len(t, domains, 3)
	assert.Equal(t, models.DomainCount{Domain: "example.com", Count: 2}, domains[0])
	assert.Equal(t, models.DomainCount{Domain: "::broken", Count: 1}, domains[1])
	assert.Equal(t, models.DomainCount{Domain: "news.site", Count: 1}, domains[2])
}

func TestRollupDomains_TopTenAndOrderInsensitive(t *testing.T) {
	var sources []models.Source
	for i := 0; i < 12; i++ {
		for j := 0; j <= i; j++ {
			sources = append(sources, models.Source{
				ID:  fmt.Sprintf("%d-%d", i, j),
				URL: fmt.Sprintf("https://site%02d.com/%d", i, j),
			})
		}
	}

	forward := RollupDomains(sources)

	reversed := make([]models.Source, len(sources))
	for i := range sources {
		reversed[len(sources)-1-i] = sources[i]
	}
	backward := RollupDomains(reversed)

	require.Len(t, forward, 10)
	assert.Equal(t, forward, backward)
	assert.Equal(t, "site11.com", forward[0].Domain)
	assert.Equal(t, 12, forward[0].Count)
}

func TestRollupDomains_TrimmedFallbackSharesKey(t *testing.T) {
	sources := []models.Source{
		{ID: "1", URL: " junk"},
		{ID: "2", URL: "junk"},
	}

	assert.Equal(t, []models.DomainCount{{Domain: "junk", Count: 2}}, RollupDomains(sources))
}

func TestRollupDomains_Empty(t *testing.T) {
	assert.Empty(t, RollupDomains(nil))
}
