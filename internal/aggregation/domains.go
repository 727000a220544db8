package aggregation

import (
	"net/url"
	"strings"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

const topDomains = 10

// Hostname returns the lower-cased host of rawURL without a leading "www.".
// URLs that do not parse to a host are returned trimmed so they still count.
func Hostname(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return trimmed
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// RollupDomains tallies cited sources per hostname and returns the top 10,
// count descending with ties broken by domain. Sources sharing an id count once.
func RollupDomains(sources []models.Source) []models.DomainCount {
	counts := make(map[string]int)
	seen := make(map[string]bool)
	for _, src := range sources {
		if src.ID != "" {
			if seen[src.ID] {
				continue
			}
			seen[src.ID] = true
		}
		counts[Hostname(src.URL)]++
	}

	result := []models.DomainCount{}
	for i, domain := range rankIDs(counts) {
		if i >= topDomains {
			break
		}
		result = append(result, models.DomainCount{Domain: domain, Count: counts[domain]})
	}
	return result
}
