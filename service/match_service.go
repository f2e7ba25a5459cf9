package service

import (
	"regexp"
	"sort"
	"strings"

	"openlaw-backend/catalog"
	"openlaw-backend/models"
)

// MatchService finds the best attorney matches for a filter set by
// applying hard filters, then weighted scoring and ranking.
type MatchService struct {
	catalog    *catalog.Catalog
	fallbacks  map[string][]string
	maxResults int
}

// MatchServiceOption is a functional option for MatchService
type MatchServiceOption func(*MatchService)

// MatchWithCatalog sets the attorney catalog
func MatchWithCatalog(c *catalog.Catalog) MatchServiceOption {
	return func(s *MatchService) {
		s.catalog = c
	}
}

// MatchWithSpecialtyFallbacks sets the specialty-to-related-specialty
// mapping used for the fallback retry
func MatchWithSpecialtyFallbacks(m map[string][]string) MatchServiceOption {
	return func(s *MatchService) {
		s.fallbacks = m
	}
}

// NewMatchService creates a new match service
func NewMatchService(opts ...MatchServiceOption) *MatchService {
	s := &MatchService{
		fallbacks:  DefaultSpecialtyFallbacks(),
		maxResults: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = catalog.New(nil)
	}
	return s
}

// DefaultSpecialtyFallbacks returns the mapping from narrow practice
// areas to the broader related specialties tried when the original
// specialty filter yields no matches.
func DefaultSpecialtyFallbacks() map[string][]string {
	return map[string][]string{
		"divorce":               {"family law"},
		"child custody":         {"family law"},
		"child support":         {"family law"},
		"adoption":              {"family law"},
		"misdemeanors":          {"criminal law"},
		"felonies":              {"criminal law"},
		"juvenile offenses":     {"criminal law"},
		"traffic violations":    {"traffic law"},
		"auto accidents":        {"personal injury"},
		"medical malpractice":   {"personal injury"},
		"business formation":    {"business law", "corporate law"},
		"mergers & acquisitions": {"business law", "corporate law"},
		"contract disputes":     {"business law", "civil litigation"},
	}
}

// stateAbbreviations maps the two-letter postal abbreviation parsed
// from an attorney address to the full state name used in license
// comparisons. Lowercase on both sides.
var stateAbbreviations = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas", "ca": "california",
	"co": "colorado", "ct": "connecticut", "de": "delaware", "fl": "florida", "ga": "georgia",
	"hi": "hawaii", "id": "idaho", "il": "illinois", "in": "indiana", "ia": "iowa",
	"ks": "kansas", "ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi",
	"mo": "missouri", "mt": "montana", "ne": "nebraska", "nv": "nevada", "nh": "new hampshire",
	"nj": "new jersey", "nm": "new mexico", "ny": "new york", "nc": "north carolina",
	"nd": "north dakota", "oh": "ohio", "ok": "oklahoma", "or": "oregon", "pa": "pennsylvania",
	"ri": "rhode island", "sc": "south carolina", "sd": "south dakota", "tn": "tennessee",
	"tx": "texas", "ut": "utah", "vt": "vermont", "va": "virginia", "wa": "washington",
	"wv": "west virginia", "wi": "wisconsin", "wy": "wyoming",
}

// addressPattern parses free-text addresses of the form "City, ST".
// Addresses that do not match simply earn no location bonus; the miss
// is deliberately lenient rather than an error.
var addressPattern = regexp.MustCompile(`(?i)([\w\s.-]+?)\s*,\s*([a-z]{2})\b`)

// FindBestMatches applies hard filters and weighted scoring against
// the catalog and returns up to three records, best first. If the
// original specialty filter yields nothing and a fallback mapping
// exists for it, one retry is made with the related specialties and
// the filter set is annotated with the fallback bookkeeping fields.
// An empty result is a normal outcome, not an error.
func (s *MatchService) FindBestMatches(filters *models.FilterSet) []models.Attorney {
	matches := s.rank(*filters)
	if len(matches) > 0 || len(filters.Specialties) == 0 {
		return matches
	}

	// Single fallback attempt, no cascading.
	related := make(map[string]bool)
	for _, spec := range filters.Specialties {
		for _, fb := range s.fallbacks[strings.ToLower(spec)] {
			related[fb] = true
		}
	}
	if len(related) == 0 {
		return matches
	}

	fallbackSpecs := make([]string, 0, len(related))
	for spec := range related {
		fallbackSpecs = append(fallbackSpecs, spec)
	}
	sort.Strings(fallbackSpecs)

	retry := *filters
	retry.Specialties = fallbackSpecs
	matches = s.rank(retry)
	if len(matches) > 0 {
		filters.FallbackApplied = true
		filters.OriginalSpecialties = filters.Specialties
		filters.Specialties = fallbackSpecs
	}
	return matches
}

// rank runs the two-phase algorithm once: hard filtering, scoring,
// zero-score exclusion under a location filter, then a stable sort on
// (score desc, rating desc). Remaining ties keep catalog load order.
func (s *MatchService) rank(filters models.FilterSet) []models.Attorney {
	type scored struct {
		attorney models.Attorney
		score    int
	}

	var candidates []scored
	for _, a := range s.applyHardFilters(filters) {
		score := s.scoreAttorney(a, filters)
		if len(filters.Location) > 0 && score == 0 {
			// A present location constraint with zero signal is a
			// non-match, not a don't-care.
			continue
		}
		candidates = append(candidates, scored{attorney: a, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].attorney.Rating > candidates[j].attorney.Rating
	})

	n := len(candidates)
	if n > s.maxResults {
		n = s.maxResults
	}
	out := make([]models.Attorney, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.attorney)
	}
	return out
}

// applyHardFilters drops every record that fails any present filter
// field. Multi-valued filter fields match with OR inside the field;
// distinct fields combine with AND.
func (s *MatchService) applyHardFilters(filters models.FilterSet) []models.Attorney {
	var out []models.Attorney
	for _, a := range s.catalog.All() {
		if filters.LicenseState != "" && !containsFold(a.LicenseState, filters.LicenseState) {
			continue
		}
		if len(filters.Specialties) > 0 && !anyOverlap(a.Specialties, filters.Specialties) {
			continue
		}
		if filters.HasCalendarConnected && !a.HasCalendarConnected {
			continue
		}
		if len(filters.MeetingTypes) > 0 && !anyOverlap(a.MeetingTypes, filters.MeetingTypes) {
			continue
		}
		if filters.Firm != "" && !strings.Contains(strings.ToLower(a.Firm), strings.ToLower(filters.Firm)) {
			continue
		}
		if len(filters.Languages) > 0 && !anyOverlap(a.Languages, filters.Languages) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// scoreAttorney computes the additive weighted score for one record.
func (s *MatchService) scoreAttorney(a models.Attorney, filters models.FilterSet) int {
	score := 0

	if len(filters.Location) > 0 {
		score += s.scoreLocation(a, filters.Location[0])
	}

	if filters.Name != "" && strings.EqualFold(a.Name, filters.Name) {
		score += 10
	}
	if filters.FirstName != "" && strings.EqualFold(a.FirstName, filters.FirstName) {
		score += 5
	}
	if filters.LastName != "" && strings.EqualFold(a.LastName, filters.LastName) {
		score += 5
	}

	// Rating band: r <= rating < r+1, inclusive floor.
	if filters.Rating > 0 && filters.Rating <= a.Rating && a.Rating < filters.Rating+1 {
		score += 2
	}

	if filters.HasCalendarConnected && a.HasCalendarConnected {
		score += 2
	}

	if len(filters.MeetingTypes) > 0 && anyOverlap(a.MeetingTypes, filters.MeetingTypes) {
		score += 1
	}

	if filters.Firm != "" && strings.Contains(strings.ToLower(a.Firm), strings.ToLower(filters.Firm)) {
		score += 5
	}

	if len(filters.Languages) > 0 && anyOverlap(a.Languages, filters.Languages) {
		score += 2
	}

	review := strings.ToLower(a.ReviewContent)
	for _, kw := range filters.ReviewKeywords {
		if kw != "" && strings.Contains(review, strings.ToLower(kw)) {
			score += 3
		}
	}

	return score
}

// scoreLocation awards 3 points when the location token matches the
// city parsed from the record address and the parsed state is among
// the record's license states, plus 2 points (stacking) when the
// token matches a license state directly.
func (s *MatchService) scoreLocation(a models.Attorney, location string) int {
	query := strings.ToLower(strings.TrimSpace(location))
	if query == "" {
		return 0
	}

	score := 0
	if m := addressPattern.FindStringSubmatch(strings.ToLower(a.Address)); m != nil {
		city := strings.TrimSpace(m[1])
		stateFull := stateAbbreviations[strings.TrimSpace(m[2])]
		if strings.Contains(city, query) && containsFold(a.LicenseState, stateFull) {
			score += 3
		}
	}
	if containsFold(a.LicenseState, query) {
		score += 2
	}
	return score
}

// containsFold reports whether list contains value, case-insensitive.
func containsFold(list []string, value string) bool {
	if value == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// anyOverlap reports whether any filter value appears in the record
// values, case-insensitive.
func anyOverlap(recordValues, filterValues []string) bool {
	for _, fv := range filterValues {
		if containsFold(recordValues, fv) {
			return true
		}
	}
	return false
}
