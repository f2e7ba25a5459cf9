package models

// Attorney represents an attorney record loaded from the directory
// data file. Records are immutable after load; the catalog is the only
// owner and nothing mutates them during request processing.
type Attorney struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	FirstName            string   `json:"firstName"`
	LastName             string   `json:"lastName"`
	Specialties          []string `json:"specialties"`
	LicenseState         []string `json:"licenseState"`
	MeetingTypes         []string `json:"meetingTypes"`
	Languages            []string `json:"languages"`
	Firm                 string   `json:"firm"`
	Rating               float64  `json:"rating"`
	HasCalendarConnected bool     `json:"hasCalendarConnected"`
	Address              string   `json:"address"`
	ReviewContent        string   `json:"reviewContent"`
}

// MatchResult is an attorney paired with the natural-language
// explanation of why it matched a query.
type MatchResult struct {
	Attorney
	Explanation string `json:"explanation,omitempty"`
}
