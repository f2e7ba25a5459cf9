package catalog

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"

	"openlaw-backend/models"
)

// Catalog is the in-memory attorney directory. It is loaded once at
// startup and read-only afterwards, so it is safe for concurrent use
// without locking.
type Catalog struct {
	attorneys   []models.Attorney
	specialties []string
}

// New builds a catalog from a slice of records.
func New(attorneys []models.Attorney) *Catalog {
	return &Catalog{
		attorneys:   attorneys,
		specialties: collectSpecialties(attorneys),
	}
}

// Load reads the attorney data file. A missing or malformed file is
// not fatal: it logs a warning and returns an empty catalog, which
// degrades matching to the normal empty-result path.
func Load(path string) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: could not read attorney data file %s: %v", path, err)
		return New(nil)
	}

	var attorneys []models.Attorney
	if err := json.Unmarshal(data, &attorneys); err != nil {
		log.Printf("Warning: could not parse attorney data file %s: %v", path, err)
		return New(nil)
	}

	log.Printf("Loaded %d attorney records from %s", len(attorneys), path)
	return New(attorneys)
}

// All returns the full record list in load order.
func (c *Catalog) All() []models.Attorney {
	return c.attorneys
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.attorneys)
}

// Specialties returns the sorted distinct specialty list across all
// records. The classification prompt uses it as the allowed specialty
// vocabulary.
func (c *Catalog) Specialties() []string {
	return c.specialties
}

func collectSpecialties(attorneys []models.Attorney) []string {
	seen := make(map[string]string)
	for _, a := range attorneys {
		for _, s := range a.Specialties {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			seen[strings.ToLower(s)] = s
		}
	}

	out := make([]string, 0, len(seen))
	for _, s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
