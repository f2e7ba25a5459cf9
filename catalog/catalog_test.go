package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"openlaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attorneys.json")
	data := `[
		{"id": "a1", "name": "Sarah Johnson", "specialties": ["Family Law"], "rating": 4.8},
		{"id": "a2", "name": "David Park", "specialties": ["Criminal Law", "family law"], "rating": 4.0}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c := Load(path)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, "a1", c.All()[0].ID)
	assert.Equal(t, 4.8, c.All()[0].Rating)
}

func TestLoad_MissingFile(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Specialties())
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attorneys.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	c := Load(path)
	assert.Equal(t, 0, c.Len())
}

func TestSpecialties_DistinctAndSorted(t *testing.T) {
	c := New([]models.Attorney{
		{ID: "a1", Specialties: []string{"Family Law", "Civil Litigation"}},
		{ID: "a2", Specialties: []string{"family law", " Criminal Law "}},
		{ID: "a3", Specialties: []string{""}},
	})

	specs := c.Specialties()
	require.Len(t, specs, 3)
	assert.ElementsMatch(t, []string{"Civil Litigation", "Criminal Law", "family law"}, specs)
}
