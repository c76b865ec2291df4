package interview_test

import (
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := defaultCatalog(t)

	require.Equal(t, []string{"dentist", "hygienist"}, catalog.TypeIDs())
	require.Equal(t, []string{"full", "core"}, catalog.VariantNames())

	full, err := catalog.Variant("")
	require.NoError(t, err)
	require.Equal(t, "full", full.Name)
	require.Equal(t, 10, full.Total())
	require.Equal(t, "Introduction", full.Categories[0])

	core, err := catalog.Variant("core")
	require.NoError(t, err)
	require.Equal(t, 7, core.Total())
	for _, category := range core.Categories {
		require.False(t, strings.HasPrefix(category, "Technical Knowledge"), category)
	}

	for _, category := range full.Categories {
		rubric := catalog.Rubric(category)
		require.Equal(t, category, rubric.Category)
		require.Len(t, rubric.Criteria, 3)
	}
	require.Equal(t, "General", catalog.Rubric("Small Talk").Category)

	_, err = catalog.Variant("express")
	require.ErrorIs(t, err, interview.ErrUnknownVariant)
	_, err = catalog.Type("orthodontist")
	require.ErrorIs(t, err, interview.ErrUnknownInterviewType)
}

func TestCatalog_WithDefaultVariant(t *testing.T) {
	catalog := defaultCatalog(t)
	core, err := catalog.WithDefaultVariant("core")
	require.NoError(t, err)
	seq, err := core.Variant("")
	require.NoError(t, err)
	require.Equal(t, "core", seq.Name)
	require.Equal(t, "full", catalog.DefaultVariant, "original is untouched")

	_, err = catalog.WithDefaultVariant("express")
	require.ErrorIs(t, err, interview.ErrUnknownVariant)
}

const validCatalog = `
default_variant: short
interview_types:
  - id: nurse
    position: nurse
    interviewer: a ward manager
variants:
  - id: short
    categories: [Introduction, Teamwork]
default_rubric:
  category: General
  criteria:
    - {name: Relevance, weight: 1}
`

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"valid", validCatalog, false},
		{"not yaml", "interview_types: [", true},
		{"no types", "default_variant: short\nvariants:\n  - id: short\n    categories: [Introduction]\n", true},
		{"unknown default variant", strings.Replace(validCatalog, "default_variant: short", "default_variant: long", 1), true},
		{"duplicate category", strings.Replace(validCatalog, "Teamwork]", "Introduction]", 1), true},
		{"zero weight", strings.Replace(validCatalog, "weight: 1", "weight: 0", 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := interview.ParseCatalog([]byte(tt.yaml))
			if tt.wantErr {
				require.ErrorIs(t, err, interview.ErrInvalidCatalog)
				return
			}
			require.NoError(t, err)
			seq, err := catalog.Variant("")
			require.NoError(t, err)
			require.Equal(t, []string{"Introduction", "Teamwork"}, seq.Categories)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validCatalog), 0o600))

	catalog, err := interview.LoadCatalog(path)
	require.NoError(t, err)
	require.Equal(t, []string{"nurse"}, catalog.TypeIDs())

	_, err = interview.LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	catalog, err = interview.LoadCatalog("")
	require.NoError(t, err)
	require.Equal(t, "full", catalog.DefaultVariant)
}
