package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadManifest_YAML(t *testing.T) {
	path := writeManifest(t, "batch.yml", `template: letter.docx
conference: Summit 2024
official_dates: 01/01/2024-03/01/2024
participants:
  - name: Ann O'Brien
  - name: Lee
    delegate: true
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "letter.docx", m.Template)
	assert.Equal(t, "Summit 2024", m.Conference)
	assert.Equal(t, "01/01/2024-03/01/2024", m.OfficialDates)
	assert.Equal(t, []domain.Participant{{Name: "Ann O'Brien"}, {Name: "Lee", IsDelegate: true}}, m.Participants)
}

func TestLoadManifest_YAMLList(t *testing.T) {
	path := writeManifest(t, "people.yaml", "- name: Ann\n- name: Lee\n  delegate: true\n")

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Empty(t, m.Template)
	assert.Equal(t, []domain.Participant{{Name: "Ann"}, {Name: "Lee", IsDelegate: true}}, m.Participants)
}

func TestLoadManifest_YAMLUnknownField(t *testing.T) {
	path := writeManifest(t, "batch.yaml", "conferense: typo\n")

	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadManifest_CSV(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []domain.Participant
	}{
		{
			name:     "with header",
			content:  "name,delegate\nAnn,official\nLee,delegate\n",
			expected: []domain.Participant{{Name: "Ann"}, {Name: "Lee", IsDelegate: true}},
		},
		{
			name:     "without header",
			content:  "Ann\n\"Smith, Jo\",yes\nLee,true\n",
			expected: []domain.Participant{{Name: "Ann"}, {Name: "Smith, Jo", IsDelegate: true}, {Name: "Lee", IsDelegate: true}},
		},
		{
			name:     "blank names skipped",
			content:  "Ann,n\n,\n  Lee ,Y\n",
			expected: []domain.Participant{{Name: "Ann"}, {Name: "Lee", IsDelegate: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := LoadManifest(writeManifest(t, "people.csv", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.Participants)
		})
	}
}

func TestLoadManifest_CSVBadDelegate(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "people.csv", "Ann,maybe\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadManifest_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadManifest(writeManifest(t, "people.txt", "Ann\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadManifest(filepath.Join(t.TempDir(), "none.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := LoadManifest(writeManifest(t, "big.csv", strings.Repeat("a", maxManifestSize+1)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})
}
