package cli

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// maxManifestSize limits manifest input to prevent memory exhaustion.
const maxManifestSize = 1 << 20

// Manifest is a participants file. YAML manifests may also carry the
// batch details; CSV manifests carry participants only.
type Manifest struct {
	Template      string               `yaml:"template"`
	Output        string               `yaml:"output"`
	Conference    string               `yaml:"conference"`
	DelegateDates string               `yaml:"delegate_dates"`
	OfficialDates string               `yaml:"official_dates"`
	Participants  []domain.Participant `yaml:"participants"`
}

// LoadManifest reads a .yaml, .yml or .csv participants file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > maxManifestSize {
		return nil, fmt.Errorf("%s: manifest exceeds %d bytes", path, maxManifestSize)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLManifest(data)
	case ".csv":
		participants, err := parseCSVParticipants(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &Manifest{Participants: participants}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported manifest type %q", domain.ErrInvalidInput, filepath.Ext(path))
	}
}

func parseYAMLManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalWithOptions(data, &m, yaml.Strict()); err != nil {
		// A bare list of participants is accepted too.
		var list []domain.Participant
		if listErr := yaml.UnmarshalWithOptions(data, &list, yaml.Strict()); listErr != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		m = Manifest{Participants: list}
	}
	return &m, nil
}

// parseCSVParticipants reads rows of name[,delegate]. A first row whose
// first column is "name" is treated as a header.
func parseCSVParticipants(r io.Reader) ([]domain.Participant, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var participants []domain.Participant
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			continue
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		p := domain.Participant{Name: name}
		if len(record) > 1 {
			delegate, err := parseDelegate(record[1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidInput, line, err)
			}
			p.IsDelegate = delegate
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func parseDelegate(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "official", "no", "n":
		return false, nil
	case "delegate", "yes", "y":
		return true, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
