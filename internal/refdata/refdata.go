// Package refdata reads the bulk audio-features reference file consumed by
// the merge stage.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"chartmood/internal/core"
)

// Column names expected in the reference file header.
const (
	colTitle            = "track_name"
	colArtist           = "track_artist"
	colPopularity       = "track_popularity"
	colValence          = "valence"
	colEnergy           = "energy"
	colDanceability     = "danceability"
	colTempo            = "tempo"
	colAcousticness     = "acousticness"
	colInstrumentalness = "instrumentalness"
)

// LoadFile reads reference rows from a CSV file on disk.
func LoadFile(path string) ([]core.ReferenceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file %s: %w", path, err)
	}
	return rows, nil
}

// Read parses reference rows from CSV data. Column positions come from the
// header; a missing title or artist column is a setup failure, while a
// malformed numeric cell just becomes a null field.
func Read(r io.Reader) ([]core.ReferenceRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read reference header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	if _, ok := index[colTitle]; !ok {
		return nil, fmt.Errorf("reference file is missing the %q column", colTitle)
	}
	if _, ok := index[colArtist]; !ok {
		return nil, fmt.Errorf("reference file is missing the %q column", colArtist)
	}

	var rows []core.ReferenceRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read reference record: %w", err)
		}

		row := core.ReferenceRow{
			Title:            cell(record, index, colTitle),
			Artist:           cell(record, index, colArtist),
			Popularity:       numericCell(record, index, colPopularity),
			Valence:          numericCell(record, index, colValence),
			Energy:           numericCell(record, index, colEnergy),
			Danceability:     numericCell(record, index, colDanceability),
			Tempo:            numericCell(record, index, colTempo),
			Acousticness:     numericCell(record, index, colAcousticness),
			Instrumentalness: numericCell(record, index, colInstrumentalness),
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func cell(record []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func numericCell(record []string, index map[string]int, column string) *float64 {
	raw := cell(record, index, column)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
