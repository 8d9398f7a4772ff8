package reference

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Row is one level of a table in CSV form.
type Row struct {
	Level     int     `csv:"level"`
	Occupancy float64 `csv:"occupancy"`
}

// LoadYAML reads a table with its (disks, total_energy, capacity) header.
func LoadYAML(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, err
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parsing reference %s: %w", path, err)
	}
	if len(t.Occupancy) == 0 {
		return Table{}, fmt.Errorf("reference %s has no occupancy values", path)
	}
	return t, nil
}

// LoadCSV reads a level,occupancy table. Missing levels are zero. The triple
// is not part of the CSV form and is left for the caller to fill in.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	return ReadCSV(f)
}

func ReadCSV(r io.Reader) (Table, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return Table{}, fmt.Errorf("parsing reference csv: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("reference csv has no rows")
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })
	if rows[0].Level < 0 {
		return Table{}, fmt.Errorf("reference csv has negative level %d", rows[0].Level)
	}

	t := Table{Occupancy: make([]float64, rows[len(rows)-1].Level+1)}
	for _, row := range rows {
		t.Occupancy[row.Level] = row.Occupancy
	}
	t.Capacity = len(t.Occupancy) - 1
	return t, nil
}

// WriteCSV writes t in the form ReadCSV accepts.
func WriteCSV(w io.Writer, t Table) error {
	rows := make([]Row, len(t.Occupancy))
	for k, v := range t.Occupancy {
		rows[k] = Row{Level: k, Occupancy: v}
	}
	return gocsv.Marshal(rows, w)
}

// SaveYAML writes t with its triple.
func SaveYAML(path string, t Table) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
