package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
)

// csvColumns is the header a card CSV must start with. Abilities are not
// representable in CSV and are left empty.
var csvColumns = []string{
	"id", "name", "description", "category", "rarity",
	"attack", "defense", "speed", "health", "max_level",
}

// ParseCSV reads templates from a CSV export with a csvColumns header.
func ParseCSV(r io.Reader) ([]cards.Template, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range csvColumns {
		if i >= len(header) || strings.ToLower(strings.TrimSpace(header[i])) != want {
			return nil, fmt.Errorf("header column %d must be %q", i+1, want)
		}
	}

	var templates []cards.Template
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func parseRecord(record []string) (cards.Template, error) {
	t := cards.Template{
		ID:          strings.TrimSpace(record[0]),
		Name:        strings.TrimSpace(record[1]),
		Description: strings.TrimSpace(record[2]),
		Category:    cards.Category(strings.ToLower(strings.TrimSpace(record[3]))),
		Rarity:      cards.Rarity(strings.ToLower(strings.TrimSpace(record[4]))),
	}
	ints := []struct {
		name string
		dst  *int
		raw  string
	}{
		{"attack", &t.Attack, record[5]},
		{"defense", &t.Defense, record[6]},
		{"speed", &t.Speed, record[7]},
		{"health", &t.Health, record[8]},
		{"max_level", &t.MaxLevel, record[9]},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(f.raw)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cards.Template{}, fmt.Errorf("%s: %q is not a number", f.name, raw)
		}
		*f.dst = n
	}
	return t, nil
}
