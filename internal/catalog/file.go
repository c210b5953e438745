package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
)

// document is the layout of a catalog file.
type document struct {
	Cards []cards.Template `yaml:"cards"`
}

// FileSource reads templates from a YAML file.
type FileSource struct {
	Path string
}

// Templates implements Source.
func (f FileSource) Templates(ctx context.Context) ([]cards.Template, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	templates, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return templates, nil
}

// Parse decodes a YAML catalog. Unknown keys are an error so typos in stat
// names do not silently become zeros.
func Parse(r io.Reader) ([]cards.Template, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return doc.Cards, nil
}
