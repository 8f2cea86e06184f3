package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// Speaker is a single conference speaker record. Name is a display key only;
// the catalog may contain several speakers with the same name.
type Speaker struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Bio          string `json:"bio"`
}

// Catalog holds the ordered list of speakers available for scoring. It is
// loaded once at startup and treated as read-only afterwards, so it may be
// shared across concurrent scoring calls without synchronization.
type Catalog struct {
	Speakers []*Speaker
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Speakers)
}

// FromFile loads a speaker catalog from a JSON file containing an array of
// speaker objects. Unknown fields are ignored; records stay in file order.
func FromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %q: %w", path, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing catalog file %q: %w", path, err)
	}

	var speakers []*Speaker
	cfg := &mapstructure.DecoderConfig{
		Result:  &speakers,
		TagName: "json",
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating catalog decoder: %w", err)
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding catalog records: %w", err)
	}

	return &Catalog{Speakers: speakers}, nil
}
