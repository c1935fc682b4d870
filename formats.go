package rectab

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFormats decodes a YAML mapping of field names to format patterns:
//
//	salary: "%.1f"
//	hired: "2006-01-02"
//
// Keys and patterns are scalars. An empty document yields an empty map.
func LoadFormats(r io.Reader) (map[string]string, error) {
	formats := map[string]string{}
	if err := yaml.NewDecoder(r).Decode(&formats); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode formats: %w", err)
	}
	return formats, nil
}

// LoadFormatsFile reads formats from the YAML file at path.
func LoadFormatsFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open formats: %w", err)
	}
	defer f.Close()
	return LoadFormats(f)
}
