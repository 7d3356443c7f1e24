package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Extensions lists the scenario file extensions, in the order they are tried.
var Extensions = []string{".yaml", ".yml", ".toml"}

// Parse decodes a scenario from data. The format is chosen by the
// extension of name. Data that is not valid UTF-8 is decoded as Shift-JIS.
// The scenario is validated before it is returned.
func Parse(name string, data []byte) (*Scenario, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var s Scenario
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(text))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && err != io.EOF {
			return nil, fmt.Errorf("parse error in %s: %w", name, err)
		}
	case ".toml":
		md, err := toml.Decode(string(text), &s)
		if err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", name, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse error in %s: unknown key %s", name, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("%s: unsupported scenario format %q", name, filepath.Ext(name))
	}

	s.Source = name
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and parses the scenario file at path.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(path, data)
}

// decodeText returns data as UTF-8, converting from Shift-JIS when data is
// not already valid UTF-8.
func decodeText(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}
	return out, nil
}
