// Package presetyaml loads the flat key/value preset files of one preset
// directory.
package presetyaml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eigerco/presetcheck/internal/literal"
	"github.com/eigerco/presetcheck/pkg/log"
)

const Extension = ".yaml"

var ErrNotMapping = errors.New("preset file is not a mapping")

// Values maps preset keys to their normalized values.
type Values map[string]uint64

// Keys returns the keys in lexical order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadDir reads every *.yaml file of dir in lexical order and merges their
// top-level pairs. Later files win on duplicate keys. Values that are not
// plain numeric scalars are skipped, malformed files are an error.
func LoadDir(dir string) (Values, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read preset dir %s: %w", dir, err)
	}

	values := Values{}
	files := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read preset file %s: %w", path, err)
		}
		if err := Decode(data, e.Name(), values); err != nil {
			return nil, err
		}
		files++
	}

	log.Extract.Debug().Str("dir", dir).Int("files", files).Int("values", len(values)).Msg("loaded preset YAML")
	return values, nil
}

// Decode parses one preset document into values. Every scalar is read as its
// raw text, so "2**6 (= 64)" and "0x01" reach the normalizer unchanged.
func Decode(data []byte, name string, values Values) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse preset file %s: %w", name, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s", ErrNotMapping, name)
	}

	mapping := doc.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.Tag != "!!str" {
			continue
		}
		key := keyNode.Value
		if strings.HasPrefix(key, "#") {
			continue
		}

		raw, ok := scalar(valueNode)
		if !ok {
			log.Extract.Debug().Str("file", name).Str("key", key).Msg("skipping non-scalar value")
			continue
		}
		v, present, err := literal.Normalize(raw, key)
		if err != nil {
			log.Extract.Debug().Str("file", name).Err(err).Msg("skipping unparseable value")
			continue
		}
		if present {
			values[key] = v
		}
	}
	return nil
}

// scalar returns the raw text of a scalar node; nil for an explicit null.
func scalar(n *yaml.Node) (any, bool) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return nil, false
	}
	if n.Tag == "!!null" {
		return nil, true
	}
	return n.Value, true
}
