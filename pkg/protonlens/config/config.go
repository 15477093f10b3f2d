// Package config loads the linguistic resources the analysis pipeline needs.
// Every resource has an embedded default; a path overrides it.
package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
)

//go:embed defaults/*.yaml
var defaults embed.FS

const (
	defaultStoplist   = "defaults/stopwords.yaml"
	defaultTopics     = "defaults/topics.yaml"
	defaultExceptions = "defaults/lemma_exceptions.yaml"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := readResource(path, defaultStoplist)
	if err != nil {
		return nil, err
	}
	return ParseStoplist(data)
}

// ParseStoplist decodes a stoplist. An empty list is invalid.
func ParseStoplist(data []byte) (*Stoplist, error) {
	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: stoplist: %v", internalerr.ErrInvalidConfig, err)
	}
	if len(sl.Terms) == 0 {
		return nil, fmt.Errorf("%w: stoplist has no terms", internalerr.ErrInvalidConfig)
	}
	return &sl, nil
}

// Topics represents the topic keyword configuration
type Topics struct {
	Topics   []ingest.Topic `yaml:"topics"`
	Fallback string         `yaml:"fallback"`
}

// LoadTopics loads topic keyword sets from a YAML file
func LoadTopics(path string) (*Topics, error) {
	data, err := readResource(path, defaultTopics)
	if err != nil {
		return nil, err
	}
	return ParseTopics(data)
}

// ParseTopics decodes topic keyword sets. Every topic needs a name and at
// least one keyword.
func ParseTopics(data []byte) (*Topics, error) {
	var tc Topics
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("%w: topics: %v", internalerr.ErrInvalidConfig, err)
	}
	if len(tc.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topics defined", internalerr.ErrInvalidConfig)
	}
	for i, topic := range tc.Topics {
		if strings.TrimSpace(topic.Name) == "" {
			return nil, fmt.Errorf("%w: topic %d has no name", internalerr.ErrInvalidConfig, i)
		}
		if len(topic.Keywords) == 0 {
			return nil, fmt.Errorf("%w: topic %q has no keywords", internalerr.ErrInvalidConfig, topic.Name)
		}
	}
	return &tc, nil
}

// Taxonomy builds a classifier from the configuration.
func (tc *Topics) Taxonomy() *ingest.Taxonomy {
	tax := ingest.NewTaxonomy()
	for _, topic := range tc.Topics {
		tax.AddTopic(topic.Name, topic.Keywords)
	}
	tax.SetFallback(tc.Fallback)
	return tax
}

// readResource reads path, or the embedded default when path is empty.
func readResource(path, fallback string) ([]byte, error) {
	if path == "" {
		data, err := defaults.ReadFile(fallback)
		if err != nil {
			return nil, fmt.Errorf("%w: embedded %s: %v", internalerr.ErrMissingResource, fallback, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrMissingResource, path, err)
	}
	return data, nil
}
