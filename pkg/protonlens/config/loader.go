package config

import (
	"fmt"

	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
	"github.com/cognicore/protonlens/pkg/protonlens/lexicon"
	"github.com/cognicore/protonlens/pkg/protonlens/morph"
	"github.com/cognicore/protonlens/pkg/protonlens/sentiment"
	"github.com/cognicore/protonlens/pkg/protonlens/stoplist"
	"github.com/cognicore/protonlens/pkg/protonlens/tagger"
)

// Loader loads all configuration files and constructs components.
// Empty paths select the embedded defaults.
type Loader struct {
	StoplistPath   string
	TopicsPath     string
	ExceptionsPath string
}

// Components holds all loaded configuration components
type Components struct {
	Resources  ingest.Resources
	Stoplist   *stoplist.Manager
	Exceptions *lexicon.Lexicon
	Segmenter  *ingest.ProseSegmenter
}

// newSegmenter is swapped in tests.
var newSegmenter = ingest.NewProseSegmenter

// Load reads the resource files, loads the language models and returns the
// pipeline resources. Any failure is fatal to the caller.
func (l *Loader) Load() (*Components, error) {
	sl, err := LoadStoplist(l.StoplistPath)
	if err != nil {
		return nil, fmt.Errorf("load stoplist: %w", err)
	}
	stops := stoplist.NewManager(sl.Terms)

	topics, err := LoadTopics(l.TopicsPath)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}

	exceptions, err := l.loadExceptions()
	if err != nil {
		return nil, fmt.Errorf("load lemma exceptions: %w", err)
	}

	dict, err := morph.NewEnglishDictionary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrMissingResource, err)
	}

	tag, err := tagger.NewProse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrMissingResource, err)
	}

	seg, err := newSegmenter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrMissingResource, err)
	}

	res := ingest.Resources{
		Tokenizer:  ingest.NewTokenizer(stops, seg),
		Stemmer:    morph.NewStemmer(),
		Lemmatizer: morph.NewLemmatizer(dict, exceptions),
		Tagger:     tag,
		Scorer:     sentiment.NewVader(),
		Taxonomy:   topics.Taxonomy(),
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	return &Components{Resources: res, Stoplist: stops, Exceptions: exceptions, Segmenter: seg}, nil
}

func (l *Loader) loadExceptions() (*lexicon.Lexicon, error) {
	data, err := readResource(l.ExceptionsPath, defaultExceptions)
	if err != nil {
		return nil, err
	}
	lex, err := lexicon.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return lex, nil
}
