package morph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/protonlens/pkg/protonlens/lexicon"
)

type fakeDict map[string]bool

func (d fakeDict) InDict(word string) bool { return d[word] }

func TestStemmerStripsAffixes(t *testing.T) {
	s := NewStemmer()

	assert.Equal(t, "run", s.Stem("running"))
	assert.Equal(t, "crash", s.Stem("crashes"))
	assert.Equal(t, "game", s.Stem("games"))
}

func TestStemAllPreservesOrder(t *testing.T) {
	s := NewStemmer()
	in := []string{"games", "running", "games"}

	out := s.StemAll(in)

	require.Len(t, out, len(in))
	assert.Equal(t, out[0], out[2])
	assert.Equal(t, "run", out[1])
}

func TestLemmatizeNounRules(t *testing.T) {
	dict := fakeDict{
		"crash": true, "crashes": true,
		"run": true, "glass": true,
		"library": true, "leaf": true,
		"box": true, "man": true,
	}
	l := NewLemmatizer(dict, nil)

	tests := []struct {
		in, want string
	}{
		{"crashes", "crash"},
		{"runs", "run"},
		{"glasses", "glass"},
		{"libraries", "library"},
		{"leaves", "leaf"},
		{"boxes", "box"},
		{"firemen", "fireman"},
		{"fps", "fps"},
		{"crash", "crash"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if tt.in == "firemen" {
				dict["fireman"] = true
			}
			assert.Equal(t, tt.want, l.Lemmatize(tt.in))
		})
	}
}

func TestLemmatizePrefersShortestCandidate(t *testing.T) {
	// "buses" -> "buse" (s), "bus" (ses); both known, shortest wins.
	l := NewLemmatizer(fakeDict{"buse": true, "bus": true}, nil)
	assert.Equal(t, "bus", l.Lemmatize("buses"))
}

func TestLemmatizeExceptions(t *testing.T) {
	lex := lexicon.New()
	lex.AddGroup("mouse", []string{"mice"})
	lex.AddGroup("axis", []string{"axes"})
	lex.AddGroup("axe", []string{"axes"})

	// The dictionary knows the inflected form too; exceptions still win.
	l := NewLemmatizer(fakeDict{"mice": true, "axes": true}, lex)

	assert.Equal(t, "mouse", l.Lemmatize("mice"))
	assert.Equal(t, "axe", l.Lemmatize("axes"))
}

func TestLemmatizeAllParallelToInput(t *testing.T) {
	l := NewLemmatizer(fakeDict{"bug": true}, nil)
	in := strings.Fields("bugs everywhere bugs")

	out := l.LemmatizeAll(in)

	assert.Equal(t, []string{"bug", "everywhere", "bug"}, out)
}
