package analytics

// Analyzer aggregates corpus-wide unigram, bigram and trigram frequencies
// over cleaned token sequences. It is not safe for concurrent use; run one
// per worker and Merge them, or feed a single analyzer sequentially.
type Analyzer struct {
	totalDocs   int64
	totalTokens int64
	unigrams    *Table
	bigrams     *Table
	trigrams    *Table
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		unigrams: NewTable(1),
		bigrams:  NewTable(2),
		trigrams: NewTable(3),
	}
}

// Process consumes one document's cleaned tokens. Windows never span two
// documents.
func (a *Analyzer) Process(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	a.totalDocs++
	a.totalTokens += int64(len(tokens))

	a.unigrams.Add(tokens)
	a.bigrams.Add(tokens)
	a.trigrams.Add(tokens)
}

// Merge adds other's counts into a. Counts are a commutative monoid under
// addition, so partial analyzers may be merged in any order or tree shape.
func (a *Analyzer) Merge(other *Analyzer) {
	if other == nil {
		return
	}
	a.totalDocs += other.totalDocs
	a.totalTokens += other.totalTokens
	a.unigrams.Merge(other.unigrams)
	a.bigrams.Merge(other.bigrams)
	a.trigrams.Merge(other.trigrams)
}

// Unigrams exposes the live unigram table.
func (a *Analyzer) Unigrams() *Table { return a.unigrams }

// Bigrams exposes the live bigram table.
func (a *Analyzer) Bigrams() *Table { return a.bigrams }

// Trigrams exposes the live trigram table.
func (a *Analyzer) Trigrams() *Table { return a.trigrams }

// Stats is an exported, sorted copy of the aggregated tables.
type Stats struct {
	TotalDocs   int64
	TotalTokens int64
	Unigrams    []Entry
	Bigrams     []Entry
	Trigrams    []Entry
}

// Snapshot returns the tables sorted by descending frequency, ties in
// first-seen order.
func (a *Analyzer) Snapshot() Stats {
	return Stats{
		TotalDocs:   a.totalDocs,
		TotalTokens: a.totalTokens,
		Unigrams:    a.unigrams.Sorted(),
		Bigrams:     a.bigrams.Sorted(),
		Trigrams:    a.trigrams.Sorted(),
	}
}

// Top returns at most k entries from the head of a sorted export.
func Top(entries []Entry, k int) []Entry {
	if k <= 0 || k >= len(entries) {
		return entries
	}
	return entries[:k]
}
