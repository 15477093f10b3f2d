package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/protonlens/pkg/protonlens"
	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
)

func TestRecorderObserver(t *testing.T) {
	r := New()

	r.NoteAnalyzed()
	r.NoteAnalyzed()
	r.ReportSkipped("blank_notes")
	r.ReportSkipped("nil_report")
	r.ReportSkipped("blank_notes")
	r.BatchFinished(2*time.Second, &protonlens.Result{
		Unigrams: make([]analytics.Entry, 5),
		Bigrams:  make([]analytics.Entry, 4),
		Trigrams: make([]analytics.Entry, 3),
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.NotesAnalyzed))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ReportsSkipped.WithLabelValues("blank_notes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ReportsSkipped.WithLabelValues("nil_report")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.TableEntries.WithLabelValues("bigram")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.BatchDuration))
}

func TestObserveRequest(t *testing.T) {
	r := New()
	r.ObserveRequest("reports", "200", 10*time.Millisecond)
	r.ObserveRequest("reports", "503", 10*time.Millisecond)
	r.ObserveRequest("games", "error", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.APIRequests.WithLabelValues("reports", "503")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.APIRequests))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.NoteAnalyzed()

	path := filepath.Join(t.TempDir(), "protonlens.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "protonlens_notes_analyzed_total 1"), string(data))
}
