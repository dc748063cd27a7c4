package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start("mcts", 10)
	c.AddEpisode()
	c.AddEpisode()
	c.AddFullPlayout()
	c.AddNode()
	c.SetCancelled(true)

	metric := c.Complete()
	require.Equal(t, "mcts", metric.Algorithm)
	require.Equal(t, 10, metric.Iterations)
	require.Equal(t, 2, metric.Episodes)
	require.Equal(t, 1, metric.FullPlayouts)
	require.Equal(t, 1, metric.Nodes)
	require.True(t, metric.Cancelled)

	c.Start("mcts", 10)
	require.Zero(t, c.Complete().Episodes, "Start should reset the counters")
	require.False(t, c.Complete().Cancelled)
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	c := p.NewCollector()
	c.Start("book", 5)
	c.AddEpisode()
	c.AddEpisode()
	c.AddFullPlayout()
	metric := c.Complete()

	require.Equal(t, 2, metric.Episodes)
	require.Equal(t, 2.0, testutil.ToFloat64(p.episodes.WithLabelValues("book")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.playouts.WithLabelValues("book")))
	require.Equal(t, 1, testutil.CollectAndCount(p.duration))

	_, err = NewPrometheus(reg)
	require.Error(t, err, "metrics cannot be registered twice")
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "arena")
	require.NoError(t, err)

	err = w.WriteGameRecords([]GameRecord{{ID: 1, Agent1: 2, Agent2: 3, GameMetric: GameMetric{Winner: 1, TotalMoves: 17}}})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(w.Dir(), "game_records.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	require.Equal(t, "id", rows[0][0])
	require.Equal(t, []string{"1", "2", "3", "0", "1"}, rows[1][:5])
	require.Equal(t, "17", rows[1][8])
}
