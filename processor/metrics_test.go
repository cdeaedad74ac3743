package processor

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/aryehlev/codemaster/models"
	"github.com/aryehlev/codemaster/serde"
)

func TestMetricsCountOneGame(t *testing.T) {
	counters := map[string]prometheus.Counter{
		"updates": updatesProcessed,
		"started": gamesStarted,
		"guesses": guessesMade,
		"invalid": invalidGuesses,
		"won":     gamesWon,
		"records": newRecords,
	}
	before := map[string]float64{}
	for name, c := range counters {
		before[name] = testutil.ToFloat64(c)
	}

	b, _ := newTestBot(t, 1, 2, 3, 4)
	w := New[models.Message, []models.Reply](b, serde.UpdateDecoder{}, serde.ReplyEncoder{})
	for _, s := range []string{"abc", "1000", "1234"} {
		_, err := w.Run(update(s))
		require.NoError(t, err)
	}

	want := map[string]float64{
		"updates": 3,
		"started": 1, // started by the first valid guess
		"guesses": 2,
		"invalid": 1,
		"won":     1,
		"records": 1,
	}
	for name, c := range counters {
		require.Equal(t, want[name], testutil.ToFloat64(c)-before[name], name)
	}
}
