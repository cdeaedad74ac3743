package handler

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

func TestLaneIsStablePerPlayer(t *testing.T) {
	bus := newLaneBus(8, 1)
	for _, user := range []int64{1, 7, 8, 123456789, -5} {
		u := textUpdate(1, user, "x")
		first := bus.lane(u)
		require.GreaterOrEqual(t, first, 0)
		require.Less(t, first, 8)
		require.Equal(t, first, bus.lane(textUpdate(2, user, "y")))
	}

	require.Equal(t, 0, bus.lane(tgbotapi.Update{UpdateID: 3}))
}
