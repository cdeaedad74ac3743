package sessions

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/aryehlev/codemaster/game"
)

// Store holds the games in progress, one per player. Games live in memory
// only and are lost on restart.
//
// A returned *game.Game is not safe for concurrent use; callers serialize
// access per player.
type Store struct {
	games *cache.Cache
}

// New creates a store whose games expire after ttl without activity.
// A zero ttl keeps games until they are finished.
func New(ttl time.Duration) *Store {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl
	}
	return &Store{games: cache.New(expiration, cleanup)}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Get returns the player's running game and refreshes its expiry.
func (s *Store) Get(userID int64) (*game.Game, bool) {
	v, ok := s.games.Get(key(userID))
	if !ok {
		return nil, false
	}
	g := v.(*game.Game)
	s.games.SetDefault(key(userID), g)
	return g, true
}

// Start replaces any running game of the player with a new one.
func (s *Store) Start(userID int64, secret string) *game.Game {
	g := game.New(secret)
	s.games.SetDefault(key(userID), g)
	return g
}

func (s *Store) Finish(userID int64) {
	s.games.Delete(key(userID))
}

func (s *Store) Len() int {
	return s.games.ItemCount()
}
