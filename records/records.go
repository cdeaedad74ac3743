package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"

	"github.com/aryehlev/codemaster/serde"
)

const DefaultFile = "records.json"

// Store keeps every player's best (lowest) number of attempts and mirrors
// the table to a JSON file of the form {"<user id>": attempts}.
type Store struct {
	path string

	lock  sync.RWMutex
	best  map[int64]int
	codec serde.JsonEncoder[map[string]int]
}

// Load reads the records file at path. A missing file yields an empty store.
// A file that cannot be read or parsed is logged and ignored so the bot can
// still start.
func Load(path string) *Store {
	s := &Store{
		path:  path,
		best:  map[int64]int{},
		codec: serde.JsonEncoder[map[string]int]{Indent: "  "},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logrus.WithError(err).WithField("file", path).Warn("Failed to read records, starting with an empty table")
		}
		return s
	}

	best, err := parse(data)
	if err != nil {
		logrus.WithError(err).WithField("file", path).Warn("Failed to parse records, starting with an empty table")
		return s
	}
	s.best = best
	logrus.WithFields(logrus.Fields{"file": path, "players": len(best)}).Info("Loaded records")

	return s
}

// parse decodes the records table. Entries with a malformed user id or a
// value that is not a whole positive number, written as a number or a
// numeric string, are logged and skipped.
func parse(data []byte) (map[int64]int, error) {
	raw, err := serde.JsonParser[map[string]json.RawMessage]{}.Decode(data)
	if err != nil {
		return nil, err
	}

	best := make(map[int64]int, len(raw))
	for key, value := range raw {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			logrus.WithField("user", key).Warn("Skipping record with invalid user id")
			continue
		}
		attempts, err := parseAttempts(value)
		if err != nil {
			logrus.WithError(err).WithField("user", key).Warn("Skipping invalid record")
			continue
		}
		best[userID] = attempts
	}
	return best, nil
}

func parseAttempts(value json.RawMessage) (int, error) {
	number, err := serde.JsonParser[json.Number]{}.Decode(value)
	if err != nil {
		return 0, err
	}
	if n, err := number.Int64(); err == nil && n > 0 {
		return int(n), nil
	}
	f, err := number.Float64()
	if err != nil || f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, fmt.Errorf("invalid attempts %q", number)
	}
	return int(f), nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Best(userID int64) (int, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	best, ok := s.best[userID]
	return best, ok
}

// Submit records a finished game. It reports whether attempts beat the
// player's previous best; only a strictly lower count is a new record.
// The in-memory record is kept even when writing the file fails.
func (s *Store) Submit(userID int64, attempts int) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if best, ok := s.best[userID]; ok && attempts >= best {
		return false, nil
	}
	s.best[userID] = attempts

	return true, s.save()
}

// save must be called with the lock held.
func (s *Store) save() error {
	raw := make(map[string]int, len(s.best))
	for userID, attempts := range s.best {
		raw[strconv.FormatInt(userID, 10)] = attempts
	}

	data, err := s.codec.Encode(raw)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save records to %s: %w", s.path, err)
	}
	return nil
}
