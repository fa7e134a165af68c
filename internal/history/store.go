package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/rs/zerolog"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrInvalidSessionID marks a session id that failed validation. It is
// a client error: the request is rejected before any storage access and
// no session file is created.
var ErrInvalidSessionID = errors.New("invalid session id")

// validSessionID is deliberately the only defense between a session id
// and the file path derived from it. The record path is a direct join
// of the base directory and "<id>.json", so the character class must
// stay restricted to [A-Za-z0-9_-]; widening it reopens path
// traversal.
var validSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store maps session ids to durable, bounded conversation records, one
// JSON file per session under the base directory. Access to the same
// session id is serialized with a per-session mutex, so concurrent
// chat requests for one session cannot lose turns.
type Store struct {
	baseDir string
	maxLen  int
	log     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates the base directory if needed and returns a store
// that truncates histories to maxLen turns (oldest first).
func NewStore(baseDir string, maxLen int, log zerolog.Logger) (*Store, error) {
	if maxLen < 1 {
		return nil, fmt.Errorf("max history length must be positive, got %d", maxLen)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &Store{
		baseDir: baseDir,
		maxLen:  maxLen,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// sessionLock returns the mutex guarding one session id, creating it
// on first use.
func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// ValidateSessionID rejects ids outside [A-Za-z0-9_-]+.
func ValidateSessionID(sessionID string) error {
	if !validSessionID.MatchString(sessionID) {
		return fmt.Errorf("%w: %q may only contain letters, numbers, hyphens and underscores",
			ErrInvalidSessionID, sessionID)
	}
	return nil
}

func (s *Store) recordPath(sessionID string) string {
	return filepath.Join(s.baseDir, sessionID+".json")
}

// GetHistory returns the session's turns in conversation order. The
// record is created lazily on first access; if the stored history has
// grown past the configured maximum it is truncated to the most recent
// turns and rewritten before being returned.
func (s *Store) GetHistory(sessionID string) ([]Turn, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	turns, err := s.read(sessionID)
	if err != nil {
		return nil, err
	}

	if len(turns) > s.maxLen {
		turns = turns[len(turns)-s.maxLen:]
		if err := s.write(sessionID, turns); err != nil {
			return nil, err
		}
		s.log.Debug().
			Str("session_id", sessionID).
			Int("kept", len(turns)).
			Msg("history truncated")
	}

	return turns, nil
}

// Append adds turns to the end of the session's record in arrival
// order.
func (s *Store) Append(sessionID string, turns ...Turn) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.read(sessionID)
	if err != nil {
		return err
	}
	return s.write(sessionID, append(existing, turns...))
}

// read loads the session record, creating an empty one if the session
// has never been seen. Callers must hold the session lock.
func (s *Store) read(sessionID string) ([]Turn, error) {
	path := s.recordPath(sessionID)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.write(sessionID, []Turn{}); err != nil {
			return nil, err
		}
		return []Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return turns, nil
}

// write persists the full record. Callers must hold the session lock.
func (s *Store) write(sessionID string, turns []Turn) error {
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	if err := os.WriteFile(s.recordPath(sessionID), data, 0644); err != nil {
		return fmt.Errorf("write session %s: %w", sessionID, err)
	}
	return nil
}
