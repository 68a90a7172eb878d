package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wI2L/jsondiff"
)

// Snapshots persists the serialized state dump between runs. Load returns
// nil data when nothing has been saved yet.
type Snapshots interface {
	Save(data []byte) error
	Load() ([]byte, error)
	Close() error
}

// saveThrottle is the minimum spacing between two dump writes. Updates
// arriving faster than this are coalesced into the next write.
const saveThrottle = 100 * time.Millisecond

// UpdateKind tags messages sent to state subscribers.
type UpdateKind string

const (
	// KindFullState carries the whole tree, sent once on subscribe.
	KindFullState UpdateKind = "FullState"
	// KindPatch carries a JSON Patch from the previous tree to the next.
	KindPatch UpdateKind = "Patch"
)

// StateUpdate is one message delivered to a subscriber.
type StateUpdate struct {
	Kind  UpdateKind       `json:"kind"`
	State *AppStateContext `json:"state,omitempty"`
	Patch json.RawMessage  `json:"patch,omitempty"`
}

type changePair struct {
	before AppStateContext
	after  AppStateContext
}

// Store is the single writer for the application state. All mutation goes
// through Update, which diffs the tree and fans the patch out to
// subscribers. Reads get deep copies, so holding a returned context never
// races the store.
type Store struct {
	mu     sync.Mutex
	ctx    AppStateContext
	subs   map[int]chan StateUpdate
	nextID int

	changes chan changePair
	saveCh  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	snapshots Snapshots
	log       *slog.Logger
}

// NewStore loads the persisted dump (if any), runs migrations and starts
// the background diff and persistence workers.
func NewStore(snapshots Snapshots, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	ctx := DefaultContext()
	if snapshots != nil {
		data, err := snapshots.Load()
		if err != nil {
			return nil, fmt.Errorf("load state dump: %w", err)
		}
		if len(data) > 0 {
			var dump Dump
			if err := json.Unmarshal(data, &dump); err != nil {
				log.Error("state dump is corrupt, starting fresh", "error", err)
			} else {
				ctx = dump.Load()
			}
		}
	}
	RunMigrations(&ctx)

	s := &Store{
		ctx:       ctx,
		subs:      make(map[int]chan StateUpdate),
		changes:   make(chan changePair, 64),
		saveCh:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		snapshots: snapshots,
		log:       log,
	}
	s.wg.Add(2)
	go s.diffLoop()
	go s.persistLoop()
	return s, nil
}

// Context returns a deep copy of the current state tree.
func (s *Store) Context() AppStateContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Clone()
}

// Update applies fn to the state under the write lock, then schedules the
// diff notification and a persistence pass. fn must not block.
func (s *Store) Update(fn func(c *AppStateContext)) {
	s.mu.Lock()
	before := s.ctx.Clone()
	fn(&s.ctx)
	after := s.ctx.Clone()
	s.mu.Unlock()

	select {
	case s.changes <- changePair{before: before, after: after}:
	case <-s.done:
		return
	}
	select {
	case s.saveCh <- struct{}{}:
	default:
	}
}

// Subscribe registers a listener. The channel first receives the full
// current state, then a patch per update. Slow subscribers lose patches
// rather than blocking the store. The returned func unsubscribes and
// closes the channel, so ranging consumers terminate.
func (s *Store) Subscribe() (<-chan StateUpdate, func()) {
	ch := make(chan StateUpdate, 16)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	full := s.ctx.Clone()
	s.mu.Unlock()

	ch <- StateUpdate{Kind: KindFullState, State: &full}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// diffLoop serializes diff computation so subscribers see patches in the
// order the updates were applied.
func (s *Store) diffLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case pair := <-s.changes:
			s.publishDiff(pair)
		}
	}
}

func (s *Store) publishDiff(pair changePair) {
	patch, err := jsondiff.Compare(pair.before, pair.after)
	if err != nil {
		s.log.Error("failed to diff state", "error", err)
		return
	}
	if len(patch) == 0 {
		return
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		s.log.Error("failed to encode state patch", "error", err)
		return
	}

	// Sending under the lock keeps unsubscribe's close safe. The sends
	// never block, so the lock is held only briefly.
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- StateUpdate{Kind: KindPatch, Patch: raw}:
		default:
			s.log.Warn("dropping state patch for slow subscriber")
		}
	}
}

func (s *Store) persistLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.saveCh:
		}
		s.persist()
		select {
		case <-s.done:
			return
		case <-time.After(saveThrottle):
		}
	}
}

func (s *Store) persist() {
	if s.snapshots == nil {
		return
	}
	dump := DumpFromContext(s.Context())
	data, err := json.Marshal(dump)
	if err != nil {
		s.log.Error("failed to encode state dump", "error", err)
		return
	}
	if err := s.snapshots.Save(data); err != nil {
		s.log.Error("failed to save state dump", "error", err)
	}
}

// Close flushes one final dump and stops the workers.
func (s *Store) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	s.wg.Wait()
	s.persist()
	if s.snapshots != nil {
		return s.snapshots.Close()
	}
	return nil
}
