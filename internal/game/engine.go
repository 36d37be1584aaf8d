// internal/game/engine.go
//
// Session controller for one activity.
// Responsibilities:
//   - Build a fresh, shuffled Session on Init, Reset and ChangeTopic.
//   - Serialise actions behind a mutex; reject them once the session is terminal.
//   - Own the reveal/advance timer; a generation counter voids late callbacks.
//   - Emit the completion Event exactly once per terminal transition.
//
// Notes:
//   - Mode-specific actions live in memory.go, wall.go, sort.go, sequence.go,
//     quiz.go and codebreaker.go; they all run through act().
//   - Elapsed time is fed by Tick from an external 1s heartbeat.
package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
	"github.com/jgalan247/Edexcel-GCSE/internal/progress"
	"github.com/jgalan247/Edexcel-GCSE/internal/shuffle"
)

const (
	DefaultMaxAttempts  = 3
	DefaultRevealDelay  = time.Second
	DefaultAdvanceDelay = 1500 * time.Millisecond
)

// DatasetSource looks datasets up by mode and topic. *catalog.Loader and
// *catalog.Catalog both satisfy it.
type DatasetSource interface {
	Get(mode catalog.Mode, topicID string) (*catalog.Dataset, error)
}

// Options tunes a Controller. Zero values take the defaults above.
type Options struct {
	MaxAttempts  int // wall: incorrect guesses before failure
	Limit        int // cap on pairs/groups/steps/questions; 0 = all
	Shuffle      shuffle.Factory
	// TopicShuffle, when set, replaces Shuffle each time a topic is loaded,
	// so a seeded layout follows the topic rather than the first one played.
	TopicShuffle func(topicID string) shuffle.Factory
	RevealDelay  time.Duration
	AdvanceDelay time.Duration
	Scheduler    Scheduler
	Listener     Listener
	Now          func() time.Time

	Player       string
	TeacherEmail string
	Daily        string // date key for daily challenge sessions
}

func (o *Options) defaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Shuffle == nil {
		o.Shuffle = shuffle.NewRandom
	}
	if o.RevealDelay <= 0 {
		o.RevealDelay = DefaultRevealDelay
	}
	if o.AdvanceDelay <= 0 {
		o.AdvanceDelay = DefaultAdvanceDelay
	}
	if o.Scheduler == nil {
		o.Scheduler = WallClock{}
	}
	if o.Listener == nil {
		o.Listener = Listeners(nil)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Controller owns exactly one Session at a time.
type Controller struct {
	id   string
	mode catalog.Mode
	src  DatasetSource
	opts Options

	mu       sync.Mutex
	topic    string
	sess     *Session
	gen      uint64
	timer    Timer
	pending  *Event
	lastSeen time.Time

	watchMu   sync.Mutex
	watchers  map[uint64]chan Snapshot
	nextWatch uint64
}

// New returns a controller with no session; call Init before any action.
func New(src DatasetSource, mode catalog.Mode, opts Options) (*Controller, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidAction, mode)
	}
	opts.defaults()
	return &Controller{
		id:       uuid.NewString(),
		mode:     mode,
		src:      src,
		opts:     opts,
		lastSeen: opts.Now(),
		watchers: make(map[uint64]chan Snapshot),
	}, nil
}

func (c *Controller) ID() string         { return c.id }
func (c *Controller) Mode() catalog.Mode { return c.mode }

// LastActive is the time of the last user action or session change.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Init loads topicID and starts a fresh session.
func (c *Controller) Init(topicID string) (Snapshot, error) {
	return c.load(topicID)
}

// ChangeTopic discards the current session, with no carry-over, and starts a
// fresh one on topicID. On lookup failure the current session is kept.
func (c *Controller) ChangeTopic(topicID string) (Snapshot, error) {
	return c.load(topicID)
}

func (c *Controller) load(topicID string) (Snapshot, error) {
	ds, err := c.src.Get(c.mode, topicID)
	if err != nil {
		return c.Snapshot(), err
	}
	ds = ds.Limit(c.opts.Limit)

	c.mu.Lock()
	c.topic = topicID
	if c.opts.TopicShuffle != nil {
		c.opts.Shuffle = c.opts.TopicShuffle(topicID)
	}
	c.replaceLocked(ds)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Debug().Str("controller", c.id).Str("mode", string(c.mode)).Str("topic", topicID).Msg("session started")
	c.publish(snap)
	return snap, nil
}

// Reset re-creates a fresh, re-shuffled session on the same dataset. A
// seeded factory deals the same layout again.
func (c *Controller) Reset() (Snapshot, error) {
	c.mu.Lock()
	if c.sess == nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrNoSession
	}
	c.replaceLocked(c.sess.Dataset)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap, nil
}

// Snapshot returns the current projection.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Tick feeds d of elapsed time to a running session.
func (c *Controller) Tick(d time.Duration) {
	c.mu.Lock()
	s := c.sess
	if s == nil || !s.Tracker.Running() {
		c.mu.Unlock()
		return
	}
	s.Tracker.RecordElapsed(d)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) replaceLocked(ds *catalog.Dataset) {
	c.stopTimerLocked()
	c.gen++
	c.pending = nil
	c.sess = newSession(ds, c.opts.Shuffle())
	c.lastSeen = c.opts.Now()
}

func newSession(ds *catalog.Dataset, src shuffle.Source) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Dataset: ds,
		Assign:  make(map[string]string),
		Status:  StatusNotStarted,
		Tracker: progress.New(),
		answers: make(map[string]int),
		code:    make(map[string]string),
		results: make(map[string]grading.Result),
	}
	switch ds.Mode {
	case catalog.ModeQuiz:
		// Questions stay in authored order.
		for _, q := range ds.Questions {
			s.Presented = append(s.Presented, q.ID)
		}
	case catalog.ModeLogic:
		ids := make([]string, len(ds.Questions))
		for i, q := range ds.Questions {
			ids[i] = q.ID
		}
		s.Presented = shuffle.Shuffle(src, ids)
	case catalog.ModeCodeBreaker:
		for _, ch := range ds.Challenges {
			s.Presented = append(s.Presented, ch.ID)
		}
	default:
		s.Presented = shuffle.Shuffle(src, ds.ItemIDs())
	}
	if ds.Mode == catalog.ModeSequence {
		s.order = slices.Clone(s.Presented)
	}
	return s
}

// act runs fn against the live session under the lock, then emits any
// completion event and publishes the new snapshot.
func (c *Controller) act(action string, fn func(*Session) error, modes ...catalog.Mode) (Snapshot, error) {
	c.mu.Lock()
	var err error
	switch s := c.sess; {
	case !slices.Contains(modes, c.mode):
		err = c.invalid(action, "", "not supported by "+string(c.mode))
	case s == nil:
		err = ErrNoSession
	case s.Status.Terminal():
		err = ErrSessionFinished
	default:
		c.lastSeen = c.opts.Now()
		err = fn(s)
	}
	snap := c.snapshotLocked()
	ev := c.pending
	c.pending = nil
	c.mu.Unlock()

	if ev != nil {
		c.opts.Listener.SessionFinished(*ev)
	}
	c.publish(snap)
	return snap, err
}

// invalid logs loudly and returns an ErrInvalidAction.
func (c *Controller) invalid(action, id, why string) error {
	log.Error().
		Str("controller", c.id).
		Str("mode", string(c.mode)).
		Str("topic", c.topic).
		Str("action", action).
		Str("id", id).
		Msg("invalid action: " + why)
	if id == "" {
		return fmt.Errorf("%w: %s: %s", ErrInvalidAction, action, why)
	}
	return fmt.Errorf("%w: %s %q: %s", ErrInvalidAction, action, id, why)
}

// begin moves not_started → in_progress on the first real interaction.
func (c *Controller) begin(s *Session) {
	if s.Status != StatusNotStarted {
		return
	}
	s.Status = StatusInProgress
	s.StartedAt = c.opts.Now()
	s.Tracker.Start()
}

// finishLocked moves s to a terminal status and queues the completion event.
func (c *Controller) finishLocked(s *Session, status Status) {
	c.stopTimerLocked()
	s.Status = status
	s.Tracker.Stop()
	s.FinishedAt = c.opts.Now()

	score, total := c.scoreLocked(s)
	prog := s.Tracker.Snapshot()
	ev := &Event{
		SessionID:    s.ID,
		Mode:         c.mode,
		Topic:        c.topic,
		Title:        s.Dataset.Title,
		Player:       c.opts.Player,
		TeacherEmail: c.opts.TeacherEmail,
		Status:       status,
		Score:        score,
		Total:        total,
		Percent:      grading.Percentage(score, total),
		Elapsed:      prog.Elapsed,
		ElapsedMs:    prog.ElapsedMs,
		Attempts:     prog.Attempts,
		Daily:        c.opts.Daily,
		FinishedAt:   s.FinishedAt,
		Results:      c.resultsLocked(s),
	}
	if c.mode.IsQuiz() {
		ev.Questions = questionViews(s)
	}
	c.pending = ev

	log.Info().
		Str("session", s.ID).
		Str("mode", string(c.mode)).
		Str("topic", c.topic).
		Str("status", string(status)).
		Int("score", score).
		Int("total", total).
		Dur("elapsed", prog.Elapsed).
		Msg("session finished")
}

// scheduleLocked arms the controller's single pending timer. The callback is
// dropped if the session was replaced or finished meanwhile.
func (c *Controller) scheduleLocked(d time.Duration, fn func(*Session)) {
	c.stopTimerLocked()
	gen := c.gen
	c.timer = c.opts.Scheduler.AfterFunc(d, func() { c.fire(gen, fn) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) fire(gen uint64, fn func(*Session)) {
	c.mu.Lock()
	s := c.sess
	if gen != c.gen || s == nil || s.Status.Terminal() {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	fn(s)
	snap := c.snapshotLocked()
	ev := c.pending
	c.pending = nil
	c.mu.Unlock()

	if ev != nil {
		c.opts.Listener.SessionFinished(*ev)
	}
	c.publish(snap)
}

// scoreLocked returns (resolved units, total units) for the session's mode.
func (c *Controller) scoreLocked(s *Session) (int, int) {
	correct := s.Tracker.Snapshot().CorrectCount
	switch c.mode {
	case catalog.ModeMemory:
		return correct / 2, len(s.Dataset.Items) / 2
	case catalog.ModeWall:
		return len(s.solved), len(s.Dataset.Groups)
	case catalog.ModeQuiz, catalog.ModeLogic:
		return correct, len(s.Dataset.Questions)
	case catalog.ModeCodeBreaker:
		return correct, len(s.Dataset.Challenges)
	default:
		return correct, len(s.Dataset.Items)
	}
}

// resultsLocked returns sticky per-item verdicts in display order.
func (c *Controller) resultsLocked(s *Session) []grading.Result {
	ids := s.Presented
	if c.mode == catalog.ModeSequence {
		ids = s.order
	}
	var out []grading.Result
	for _, id := range ids {
		if r, ok := s.results[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// record stores a grading pass as the latest verdicts.
func record(s *Session, res []grading.Result) {
	s.last = res
	for _, r := range res {
		s.results[r.ItemID] = r
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:     c.id,
		Mode:   c.mode,
		Topic:  c.topic,
		Daily:  c.opts.Daily,
		Player: c.opts.Player,
		Status: StatusNotStarted,
	}
	s := c.sess
	if s == nil {
		return snap
	}
	snap.SessionID = s.ID
	snap.Title = s.Dataset.Title
	snap.Status = s.Status
	snap.Progress = s.Tracker.Snapshot()
	snap.Score, snap.Total = c.scoreLocked(s)
	snap.Percent = grading.Percentage(snap.Score, snap.Total)
	if s.Status.Terminal() {
		snap.Grade, snap.Message = grading.Band(snap.Percent)
	}
	snap.AttemptsUsed = s.attemptsUsed
	snap.Results = slices.Clone(s.last)

	switch c.mode {
	case catalog.ModeMemory:
		memoryView(s, &snap)
	case catalog.ModeWall:
		snap.AttemptsMax = c.opts.MaxAttempts
		wallView(s, &snap)
	case catalog.ModeSort:
		sortView(s, &snap)
	case catalog.ModeSequence:
		sequenceView(s, &snap)
	case catalog.ModeQuiz, catalog.ModeLogic:
		snap.Questions = questionViews(s)
		snap.Current = s.current
	case catalog.ModeCodeBreaker:
		challengeView(s, &snap)
	}
	return snap
}

func resultPtr(s *Session, id string) *grading.Result {
	if r, ok := s.results[id]; ok {
		return &r
	}
	return nil
}
