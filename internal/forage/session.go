package forage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-forage/internal/core"
)

// Death feedback intervals. Gameplay is suspended while the platform shows
// the contact feedback; the longer interval precedes session finalization.
const (
	DeathFeedback      = 1500 * time.Millisecond
	FinalDeathFeedback = 2500 * time.Millisecond
)

// ErrLevelEnded is reported when terminal conditions are evaluated for a
// level that has already ended.
var ErrLevelEnded = errors.New("forage: terminal condition evaluated on ended level")

// Mode is the top-level session mode. It gates which sub-updates run on
// each tick.
type Mode int

const (
	ModePlaying Mode = iota
	ModeFrozen
	ModeDead
	ModeLevelTransition
	ModeSessionOver
)

func (m Mode) String() string {
	switch m {
	case ModePlaying:
		return "playing"
	case ModeFrozen:
		return "frozen"
	case ModeDead:
		return "dead"
	case ModeLevelTransition:
		return "level_transition"
	case ModeSessionOver:
		return "session_over"
	default:
		return "unknown"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithSeed makes the session reproducible: hazard wandering, spawns and
// freeze jitter draw from an LCG seeded with seed, and each level's pellet
// field from an LCG seeded with seed plus the level offset.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seeded = true
		s.seed = uint64(seed)
		s.rng = NewLCG(uint64(seed))
	}
}

// WithSource replaces the session's random source.
func WithSource(src Source) Option {
	return func(s *Session) {
		s.rng = src
	}
}

// WithSessionID sets the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithPlayerName sets the participant display name.
func WithPlayerName(name string) Option {
	return func(s *Session) {
		s.playerName = name
	}
}

// StepResult reports what happened during one Step. It replaces any
// out-of-band flags: the platform reacts to these values only.
type StepResult struct {
	Mode Mode

	Collected    bool
	CollectedAt  core.Cell
	Tier         Tier
	Release      ReleaseOutcome
	Contact      bool
	FreezeBegan  bool
	LevelEnded   string // terminal reason, empty if the level continues
	SessionEnded string // session end reason, empty if the session continues
	Err          error  // consistency violation that ended the session
}

// Session is one participant run across all levels. It owns every piece of
// mutable task state; nothing is looked up ambiently.
type Session struct {
	id         string
	playerName string
	cfg        Config

	seeded bool
	seed   uint64
	rng    Source

	started bool
	mode    Mode

	level   *Level
	maze    *Maze
	pellets PelletField
	player  *Player
	hazards []*Hazard
	freeze  Freeze

	nextFreezeAt     time.Time // zero when not armed
	freezesThisLevel int
	nextHazardMoveAt time.Time
	deadUntil        time.Time

	totalScore      int
	levelsCompleted int
	lastLevelReason string
	endReason       string
	failure         error

	log EventLog
}

// NewSession validates the configuration and creates a session. A
// configuration error is returned as *ConfigError and no session is created.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:  cfg,
		mode: ModeLevelTransition,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewEntropySource()
	}
	if s.id == "" {
		s.id = uuid.NewString()[:8]
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// PlayerName returns the participant display name.
func (s *Session) PlayerName() string {
	return s.playerName
}

// Mode returns the current session mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Started reports whether Start has been called.
func (s *Session) Started() bool {
	return s.started
}

// TotalScore returns the sum of the scores of all completed scored levels.
func (s *Session) TotalScore() int {
	return s.totalScore
}

// LevelsCompleted returns the number of scored levels that reached level_end.
func (s *Session) LevelsCompleted() int {
	return s.levelsCompleted
}

// EndReason returns the session end reason, or "" while the session runs.
func (s *Session) EndReason() string {
	return s.endReason
}

// Events returns the full ordered event log. It is only available once the
// session is over.
func (s *Session) Events() ([]Event, error) {
	if s.mode != ModeSessionOver {
		return nil, ErrSessionActive
	}
	return s.log.all(), nil
}

// Start logs session_start and begins the first level (the practice level
// when configured). Calling Start twice has no effect.
func (s *Session) Start(now time.Time) {
	if s.started {
		return
	}
	s.started = true
	s.emit(now, Event{Type: EventSessionStart})

	first := 0
	if s.cfg.Practice {
		first = PracticeLevel
	}
	s.beginLevel(first, now)
}

// Abort ends a running session on participant request.
func (s *Session) Abort(now time.Time) {
	if !s.started {
		return
	}
	s.finish(now, ReasonAborted)
}

// Step advances the session by one tick. The clock is read once by the
// caller and the same now is used for every decision in this tick.
func (s *Session) Step(now time.Time, in core.InputFrame) StepResult {
	res := StepResult{}
	if !s.started {
		res.Mode = s.mode
		return res
	}

	switch s.mode {
	case ModeSessionOver:
	case ModeLevelTransition:
		if in.Has(core.ActionConfirm) {
			s.beginLevel(s.nextLevelIndex(), now)
		}
	case ModeDead:
		s.stepDead(now, &res)
	case ModeFrozen:
		if in.Has(core.ActionRelease) {
			s.release(now, &res)
		}
	case ModePlaying:
		s.stepPlaying(now, in, &res)
	}

	res.Mode = s.mode
	return res
}

// Failure returns the consistency violation that halted the session, if any.
func (s *Session) Failure() error {
	return s.failure
}

func (s *Session) stepPlaying(now time.Time, in core.InputFrame, res *StepResult) {
	// Terminal conditions first; time-up wins a same-tick tie with
	// all-pellets.
	if s.level.ended {
		s.fail(now, ErrLevelEnded, res)
		return
	}
	if s.level.Remaining(now) <= 0 {
		s.endLevel(now, ReasonTimeUp, res)
		return
	}
	if s.pellets.Len() == 0 {
		s.endLevel(now, ReasonAllPellets, res)
		return
	}

	if !s.nextFreezeAt.IsZero() && !now.Before(s.nextFreezeAt) {
		s.triggerFreeze(now, res)
		return
	}

	if move := in.Move(); move != core.ActionNone {
		if s.player.tryMove(s.maze, DirectionFor(move), now, in.Held) {
			if tier, ok := s.pellets.Collect(s.player.Cell); ok {
				s.level.Score += tier.Points()
				res.Collected = true
				res.CollectedAt = s.player.Cell
				res.Tier = tier
				s.emit(now, Event{
					Type:       EventPellet,
					LevelIndex: ptr(s.level.Index),
					LevelScore: ptr(s.level.Score),
					CellCol:    ptr(s.player.Cell.Col),
					CellRow:    ptr(s.player.Cell.Row),
					PelletTier: tier.String(),
				})
			}
			if s.checkContact(now, res) {
				return
			}
		}
	}

	if !now.Before(s.nextHazardMoveAt) {
		s.nextHazardMoveAt = now.Add(HazardMoveInterval)
		for _, h := range s.hazards {
			h.step(s.maze, s.rng)
		}
		s.checkContact(now, res)
	}
}

func (s *Session) stepDead(now time.Time, res *StepResult) {
	if now.Before(s.deadUntil) {
		return
	}
	if s.player.Lives <= 0 {
		s.finish(now, ReasonLivesExhausted)
		res.SessionEnded = ReasonLivesExhausted
		return
	}
	s.player.respawn(now)
	s.nextHazardMoveAt = now.Add(HazardMoveInterval)
	s.armFreeze(now)
	s.mode = ModePlaying
}

// checkContact applies the collision rule after a player or hazard move.
func (s *Session) checkContact(now time.Time, res *StepResult) bool {
	if s.player.Invincible(now) {
		return false
	}
	hit := contact(s.hazards, s.player)
	if len(hit) == 0 {
		return false
	}

	s.player.Lives--
	res.Contact = true
	s.emit(now, Event{
		Type:       EventDeath,
		LevelIndex: ptr(s.level.Index),
		LevelScore: ptr(s.level.Score),
		LivesLeft:  ptr(s.player.Lives),
		CellCol:    ptr(s.player.Cell.Col),
		CellRow:    ptr(s.player.Cell.Row),
		HazardID:   ptr(hit[0]),
	})

	feedback := DeathFeedback
	if s.player.Lives <= 0 {
		feedback = FinalDeathFeedback
	}
	s.deadUntil = now.Add(feedback)
	s.mode = ModeDead
	return true
}

func (s *Session) triggerFreeze(now time.Time, res *StepResult) {
	// Gates lie on hot rows but are not playable, so they count as cold.
	hot := s.maze.IsPlayable(s.player.Cell) && IsHot(s.player.Cell)
	if err := s.freeze.Begin(now, hot); err != nil {
		s.fail(now, err, res)
		return
	}
	s.freezesThisLevel++
	s.nextFreezeAt = time.Time{}
	s.player.Frozen = true
	s.mode = ModeFrozen
	res.FreezeBegan = true
	s.emit(now, Event{
		Type:        EventFreezeStart,
		LevelIndex:  ptr(s.level.Index),
		InHighValue: ptr(hot),
	})
}

func (s *Session) release(now time.Time, res *StepResult) {
	r := s.freeze.Attempt(now)
	res.Release = r.Outcome
	if r.Outcome != ReleaseAccepted {
		return
	}

	// The episode is gone once accepted, so the deduction happens once.
	s.level.deduct(r.Penalty)
	s.player.Frozen = false
	s.mode = ModePlaying
	s.nextHazardMoveAt = now.Add(HazardMoveInterval)
	s.emit(now, Event{
		Type:             EventFreezeEnd,
		LevelIndex:       ptr(s.level.Index),
		FreezeDurationMS: ptr(r.Duration.Milliseconds()),
		InHighValue:      ptr(r.Hot),
		SpaceClicks:      ptr(r.Attempts),
		PenaltySeconds:   ptr(int(r.Penalty / time.Second)),
	})
	s.armFreeze(now)
}

// armFreeze schedules the next freeze onset, unless the per-block cap has
// been reached for the current level.
func (s *Session) armFreeze(now time.Time) {
	if s.cfg.FreezesPerBlock > 0 && s.freezesThisLevel >= s.cfg.FreezesPerBlock {
		s.nextFreezeAt = time.Time{}
		return
	}
	s.nextFreezeAt = now.Add(nextFreezeDelay(s.cfg.FreezeInterval, s.rng))
}

func (s *Session) beginLevel(index int, now time.Time) {
	block := s.cfg.blockFor(index)
	s.maze = NewMaze(block)
	s.pellets = GeneratePellets(s.maze, s.pelletSource(index))

	lives := StartingLives
	if s.player != nil {
		lives = s.player.Lives
	}
	s.player, s.hazards = spawnEntities(s.maze, s.rng, lives)
	// The start cell never holds a pellet; nothing is scored for it.
	s.pellets.Collect(s.player.Cell)

	s.level = newLevel(index, block, now)
	s.freeze = Freeze{}
	s.freezesThisLevel = 0
	s.nextHazardMoveAt = now.Add(HazardMoveInterval)
	s.lastLevelReason = ""
	s.mode = ModePlaying

	s.emit(now, Event{
		Type:         EventLevelStart,
		LevelIndex:   ptr(index),
		LivesLeft:    ptr(lives),
		LeftGateRow:  ptr(block.LeftGateRow),
		RightGateRow: ptr(block.RightGateRow),
	})
	s.armFreeze(now)
}

// pelletSource returns the random source for a level's pellet field.
func (s *Session) pelletSource(index int) Source {
	if !s.seeded {
		return s.rng
	}
	return NewLCG(s.seed + uint64(index+2))
}

func (s *Session) nextLevelIndex() int {
	if s.level == nil || s.level.IsPractice() {
		return 0
	}
	return s.level.Index + 1
}

func (s *Session) isFinalLevel() bool {
	return !s.level.IsPractice() && s.level.Index >= LevelCount-1
}

func (s *Session) endLevel(now time.Time, reason string, res *StepResult) {
	s.level.ended = true
	s.lastLevelReason = reason
	if !s.level.IsPractice() {
		s.totalScore += s.level.Score
		s.levelsCompleted++
	}
	res.LevelEnded = reason
	s.emit(now, Event{
		Type:       EventLevelEnd,
		LevelIndex: ptr(s.level.Index),
		LevelScore: ptr(s.level.Score),
		TotalScore: ptr(s.totalScore),
		Reason:     reason,
		LivesLeft:  ptr(s.player.Lives),
	})

	if s.isFinalLevel() {
		s.finish(now, ReasonLevelsComplete)
		res.SessionEnded = ReasonLevelsComplete
		return
	}
	s.mode = ModeLevelTransition
}

// finish logs session_end and moves to SessionOver. It runs at most once.
func (s *Session) finish(now time.Time, reason string) {
	if s.mode == ModeSessionOver && s.endReason != "" {
		return
	}
	s.mode = ModeSessionOver
	s.endReason = reason
	if s.player != nil {
		s.player.Frozen = false
	}

	e := Event{
		Type:       EventSessionEnd,
		TotalScore: ptr(s.totalScore),
		Reason:     reason,
	}
	if s.level != nil {
		e.LevelIndex = ptr(s.level.Index)
	}
	if s.player != nil {
		e.LivesLeft = ptr(s.player.Lives)
	}
	s.emit(now, e)
}

// fail handles a consistency violation: record a diagnostic and halt the
// session instead of carrying corrupted state forward.
func (s *Session) fail(now time.Time, err error, res *StepResult) {
	s.failure = err
	e := Event{
		Type:   EventDiagnostic,
		Reason: err.Error(),
	}
	if s.level != nil {
		e.LevelIndex = ptr(s.level.Index)
	}
	s.emit(now, e)
	s.finish(now, ReasonInvariantViolation)
	res.SessionEnded = ReasonInvariantViolation
	res.Err = err
}

func (s *Session) emit(now time.Time, e Event) {
	e.Timestamp = now
	e.SessionID = s.id
	e.PlayerName = s.playerName
	s.log.append(e)
}
