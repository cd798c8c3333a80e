package forage

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/tui-forage/internal/core"
)

func testConfig() Config {
	return Config{
		Blocks:         []Block{{LeftGateRow: 1, RightGateRow: 12}, {LeftGateRow: 6, RightGateRow: 7}},
		FreezeInterval: 30 * time.Second,
		CellSize:       40,
	}
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(cfg, WithSeed(42), WithSessionID("abc12345"), WithPlayerName("tester"))
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	return s
}

func idle() core.InputFrame {
	return core.NewInputFrame()
}

func press(a core.Action) core.InputFrame {
	f := core.NewInputFrame()
	f.Set(a)
	return f
}

// quiet removes hazards and disarms the freeze timer so a test drives every
// transition itself.
func quiet(s *Session) {
	s.hazards = nil
	s.nextFreezeAt = time.Time{}
}

func clearPellets(s *Session) {
	for _, c := range s.pellets.Cells() {
		s.pellets.Collect(c)
	}
}

func eventsOfType(s *Session, typ EventType) []Event {
	var out []Event
	for _, e := range s.log.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func lastEvent(t *testing.T, s *Session) Event {
	t.Helper()
	e, ok := s.log.Last()
	if !ok {
		t.Fatal("event log is empty")
	}
	return e
}

func TestStartLogsSessionAndFirstLevel(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)

	if s.Mode() != ModePlaying {
		t.Errorf("Mode() = %v, expected playing", s.Mode())
	}
	if s.log.Len() != 2 {
		t.Fatalf("log length = %d, expected 2", s.log.Len())
	}
	if s.log.events[0].Type != EventSessionStart {
		t.Errorf("first event = %s, expected session_start", s.log.events[0].Type)
	}
	ls := s.log.events[1]
	if ls.Type != EventLevelStart || *ls.LevelIndex != 0 || *ls.LivesLeft != StartingLives {
		t.Errorf("second event = %+v, expected level_start for level 0", ls)
	}
	if *ls.LeftGateRow != 1 || *ls.RightGateRow != 12 {
		t.Errorf("level_start gates = %d/%d, expected 1/12", *ls.LeftGateRow, *ls.RightGateRow)
	}
	if ls.SessionID != "abc12345" || ls.PlayerName != "tester" {
		t.Errorf("event identity = %q/%q, expected abc12345/tester", ls.SessionID, ls.PlayerName)
	}
	if s.pellets.Len() == 0 {
		t.Error("level should start with pellets")
	}
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.FreezeInterval = 0

	s, err := NewSession(cfg)
	if s != nil {
		t.Error("no session should be created for an invalid config")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "teleport_interval_sec" {
		t.Errorf("NewSession() error = %v, expected teleport_interval_sec config error", err)
	}
}

func TestGeneratedSessionID(t *testing.T) {
	s, err := NewSession(testConfig())
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	if len(s.ID()) != 8 {
		t.Errorf("ID() = %q, expected 8 characters", s.ID())
	}
}

func TestStepBeforeStartIsNoop(t *testing.T) {
	s := newTestSession(t, testConfig())
	res := s.Step(t0, press(core.ActionConfirm))

	if s.Started() || s.log.Len() != 0 {
		t.Error("Step before Start should not change the session")
	}
	if res.LevelEnded != "" || res.SessionEnded != "" {
		t.Errorf("Step() = %+v, expected no transitions", res)
	}
}

func TestEventsUnavailableWhileActive(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)

	if _, err := s.Events(); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("Events() error = %v, expected ErrSessionActive", err)
	}

	s.Abort(t0.Add(time.Second))
	events, err := s.Events()
	if err != nil {
		t.Fatalf("Events() error after abort: %v", err)
	}
	last := events[len(events)-1]
	if last.Type != EventSessionEnd || last.Reason != ReasonAborted {
		t.Errorf("last event = %s/%s, expected session_end/aborted", last.Type, last.Reason)
	}
	if s.EndReason() != ReasonAborted {
		t.Errorf("EndReason() = %q, expected aborted", s.EndReason())
	}
}

func TestCollectPelletScores(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	s.player.Cell = core.C(1, 1)
	s.pellets.pellets[core.C(2, 1)] = TierHigh

	res := s.Step(t0.Add(time.Second), press(core.ActionRight))

	if !res.Collected || res.Tier != TierHigh {
		t.Fatalf("Step() = %+v, expected a high pellet collected", res)
	}
	if res.CollectedAt != core.C(2, 1) {
		t.Errorf("CollectedAt = %v, expected (2,1)", res.CollectedAt)
	}
	if s.level.Score != PointsHigh {
		t.Errorf("level score = %d, expected %d", s.level.Score, PointsHigh)
	}
	if _, ok := s.pellets.At(core.C(2, 1)); ok {
		t.Error("collected pellet should be removed")
	}
	if s.TotalScore() != 0 {
		t.Errorf("TotalScore() = %d, expected 0 until the level ends", s.TotalScore())
	}

	e := lastEvent(t, s)
	if e.Type != EventPellet || e.PelletTier != "high" {
		t.Fatalf("last event = %s/%q, expected pellet/high", e.Type, e.PelletTier)
	}
	if *e.CellCol != 2 || *e.CellRow != 1 || *e.LevelScore != PointsHigh || *e.LevelIndex != 0 {
		t.Errorf("pellet event = %+v, expected cell (2,1) and running score %d", e, PointsHigh)
	}
	if !e.Timestamp.Equal(t0.Add(time.Second)) {
		t.Errorf("pellet timestamp = %v, expected collection tick", e.Timestamp)
	}
}

func TestStartCellHasNoPellet(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		s, err := NewSession(testConfig(), WithSeed(seed))
		if err != nil {
			t.Fatalf("NewSession() error: %v", err)
		}
		s.Start(t0)
		if _, ok := s.pellets.At(s.player.Cell); ok {
			t.Errorf("seed %d: start cell %v holds a pellet", seed, s.player.Cell)
		}
		if s.level.Score != 0 || len(eventsOfType(s, EventPellet)) != 0 {
			t.Errorf("seed %d: start cell pellet should not be scored", seed)
		}
	}
}

func TestFreezeOnGateUsesBaseWait(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	gate := core.C(0, 1) // left gate of block 0, on a hot row
	s.player.Cell = gate

	onset := t0.Add(5 * time.Second)
	s.nextFreezeAt = onset
	if res := s.Step(onset, idle()); !res.FreezeBegan {
		t.Fatalf("Step() = %+v, expected freeze onset", res)
	}

	if ep := s.freeze.Episode(); ep == nil || ep.BaseWait != BaseWait || ep.Hot {
		t.Errorf("episode = %+v, expected cold %v wait on a gate", ep, BaseWait)
	}
	if fs := lastEvent(t, s); *fs.InHighValue {
		t.Error("freeze_start on a gate should not be in_high_value")
	}
}

func TestAllPelletsEndsLevel(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	s.level.Score = 37
	clearPellets(s)

	res := s.Step(t0.Add(10*time.Second), idle())

	if res.LevelEnded != ReasonAllPellets {
		t.Fatalf("LevelEnded = %q, expected all_pellets", res.LevelEnded)
	}
	if s.Mode() != ModeLevelTransition {
		t.Errorf("Mode() = %v, expected level_transition", s.Mode())
	}
	e := lastEvent(t, s)
	if e.Type != EventLevelEnd || e.Reason != ReasonAllPellets {
		t.Errorf("last event = %s/%s, expected level_end/all_pellets", e.Type, e.Reason)
	}
	if *e.LevelScore != 37 || *e.TotalScore != 37 {
		t.Errorf("level_end scores = %d/%d, expected 37/37", *e.LevelScore, *e.TotalScore)
	}
}

func TestTimeUpEndsLevel(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)

	res := s.Step(t0.Add(TimeBudget(0)), idle())
	if res.LevelEnded != ReasonTimeUp {
		t.Errorf("LevelEnded = %q, expected time_up", res.LevelEnded)
	}
}

func TestTimeUpWinsTieWithAllPellets(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	clearPellets(s)

	res := s.Step(s.level.EndAt, idle())
	if res.LevelEnded != ReasonTimeUp {
		t.Errorf("LevelEnded = %q, expected time_up on a same-tick tie", res.LevelEnded)
	}
}

func TestFreezePenaltyDeductedOnce(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	s.player.Cell = core.C(5, 5) // cold
	endAt := s.level.EndAt

	onset := t0.Add(10 * time.Second)
	s.nextFreezeAt = onset
	res := s.Step(onset, idle())
	if !res.FreezeBegan || s.Mode() != ModeFrozen {
		t.Fatalf("Step() = %+v, expected freeze onset", res)
	}
	fs := lastEvent(t, s)
	if fs.Type != EventFreezeStart || *fs.InHighValue {
		t.Errorf("freeze_start = %+v, expected cold onset", fs)
	}

	// Movement is ignored while frozen.
	cell := s.player.Cell
	s.Step(onset.Add(500*time.Millisecond), press(core.ActionUp))
	if s.player.Cell != cell {
		t.Error("frozen player moved")
	}

	// Two early presses: required wait grows 3s -> 5s -> 7s.
	if r := s.Step(onset.Add(time.Second), press(core.ActionRelease)); r.Release != ReleasePenalized {
		t.Fatalf("first release = %v, expected penalized", r.Release)
	}
	if r := s.Step(onset.Add(2*time.Second), press(core.ActionRelease)); r.Release != ReleasePenalized {
		t.Fatalf("second release = %v, expected penalized", r.Release)
	}
	if s.level.EndAt != endAt {
		t.Error("penalty should not be deducted before the release is accepted")
	}

	res = s.Step(onset.Add(7*time.Second), press(core.ActionRelease))
	if res.Release != ReleaseAccepted || s.Mode() != ModePlaying {
		t.Fatalf("Step() = %+v, expected accepted release", res)
	}
	if s.level.EndAt != endAt.Add(-4*time.Second) {
		t.Errorf("EndAt = %v, expected %v", s.level.EndAt, endAt.Add(-4*time.Second))
	}

	fe := lastEvent(t, s)
	if fe.Type != EventFreezeEnd {
		t.Fatalf("last event = %s, expected freeze_end", fe.Type)
	}
	if *fe.FreezeDurationMS != 7000 {
		t.Errorf("freeze_duration_ms = %d, expected 7000", *fe.FreezeDurationMS)
	}
	if *fe.SpaceClicks != 3 {
		t.Errorf("space_clicks_during_freeze = %d, expected 3", *fe.SpaceClicks)
	}
	if *fe.PenaltySeconds != 4 {
		t.Errorf("penalty_seconds = %d, expected 4", *fe.PenaltySeconds)
	}

	// Further presses do not touch the budget again.
	s.Step(onset.Add(8*time.Second), press(core.ActionRelease))
	if s.level.EndAt != endAt.Add(-4*time.Second) {
		t.Error("penalty deducted more than once")
	}
}

func TestHotFreezeWaitsLonger(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	s.player.Cell = core.C(2, 1) // top stripe

	onset := t0.Add(5 * time.Second)
	s.nextFreezeAt = onset
	s.Step(onset, idle())

	if r := s.Step(onset.Add(5900*time.Millisecond), press(core.ActionRelease)); r.Release != ReleasePenalized {
		t.Fatalf("release at 5.9s = %v, expected penalized", r.Release)
	}
	if r := s.Step(onset.Add(8*time.Second), press(core.ActionRelease)); r.Release != ReleaseAccepted {
		t.Fatalf("release at 8s = %v, expected accepted", r.Release)
	}

	fe := lastEvent(t, s)
	if !*fe.InHighValue || *fe.PenaltySeconds != 2 {
		t.Errorf("freeze_end = hot %v penalty %d, expected hot with 2s", *fe.InHighValue, *fe.PenaltySeconds)
	}
}

func TestFreezeCapPerLevel(t *testing.T) {
	cfg := testConfig()
	cfg.FreezesPerBlock = 1
	s := newTestSession(t, cfg)
	s.Start(t0)
	s.hazards = nil

	onset := s.nextFreezeAt
	if onset.IsZero() {
		t.Fatal("first freeze should be armed")
	}
	s.Step(onset, idle())
	if s.Mode() != ModeFrozen {
		t.Fatalf("Mode() = %v, expected frozen", s.Mode())
	}
	s.Step(onset.Add(HotWait), press(core.ActionRelease))
	if s.Mode() != ModePlaying {
		t.Fatalf("Mode() = %v, expected playing", s.Mode())
	}
	if !s.nextFreezeAt.IsZero() {
		t.Error("no further freeze should be armed once the cap is reached")
	}
}

func TestUnlimitedFreezesRearm(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	s.hazards = nil

	onset := s.nextFreezeAt
	s.Step(onset, idle())
	s.Step(onset.Add(HotWait), press(core.ActionRelease))

	if s.nextFreezeAt.IsZero() {
		t.Error("next freeze should be armed when freezes are unlimited")
	}
}

func TestContactAndInvincibility(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	s.player.Cell = core.C(1, 1)
	s.hazards = []*Hazard{{ID: 0, Cell: core.C(2, 1)}}

	hit := t0.Add(100 * time.Millisecond)
	res := s.Step(hit, press(core.ActionRight))
	if !res.Contact || s.Mode() != ModeDead {
		t.Fatalf("Step() = %+v, expected contact", res)
	}
	if s.player.Lives != StartingLives-1 {
		t.Errorf("Lives = %d, expected %d", s.player.Lives, StartingLives-1)
	}
	death := lastEvent(t, s)
	if death.Type != EventDeath || *death.LivesLeft != StartingLives-1 {
		t.Errorf("last event = %+v, expected death", death)
	}
	if *death.HazardID != 0 || *death.CellCol != 2 || *death.CellRow != 1 {
		t.Errorf("death = hazard %d at (%d,%d), expected hazard 0 at (2,1)",
			*death.HazardID, *death.CellCol, *death.CellRow)
	}

	s.Step(hit.Add(time.Second), idle())
	if s.Mode() != ModeDead {
		t.Fatal("death feedback should still be showing")
	}

	back := hit.Add(DeathFeedback)
	s.Step(back, idle())
	if s.Mode() != ModePlaying {
		t.Fatalf("Mode() = %v, expected playing after respawn", s.Mode())
	}
	if s.player.Cell != s.player.start {
		t.Errorf("Cell = %v, expected respawn at %v", s.player.Cell, s.player.start)
	}

	// Walking into a hazard while invincible costs nothing.
	quiet(s)
	s.player.Cell = core.C(1, 1)
	s.hazards = []*Hazard{{ID: 0, Cell: core.C(2, 1)}}
	res = s.Step(back.Add(100*time.Millisecond), press(core.ActionRight))
	if res.Contact || s.player.Lives != StartingLives-1 {
		t.Errorf("contact while invincible: Contact=%v Lives=%d", res.Contact, s.player.Lives)
	}
}

func TestLivesExhaustedEndsSession(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)

	now := t0
	var res StepResult
	for i := 0; i < StartingLives; i++ {
		quiet(s)
		s.player.Cell = core.C(1, 1)
		s.player.InvincibleUntil = time.Time{}
		s.hazards = []*Hazard{{ID: 0, Cell: core.C(2, 1)}}

		now = now.Add(100 * time.Millisecond)
		if r := s.Step(now, press(core.ActionRight)); !r.Contact {
			t.Fatalf("death %d: expected contact", i+1)
		}
		now = now.Add(FinalDeathFeedback)
		res = s.Step(now, idle())
	}

	if res.SessionEnded != ReasonLivesExhausted || s.Mode() != ModeSessionOver {
		t.Fatalf("Step() = %+v, expected session end by lives", res)
	}
	if n := len(eventsOfType(s, EventLevelEnd)); n != 0 {
		t.Errorf("level_end events = %d, expected none", n)
	}
	if n := len(eventsOfType(s, EventDeath)); n != StartingLives {
		t.Errorf("death events = %d, expected %d", n, StartingLives)
	}
	end := lastEvent(t, s)
	if end.Type != EventSessionEnd || end.Reason != ReasonLivesExhausted || *end.LivesLeft != 0 {
		t.Errorf("last event = %+v, expected session_end/lives_exhausted", end)
	}
}

func TestTotalScoreSumsLevels(t *testing.T) {
	cfg := testConfig()
	s := newTestSession(t, cfg)
	s.Start(t0)

	now := t0
	for i := 0; i < LevelCount; i++ {
		if s.level.Index != i {
			t.Fatalf("level index = %d, expected %d", s.level.Index, i)
		}
		if s.level.Budget != TimeBudget(i) {
			t.Errorf("level %d budget = %v, expected %v", i, s.level.Budget, TimeBudget(i))
		}
		if s.level.Block != cfg.Blocks[i%len(cfg.Blocks)] {
			t.Errorf("level %d block = %v, expected %v", i, s.level.Block, cfg.Blocks[i%len(cfg.Blocks)])
		}

		quiet(s)
		s.level.Score = (i + 1) * 10
		clearPellets(s)
		now = now.Add(time.Second)
		s.Step(now, idle())

		if i < LevelCount-1 {
			if s.Mode() != ModeLevelTransition {
				t.Fatalf("after level %d: Mode() = %v, expected level_transition", i, s.Mode())
			}
			now = now.Add(time.Second)
			s.Step(now, press(core.ActionConfirm))
		}
	}

	if s.Mode() != ModeSessionOver || s.EndReason() != ReasonLevelsComplete {
		t.Fatalf("Mode()/EndReason() = %v/%q, expected session_over/levels_complete", s.Mode(), s.EndReason())
	}
	if s.TotalScore() != 150 {
		t.Errorf("TotalScore() = %d, expected 150", s.TotalScore())
	}
	if s.LevelsCompleted() != LevelCount {
		t.Errorf("LevelsCompleted() = %d, expected %d", s.LevelsCompleted(), LevelCount)
	}

	sum := 0
	for _, e := range eventsOfType(s, EventLevelEnd) {
		sum += *e.LevelScore
	}
	end := lastEvent(t, s)
	if *end.TotalScore != sum {
		t.Errorf("session_end total = %d, expected sum of level scores %d", *end.TotalScore, sum)
	}
}

func TestLivesPersistAcrossLevels(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	s.player.Lives = 1
	clearPellets(s)

	s.Step(t0.Add(time.Second), idle())
	s.Step(t0.Add(2*time.Second), press(core.ActionConfirm))

	if s.player.Lives != 1 {
		t.Errorf("Lives = %d, expected 1 carried into the next level", s.player.Lives)
	}
}

func TestPracticeLevelNotScored(t *testing.T) {
	cfg := testConfig()
	cfg.Practice = true
	s := newTestSession(t, cfg)
	s.Start(t0)

	if !s.level.IsPractice() {
		t.Fatalf("first level index = %d, expected practice", s.level.Index)
	}
	quiet(s)
	s.level.Score = 99
	clearPellets(s)
	s.Step(t0.Add(time.Second), idle())

	if s.TotalScore() != 0 {
		t.Errorf("TotalScore() = %d, expected practice score excluded", s.TotalScore())
	}
	if s.Mode() != ModeLevelTransition {
		t.Fatalf("Mode() = %v, expected level_transition", s.Mode())
	}

	s.Step(t0.Add(2*time.Second), press(core.ActionConfirm))
	if s.level.Index != 0 || s.level.Budget != TimeBudget(0) {
		t.Errorf("after practice: level %d budget %v, expected level 0", s.level.Index, s.level.Budget)
	}
}

func TestEndedLevelHaltsSession(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)
	s.level.ended = true

	res := s.Step(t0.Add(time.Second), idle())
	if !errors.Is(res.Err, ErrLevelEnded) {
		t.Errorf("Err = %v, expected ErrLevelEnded", res.Err)
	}
	if s.EndReason() != ReasonInvariantViolation {
		t.Errorf("EndReason() = %q, expected invariant_violation", s.EndReason())
	}
	if n := len(eventsOfType(s, EventDiagnostic)); n != 1 {
		t.Errorf("diagnostic events = %d, expected 1", n)
	}
}

func TestSeededSessionsAreDeterministic(t *testing.T) {
	run := func() *Session {
		s := newTestSession(t, testConfig())
		s.Start(t0)
		moves := []core.Action{core.ActionRight, core.ActionDown, core.ActionLeft, core.ActionUp}
		for i := 1; i <= 1200; i++ {
			in := core.NewInputFrame()
			switch {
			case i%25 == 0:
				in.Set(core.ActionRelease)
			case i%3 == 0:
				in.Set(moves[(i/30)%len(moves)])
			}
			s.Step(t0.Add(time.Duration(i)*50*time.Millisecond), in)
		}
		return s
	}

	a := run()
	b := run()

	now := t0.Add(time.Minute)
	if !reflect.DeepEqual(a.Snapshot(now), b.Snapshot(now)) {
		t.Error("snapshots differ between identically seeded sessions")
	}
	if !reflect.DeepEqual(a.log.events, b.log.events) {
		t.Error("event logs differ between identically seeded sessions")
	}
}

func TestSnapshotIsReadOnly(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Start(t0)
	quiet(s)

	snap := s.Snapshot(t0.Add(time.Hour))
	if snap.Remaining != 0 {
		t.Errorf("Remaining = %v, expected clamp to 0", snap.Remaining)
	}
	if snap.PelletCount != s.pellets.Len() {
		t.Errorf("PelletCount = %d, expected %d", snap.PelletCount, s.pellets.Len())
	}

	for _, c := range snap.Pellets.Cells() {
		snap.Pellets.Collect(c)
	}
	if s.pellets.Len() == 0 {
		t.Error("mutating the snapshot pellets changed the engine")
	}
}
