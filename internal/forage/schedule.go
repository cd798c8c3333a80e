package forage

import "time"

// Level time budget schedule.
const (
	LevelCount      = 5
	BaseBudget      = 120 * time.Second
	BudgetDecrement = 20 * time.Second
	MinBudget       = 40 * time.Second
)

// PracticeLevel is the level index of the optional practice level.
const PracticeLevel = -1

// TimeBudget returns the time budget of level i (0-indexed):
// max(MinBudget, BaseBudget - i*BudgetDecrement). The practice level uses
// the level 0 budget.
func TimeBudget(i int) time.Duration {
	if i < 0 {
		i = 0
	}
	return max(MinBudget, BaseBudget-time.Duration(i)*BudgetDecrement)
}

// Level is one timed play unit.
type Level struct {
	Index  int
	Block  Block
	Budget time.Duration
	Start  time.Time
	EndAt  time.Time // moves earlier when freeze penalties are deducted
	Score  int

	ended bool
}

func newLevel(index int, block Block, now time.Time) *Level {
	budget := TimeBudget(index)
	return &Level{
		Index:  index,
		Block:  block,
		Budget: budget,
		Start:  now,
		EndAt:  now.Add(budget),
	}
}

// Remaining returns the time left in the level; it can be negative once the
// level has run out.
func (l *Level) Remaining(now time.Time) time.Duration {
	return l.EndAt.Sub(now)
}

// IsPractice reports whether this is the unscored practice level.
func (l *Level) IsPractice() bool {
	return l.Index == PracticeLevel
}

// deduct shortens the level by a freeze penalty.
func (l *Level) deduct(penalty time.Duration) {
	l.EndAt = l.EndAt.Add(-penalty)
}
