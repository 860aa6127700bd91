package domain

// Default progression constants. The original community ran 150 XP per message
// against 3000 XP level slots; both are configurable.
const (
	DefaultXPPerMessage   int64 = 150
	DefaultXPPerLevelUnit int64 = 3000
)

// Curve defines the XP progression: a linearly increasing per-level cost and a
// flat award per qualifying message. All methods are pure.
type Curve struct {
	// PerMessage is the flat XP granted for one qualifying message.
	PerMessage int64
	// PerLevelUnit is the base XP per level slot.
	PerLevelUnit int64
}

// DefaultCurve returns the production progression curve.
func DefaultCurve() Curve {
	return Curve{
		PerMessage:   DefaultXPPerMessage,
		PerLevelUnit: DefaultXPPerLevelUnit,
	}
}

// XPRequiredFor returns the XP needed to advance from level to level+1.
// The cost grows linearly: (level+1) * PerLevelUnit.
func (c Curve) XPRequiredFor(level int) int64 {
	return int64(level+1) * c.PerLevelUnit
}

// TotalXPForLevel converts a (level, xp) pair into the single cumulative value
// used for ledger bookkeeping and both leaderboards:
//
//	XPRequiredFor(level) + xp
//
// This is the one convention for "total XP at a level" in the codebase; the
// ledger, server contributions, and leaderboard sorts all use it.
func (c Curve) TotalXPForLevel(level int, xp int64) int64 {
	return c.XPRequiredFor(level) + xp
}

// Normalize folds excess or negative XP into level transitions.
// Forward: while xp reaches the current level's threshold, consume it and
// advance. Backward: while xp is negative above level 0, step down and refund
// the new level's threshold. At level 0 negative XP clamps to zero.
// Normalizing an already-normalized pair is a no-op.
func (c Curve) Normalize(xp int64, level int) (int64, int) {
	for xp >= c.XPRequiredFor(level) {
		xp -= c.XPRequiredFor(level)
		level++
	}

	for xp < 0 && level > 0 {
		level--
		xp += c.XPRequiredFor(level)
	}

	if level == 0 && xp < 0 {
		xp = 0
	}

	return xp, level
}

// ApplyEvent applies a progression event to the current record and returns the
// normalized outcome. The transition flags compare the resulting level against
// current.Level, the true pre-event level, so admin overrides that also set an
// explicit level report transitions relative to where the user actually was.
func (c Curve) ApplyEvent(current Progress, ev Event) Result {
	previousLevel := current.Level

	xp := current.XP
	level := current.Level

	if ev.DirectSet {
		if ev.ExplicitLevel != nil {
			level = *ev.ExplicitLevel
		}
		xp = ev.XPDelta
	} else {
		xp += c.PerMessage + ev.XPDelta
	}

	xp, level = c.Normalize(xp, level)

	return Result{
		XP:          xp,
		Level:       level,
		LeveledUp:   level > previousLevel,
		LeveledDown: level < previousLevel,
	}
}

// IsNormalized reports whether the (xp, level) pair satisfies the progress
// invariant 0 <= xp < XPRequiredFor(level).
func (c Curve) IsNormalized(xp int64, level int) bool {
	return level >= 0 && xp >= 0 && xp < c.XPRequiredFor(level)
}
