package core

// PriorLevel orders handler registrations: higher values dispatch first.
// Ties are broken by registration order (stable). The three named levels
// are conveniences; any int in [PriorMin, PriorMax] is valid.
type PriorLevel int

const (
	// PriorMin is the lowest dispatch priority.
	PriorMin PriorLevel = 0
	// PriorMax is the highest dispatch priority.
	PriorMax PriorLevel = 1000
	// PriorMean is the default priority for registrations.
	PriorMean = (PriorMax + PriorMin) / 2
)

// UserLevel ranks a sender's standing with the bot. Checkers compare event
// senders against a required level.
type UserLevel int

const (
	// LevelBlack marks blocked users; their events never pass level checks.
	LevelBlack UserLevel = -1
	// LevelUser is the default standing of unknown senders.
	LevelUser UserLevel = 10
	// LevelWhite marks trusted users.
	LevelWhite UserLevel = 100
	// LevelSuper marks superusers.
	LevelSuper UserLevel = 1000
	// LevelOwner marks the bot owner.
	LevelOwner UserLevel = 10000
)

// String returns a short name for the level.
func (l UserLevel) String() string {
	switch l {
	case LevelBlack:
		return "black"
	case LevelUser:
		return "user"
	case LevelWhite:
		return "white"
	case LevelSuper:
		return "super"
	case LevelOwner:
		return "owner"
	default:
		return "unknown"
	}
}
