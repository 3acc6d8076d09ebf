// Package command defines the drawing-command model produced by script
// evaluation. Commands are pure data; evaluation and rendering live elsewhere.
package command

// Kind discriminates the Command variants.
type Kind int

const (
	KindMoveForward Kind = iota
	KindTurn
	KindPenUp
	KindPenDown
	KindSetColor
	KindRepeat
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMoveForward:
		return "forward"
	case KindTurn:
		return "turn"
	case KindPenUp:
		return "pen-up"
	case KindPenDown:
		return "pen-down"
	case KindSetColor:
		return "set-color"
	case KindRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Command is one turtle-graphics instruction. Only the fields relevant to
// the Kind are meaningful: Distance for MoveForward, Angle for Turn, Color
// for SetColor, Count and Body for Repeat.
type Command struct {
	Kind     Kind
	Distance float64
	Angle    float64
	Color    Color
	Count    int
	Body     Sequence
}

// Sequence is a finite ordered run of commands produced by one script
// evaluation. A sequence is immutable once produced; consumers must not
// modify it.
type Sequence []Command

// MoveForward advances the cursor by distance along the current heading.
func MoveForward(distance float64) Command {
	return Command{Kind: KindMoveForward, Distance: distance}
}

// Turn adjusts the heading by angle degrees (signed).
func Turn(angle float64) Command {
	return Command{Kind: KindTurn, Angle: angle}
}

// PenUp lifts the pen; subsequent moves draw nothing.
func PenUp() Command {
	return Command{Kind: KindPenUp}
}

// PenDown lowers the pen.
func PenDown() Command {
	return Command{Kind: KindPenDown}
}

// SetColor changes the current pen color.
func SetColor(c Color) Command {
	return Command{Kind: KindSetColor, Color: c}
}

// Repeat replays body count times in place. A count of zero is a valid
// no-op, not an error.
func Repeat(count int, body Sequence) Command {
	return Command{Kind: KindRepeat, Count: count, Body: body}
}
