// Package engine implements the board, card, and deck rules for the
// tunnel-digging game: path-card connectivity, placement validation,
// start-to-goal reachability, and deck construction.
//
// The package is pure. All randomness flows through an explicit RNG and
// no shared state or I/O is involved, so a fixed seed reproduces an
// identical round. The session layer (internal/game) owns all mutation
// ordering on top of it.
package engine

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CardKind discriminates the card union. Every consumer switches
// exhaustively on it.
type CardKind uint8

const (
	KindPath CardKind = iota
	KindAction
	KindSpecial
)

func (k CardKind) String() string {
	switch k {
	case KindPath:
		return "PATH"
	case KindAction:
		return "ACTION"
	case KindSpecial:
		return "SPECIAL"
	}
	return "UNKNOWN"
}

// Tool identifies one of the three breakable mining tools.
type Tool uint8

const (
	Pickaxe Tool = iota
	Lantern
	Cart
	NumTools = 3
)

func (t Tool) String() string {
	switch t {
	case Pickaxe:
		return "PICKAXE"
	case Lantern:
		return "LANTERN"
	case Cart:
		return "CART"
	}
	return "UNKNOWN"
}

// ActionKind enumerates the tool/board action cards.
type ActionKind uint8

const (
	ActionBreakPickaxe ActionKind = iota
	ActionBreakLantern
	ActionBreakCart
	ActionFixPickaxe
	ActionFixLantern
	ActionFixCart
	ActionFixPickaxeLantern
	ActionFixPickaxeCart
	ActionFixLanternCart
	ActionFixAll
	ActionMap
	ActionRockfall
)

func (a ActionKind) String() string {
	switch a {
	case ActionBreakPickaxe:
		return "BREAK_PICKAXE"
	case ActionBreakLantern:
		return "BREAK_LANTERN"
	case ActionBreakCart:
		return "BREAK_CART"
	case ActionFixPickaxe:
		return "FIX_PICKAXE"
	case ActionFixLantern:
		return "FIX_LANTERN"
	case ActionFixCart:
		return "FIX_CART"
	case ActionFixPickaxeLantern:
		return "FIX_PICKAXE_LANTERN"
	case ActionFixPickaxeCart:
		return "FIX_PICKAXE_CART"
	case ActionFixLanternCart:
		return "FIX_LANTERN_CART"
	case ActionFixAll:
		return "FIX_ALL"
	case ActionMap:
		return "MAP"
	case ActionRockfall:
		return "ROCKFALL"
	}
	return "UNKNOWN"
}

// IsBreak reports whether the action breaks a tool.
func (a ActionKind) IsBreak() bool {
	return a <= ActionBreakCart
}

// IsFix reports whether the action repairs one or more tools.
func (a ActionKind) IsFix() bool {
	return a >= ActionFixPickaxe && a <= ActionFixAll
}

// BreaksTool returns the tool a break card targets. Only meaningful when
// IsBreak is true.
func (a ActionKind) BreaksTool() Tool {
	switch a {
	case ActionBreakLantern:
		return Lantern
	case ActionBreakCart:
		return Cart
	default:
		return Pickaxe
	}
}

// Fixes reports whether the action can repair the given tool. Paired fix
// cards cover two tools, FIX_ALL covers all three.
func (a ActionKind) Fixes(t Tool) bool {
	switch a {
	case ActionFixAll:
		return true
	case ActionFixPickaxe:
		return t == Pickaxe
	case ActionFixLantern:
		return t == Lantern
	case ActionFixCart:
		return t == Cart
	case ActionFixPickaxeLantern:
		return t == Pickaxe || t == Lantern
	case ActionFixPickaxeCart:
		return t == Pickaxe || t == Cart
	case ActionFixLanternCart:
		return t == Lantern || t == Cart
	}
	return false
}

// SpecialKind enumerates the treasure-chest special ability cards.
type SpecialKind uint8

const (
	SpecialDynamite SpecialKind = iota
	SpecialOracle
	SpecialThief
	SpecialTrader
	SpecialScavenger
	SpecialDoubleAction
)

func (s SpecialKind) String() string {
	switch s {
	case SpecialDynamite:
		return "DYNAMITE"
	case SpecialOracle:
		return "ORACLE"
	case SpecialThief:
		return "THIEF"
	case SpecialTrader:
		return "TRADER"
	case SpecialScavenger:
		return "SCAVENGER"
	case SpecialDoubleAction:
		return "DOUBLE_ACTION"
	}
	return "UNKNOWN"
}

// GoalKind is the hidden binding of a goal cell.
type GoalKind uint8

const (
	GoalStone GoalKind = iota
	GoalGold
)

func (g GoalKind) String() string {
	if g == GoalGold {
		return "GOLD"
	}
	return "STONE"
}

// Direction indexes the four sides of a path card.
type Direction uint8

const (
	DirTop Direction = iota
	DirBottom
	DirLeft
	DirRight
)

// Directions lists all four, in the scan order used by validation and BFS.
var Directions = [4]Direction{DirTop, DirBottom, DirLeft, DirRight}

// Opposite returns the facing direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirTop:
		return DirBottom
	case DirBottom:
		return DirTop
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// Delta returns the coordinate offset of one step in this direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirTop:
		return 0, -1
	case DirBottom:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// Shape describes a path card's connectivity: four side openings plus a
// passable interior. A dead end has DeadEnd=true and Center=false — it can
// be connected to, but never traversed through.
type Shape struct {
	Top     bool `json:"top"`
	Bottom  bool `json:"bottom"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
	Center  bool `json:"center"`
	DeadEnd bool `json:"deadEnd,omitempty"`
}

// Open reports whether the shape has an opening toward d.
func (s Shape) Open(d Direction) bool {
	switch d {
	case DirTop:
		return s.Top
	case DirBottom:
		return s.Bottom
	case DirLeft:
		return s.Left
	default:
		return s.Right
	}
}

func (s *Shape) setOpen(d Direction, v bool) {
	switch d {
	case DirTop:
		s.Top = v
	case DirBottom:
		s.Bottom = v
	case DirLeft:
		s.Left = v
	default:
		s.Right = v
	}
}

// Rotated returns the shape turned 180°. Center and DeadEnd are
// orientation-independent.
func (s Shape) Rotated(reversed bool) Shape {
	if !reversed {
		return s
	}
	return Shape{
		Top:     s.Bottom,
		Bottom:  s.Top,
		Left:    s.Right,
		Right:   s.Left,
		Center:  s.Center,
		DeadEnd: s.DeadEnd,
	}
}

// Card is the closed card union. Kind selects which field group is
// meaningful: Shape/crystal/goal fields for KindPath, Action for
// KindAction, Special for KindSpecial. Cards are immutable once dealt;
// the two exceptions are the goal cells, whose Shape and Revealed flags
// the board finalizes on reveal.
type Card struct {
	ID   uuid.UUID `json:"id"`
	Kind CardKind  `json:"kind"`

	Shape      Shape    `json:"shape"`
	HasCrystal bool     `json:"hasCrystal,omitempty"`
	IsStart    bool     `json:"isStart,omitempty"`
	IsGoal     bool     `json:"isGoal,omitempty"`
	Goal       GoalKind `json:"-"`
	Revealed   bool     `json:"isRevealed,omitempty"`

	Action  ActionKind  `json:"actionKind,omitempty"`
	Special SpecialKind `json:"specialKind,omitempty"`
}

// MarshalJSON hides the goal binding until the goal has been revealed;
// clients must never learn an unrevealed goal's kind from a snapshot.
func (c *Card) MarshalJSON() ([]byte, error) {
	type wire Card
	out := struct {
		*wire
		GoalType string `json:"goalType,omitempty"`
	}{wire: (*wire)(c)}
	if c.IsGoal && c.Revealed {
		out.GoalType = c.Goal.String()
	}
	return json.Marshal(out)
}

// NewPathCard returns a fresh path card with the given shape.
func NewPathCard(shape Shape) *Card {
	return &Card{ID: uuid.New(), Kind: KindPath, Shape: shape}
}

// NewActionCard returns a fresh action card.
func NewActionCard(kind ActionKind) *Card {
	return &Card{ID: uuid.New(), Kind: KindAction, Action: kind}
}

// NewSpecialCard returns a fresh special ability card.
func NewSpecialCard(kind SpecialKind) *Card {
	return &Card{ID: uuid.New(), Kind: KindSpecial, Special: kind}
}
