package engine

// Draw deck composition. 49 regular path cards + 9 dead ends + 27 action
// cards = 85. Crystals are sprinkled onto 12 of the shuffled path cards
// before the action cards join the deck, so start/goal cells never carry
// one.
const (
	deckCrystalCount = 12
)

type pathCount struct {
	shape Shape
	n     int
}

var pathCounts = []pathCount{
	{Shape{Top: true, Bottom: true, Left: true, Right: true, Center: true}, 8},  // cross
	{Shape{Bottom: true, Left: true, Right: true, Center: true}, 8},             // T, top closed
	{Shape{Left: true, Right: true, Center: true}, 5},                           // horizontal
	{Shape{Top: true, Bottom: true, Right: true, Center: true}, 8},              // vertical T, left closed
	{Shape{Top: true, Left: true, Center: true}, 8},                             // curve ┓
	{Shape{Top: true, Right: true, Center: true}, 6},                            // curve ┏
	{Shape{Top: true, Bottom: true, Center: true}, 6},                           // vertical
}

// One of each dead end: cross, vertical, horizontal, four curves, two Ts.
var deadEndShapes = []Shape{
	{Top: true, Bottom: true, Left: true, Right: true, DeadEnd: true},
	{Top: true, Bottom: true, DeadEnd: true},
	{Left: true, Right: true, DeadEnd: true},
	{Top: true, Left: true, DeadEnd: true},
	{Top: true, Right: true, DeadEnd: true},
	{Bottom: true, Left: true, DeadEnd: true},
	{Bottom: true, Right: true, DeadEnd: true},
	{Bottom: true, Left: true, Right: true, DeadEnd: true},
	{Top: true, Left: true, Right: true, DeadEnd: true},
}

type actionCount struct {
	kind ActionKind
	n    int
}

var actionCounts = []actionCount{
	{ActionBreakPickaxe, 3},
	{ActionBreakLantern, 3},
	{ActionBreakCart, 3},
	{ActionFixPickaxe, 2},
	{ActionFixLantern, 2},
	{ActionFixCart, 2},
	{ActionFixPickaxeLantern, 1},
	{ActionFixPickaxeCart, 1},
	{ActionFixLanternCart, 1},
	{ActionMap, 4},
	{ActionFixAll, 1},
	{ActionRockfall, 4},
}

// NewDeck builds and shuffles the 85-card draw deck.
func NewDeck(rng *RNG) []*Card {
	deck := make([]*Card, 0, 85)

	for _, pc := range pathCounts {
		for i := 0; i < pc.n; i++ {
			deck = append(deck, NewPathCard(pc.shape))
		}
	}
	for _, shape := range deadEndShapes {
		deck = append(deck, NewPathCard(shape))
	}

	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	for i := 0; i < deckCrystalCount && i < len(deck); i++ {
		deck[i].HasCrystal = true
	}

	for _, ac := range actionCounts {
		for i := 0; i < ac.n; i++ {
			deck = append(deck, NewActionCard(ac.kind))
		}
	}

	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// SpecialCounts configures how many of each special card the treasure
// deck holds.
type SpecialCounts struct {
	Dynamite     int `json:"dynamite"`
	Oracle       int `json:"oracle"`
	Thief        int `json:"thief"`
	Trader       int `json:"trader"`
	Scavenger    int `json:"scavenger"`
	DoubleAction int `json:"doubleAction"`
}

// DefaultSpecialCounts is the recommended treasure deck mix.
func DefaultSpecialCounts() SpecialCounts {
	return SpecialCounts{
		Dynamite:     1,
		Oracle:       3,
		Thief:        2,
		Trader:       2,
		Scavenger:    1,
		DoubleAction: 1,
	}
}

// NewSpecialDeck builds and shuffles the treasure-chest deck.
func NewSpecialDeck(counts SpecialCounts, rng *RNG) []*Card {
	kinds := []struct {
		kind SpecialKind
		n    int
	}{
		{SpecialDynamite, counts.Dynamite},
		{SpecialOracle, counts.Oracle},
		{SpecialThief, counts.Thief},
		{SpecialTrader, counts.Trader},
		{SpecialScavenger, counts.Scavenger},
		{SpecialDoubleAction, counts.DoubleAction},
	}

	var deck []*Card
	for _, k := range kinds {
		for i := 0; i < k.n; i++ {
			deck = append(deck, NewSpecialCard(k.kind))
		}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
