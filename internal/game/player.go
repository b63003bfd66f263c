package game

// Player holds one seat's position, hand and modifiers. It owns no game
// logic beyond its own invariants; draws and discards go through Game.
type Player struct {
	ID         int
	Name       string
	Position   int
	Points     int
	Eliminated bool
	Abilities  []*Card

	HandLimitBonus       int
	RequirementReduction int
	SymbiosisTarget      int
	PreyTarget           int
	ImmuneToDisaster     bool
	CannotMoveNextTurn   bool
	TurnsWithoutGain     int
	VisitedFinish        bool

	FreeChallenge  int  // seat to challenge in HawkDove, or NoTarget
	ForcedOpponent int  // seat this player must challenge next turn, or NoTarget
	ForcedDeceive  bool // the forced challenge must be played as Deceive
	DoubleRoll     bool
	PopulationBoom bool
	ShiftUsed      bool

	hand     map[CardKind][]*Card
	setAside []*Card
	gained   bool // drew evolution cards since the end of its last turn
}

func NewPlayer(id int, name string) *Player {
	return &Player{
		ID:              id,
		Name:            name,
		SymbiosisTarget: NoTarget,
		PreyTarget:      NoTarget,
		FreeChallenge:   NoTarget,
		ForcedOpponent:  NoTarget,
		hand:            make(map[CardKind][]*Card),
	}
}

// Hand returns a copy of the cards held of one kind.
func (p *Player) Hand(kind CardKind) []*Card {
	return append([]*Card(nil), p.hand[kind]...)
}

func (p *Player) Count(kind CardKind) int {
	return len(p.hand[kind])
}

func (p *Player) EvolutionCount() int {
	return len(p.hand[KindEvolution])
}

// StrategyCount is the number of Cooperation and Deception cards held.
func (p *Player) StrategyCount() int {
	return len(p.hand[KindCooperation]) + len(p.hand[KindDeception])
}

// StrategyCards returns the Cooperation cards followed by the Deception cards.
func (p *Player) StrategyCards() []*Card {
	out := p.Hand(KindCooperation)
	return append(out, p.hand[KindDeception]...)
}

// HandLimit is the maximum number of strategy cards the player may hold.
func (p *Player) HandLimit() int {
	limit := p.EvolutionCount()/2 + p.HandLimitBonus
	if limit < 0 {
		return 0
	}
	return limit
}

// Excess is how many strategy cards the player holds over the hand limit.
func (p *Player) Excess() int {
	if over := p.StrategyCount() - p.HandLimit(); over > 0 {
		return over
	}
	return 0
}

// CanDeclare reports whether the player holds a card for the action.
func (p *Player) CanDeclare(a Action) bool {
	return a != ActionNone && p.Count(a.Kind()) > 0
}

// AddCard routes a card into the matching bucket. It reports whether the
// hand limit must be checked afterwards.
func (p *Player) AddCard(c *Card) bool {
	switch c.Kind {
	case KindAbility:
		p.Abilities = append(p.Abilities, c)
		return false
	case KindEnvironment:
		return false
	}
	p.hand[c.Kind] = append(p.hand[c.Kind], c)
	return c.Kind == KindEvolution || c.Kind.IsStrategy()
}

// RemoveCard removes count cards of one kind, most recently added first.
func (p *Player) RemoveCard(kind CardKind, count int) ([]*Card, error) {
	held := p.hand[kind]
	if count > len(held) {
		return nil, ErrInsufficientCards
	}
	removed := append([]*Card(nil), held[len(held)-count:]...)
	p.hand[kind] = held[:len(held)-count]
	return removed, nil
}

// RemoveSpecific removes one particular card from the hand.
func (p *Player) RemoveSpecific(c *Card) bool {
	held := p.hand[c.Kind]
	for i, h := range held {
		if h == c {
			p.hand[c.Kind] = append(held[:i], held[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Player) HasAbility(name string) bool {
	return p.ability(name) != nil
}

func (p *Player) ability(name string) *Card {
	for _, c := range p.Abilities {
		if c.Effect == name {
			return c
		}
	}
	return nil
}

// RemoveAbility drops a held ability card and returns it.
func (p *Player) RemoveAbility(c *Card) bool {
	for i, a := range p.Abilities {
		if a == c {
			p.Abilities = append(p.Abilities[:i], p.Abilities[i+1:]...)
			return true
		}
	}
	return false
}

// SetAside moves every card of one kind out of the hand until Restore.
func (p *Player) SetAside(kind CardKind) int {
	n := len(p.hand[kind])
	p.setAside = append(p.setAside, p.hand[kind]...)
	p.hand[kind] = nil
	return n
}

// Restore returns the set-aside cards and clears them.
func (p *Player) Restore() []*Card {
	out := p.setAside
	p.setAside = nil
	return out
}

// SetAsideCount is the number of cards currently set aside.
func (p *Player) SetAsideCount() int {
	return len(p.setAside)
}
