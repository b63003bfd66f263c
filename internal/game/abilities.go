package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/evogame/internal/log"
)

func init() {
	registerAbilities(
		altruism(),
		schemer(),
		environmentalAdaptation(),
		efficientMetabolism(),
		symbiosisBond(),
		defenseMechanism(),
		groupDeterrence(),
		opportunist(),
		tenacity(),
		strategyShift(),
		evolutionBurst(),
		predatorInstinct(),
		resourceControl(),
		disasterExpert(),
		tacticalUpgrade(),
		lastStand(),
		ecoEngineering(),
		evolutionAdvantage(),
		rapidAdaptation(),
		populationResilience(),
	)
}

func (g *Game) logAbility(p *Player, ability, details string) {
	g.log(log.NewAbilityTriggeredEvent(p.ID, p.Name, ability, details))
}

func altruism() *AbilityDef {
	const name = "Altruism"
	return &AbilityDef{
		Name:        name,
		Description: "Whenever you play Cooperate, choose another player to draw 1 evolution card.",
		Hooks: []Hook{{
			Trigger: TriggerPlayed,
			Action:  ActionCooperate,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				t, err := g.askTarget(ctx, holder, g.Opponents(holder), e.Context)
				if err != nil || t == nil {
					return err
				}
				g.logAbility(holder, name, fmt.Sprintf("%s draws 1 evolution card", t.Name))
				return g.gainEvolution(ctx, t, 1, name)
			},
		}},
	}
}

func schemer() *AbilityDef {
	const name = "Schemer"
	return &AbilityDef{
		Name:        name,
		Description: "Whenever you play Deceive, inspect another player's Cooperation and Deception counts.",
		Hooks: []Hook{{
			Trigger: TriggerPlayed,
			Action:  ActionDeceive,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				t, err := g.askTarget(ctx, holder, g.Opponents(holder), e.Context)
				if err != nil || t == nil {
					return err
				}
				g.log(log.NewRevealEvent(holder.ID, holder.Name, t.Name,
					fmt.Sprintf("%d Cooperation, %d Deception", t.Count(KindCooperation), t.Count(KindDeception))))
				return nil
			},
		}},
	}
}

func environmentalAdaptation() *AbilityDef {
	const name = "Environmental Adaptation"
	return &AbilityDef{
		Name:        name,
		Description: "Playing Deceive on a NaturalDisaster costs you nothing; transfers still apply.",
		Hooks: []Hook{{
			Trigger: TriggerForfeit,
			Context: CtxNaturalDisaster,
			Action:  ActionDeceive,
			Scope:   ScopeSelf,
			Apply: func(_ context.Context, g *Game, holder *Player, e *Effect) error {
				if e.Amount > 0 {
					e.Amount = 0
					g.logAbility(holder, name, "disaster forfeit waived")
				}
				return nil
			},
		}},
	}
}

func efficientMetabolism() *AbilityDef {
	const name = "Efficient Metabolism"
	return &AbilityDef{
		Name:        name,
		Description: "On ResourceRich, a Deceive roll of 5 or 6 draws 1 extra evolution card.",
		Hooks: []Hook{{
			Trigger: TriggerDrawAmount,
			Context: CtxResourceRich,
			Action:  ActionDeceive,
			Scope:   ScopeSelf,
			Apply: func(_ context.Context, g *Game, holder *Player, e *Effect) error {
				if e.Roll >= 5 {
					e.Amount++
					g.logAbility(holder, name, "+1 evolution card")
				}
				return nil
			},
		}},
	}
}

func symbiosisBond() *AbilityDef {
	const name = "Symbiosis Bond"
	outcome := func(c Context) Hook {
		return Hook{
			Trigger: TriggerOutcome,
			Context: c,
			Action:  ActionCooperate,
			Scope:   ScopeOthers,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				if e.Target != holder || e.Actor.ID != holder.SymbiosisTarget {
					return nil
				}
				g.logAbility(holder, name, fmt.Sprintf("%s cooperated", e.Actor.Name))
				return g.gainEvolution(ctx, holder, 1, name)
			},
		}
	}
	return &AbilityDef{
		Name:        name,
		Description: "Bond with a partner. When they cooperate with you on TrustEvolution or CooperationSanctuary, draw 1 evolution card.",
		Hooks: []Hook{
			{
				Trigger: TriggerActivate,
				Scope:   ScopeSelf,
				Apply: func(ctx context.Context, g *Game, holder *Player, _ *Effect) error {
					t, err := g.askTarget(ctx, holder, g.Opponents(holder), CtxOptional)
					if err != nil || t == nil {
						return err
					}
					holder.SymbiosisTarget = t.ID
					g.log(log.NewTargetEvent(holder.ID, holder.Name, t.Name, name))
					return nil
				},
			},
			outcome(CtxTrustEvolution),
			outcome(CtxSanctuary),
		},
	}
}

func defenseMechanism() *AbilityDef {
	const name = "Defense Mechanism"
	return &AbilityDef{
		Name:        name,
		Description: "When another player peeks the ability deck in the swamp, you may stop them and take 1 of the top 2 cards yourself.",
		Hooks: []Hook{{
			Trigger: TriggerSwampPeek,
			Scope:   ScopeOthers,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				if e.Blocked {
					return nil
				}
				yes, err := g.askYesNo(ctx, holder, QuestionDefenseMechanism)
				if err != nil || !yes {
					return err
				}
				e.Blocked = true
				g.logAbility(holder, name, fmt.Sprintf("blocks %s's peek", e.Actor.Name))
				return g.takeAbility(ctx, holder, 2)
			},
		}},
	}
}

func groupDeterrence() *AbilityDef {
	const name = "Group Deterrence"
	return &AbilityDef{
		Name:        name,
		Description: "On your TrustEvolution, every player with fewer evolution cards than you must target you.",
		Hooks: []Hook{{
			Trigger: TriggerTrustTargets,
			Scope:   ScopeSelf,
			Apply: func(_ context.Context, g *Game, holder *Player, e *Effect) error {
				for _, q := range g.Opponents(holder) {
					if q.EvolutionCount() < holder.EvolutionCount() {
						e.Targets[q.ID] = holder.ID
						g.logAbility(holder, name, fmt.Sprintf("%s must target %s", q.Name, holder.Name))
					}
				}
				return nil
			},
		}},
	}
}

func opportunist() *AbilityDef {
	const name = "Opportunist"
	return &AbilityDef{
		Name:        name,
		Description: "After another player's swamp, you may discard 1 strategy card to take 1 of the top 3 ability cards.",
		Hooks: []Hook{{
			Trigger: TriggerSwampAfter,
			Scope:   ScopeOthers,
			Apply: func(ctx context.Context, g *Game, holder *Player, _ *Effect) error {
				if holder.StrategyCount() == 0 || g.Decks[KindAbility].IsEmpty() {
					return nil
				}
				yes, err := g.askYesNo(ctx, holder, QuestionOpportunist)
				if err != nil || !yes {
					return err
				}
				chosen, err := g.askDiscard(ctx, holder, holder.StrategyCards(), 1, CtxSwamp)
				if err != nil {
					return err
				}
				for _, c := range chosen {
					g.discard(holder, c, name)
				}
				g.logAbility(holder, name, "peeks the ability deck")
				return g.takeAbility(ctx, holder, 3)
			},
		}},
	}
}

func tenacity() *AbilityDef {
	const name = "Tenacity"
	return &AbilityDef{
		Name:        name,
		Description: "Your hand limit is 3 higher. Every evolution forfeit is 1 smaller.",
		Hooks: []Hook{
			{
				Trigger: TriggerAcquire,
				Scope:   ScopeSelf,
				Apply: func(_ context.Context, g *Game, holder *Player, _ *Effect) error {
					holder.HandLimitBonus += 3
					g.logAbility(holder, name, fmt.Sprintf("hand limit now %d", holder.HandLimit()))
					return nil
				},
			},
			{
				Trigger: TriggerForfeit,
				Scope:   ScopeSelf,
				Apply: func(_ context.Context, g *Game, holder *Player, e *Effect) error {
					if e.Amount > 0 {
						e.Amount--
						g.logAbility(holder, name, "forfeit reduced by 1")
					}
					return nil
				},
			},
		},
	}
}

func strategyShift() *AbilityDef {
	const name = "Strategy Shift"
	return &AbilityDef{
		Name:        name,
		Description: "Once per turn, before your card is revealed, you may switch Cooperate and Deceive.",
		Hooks: []Hook{{
			Trigger: TriggerBeforeReveal,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				if holder.ShiftUsed || !holder.CanDeclare(e.Action.Flip()) {
					return nil
				}
				yes, err := g.askYesNo(ctx, holder, QuestionStrategyShift)
				if err != nil || !yes {
					return err
				}
				holder.ShiftUsed = true
				e.Action = e.Action.Flip()
				g.logAbility(holder, name, fmt.Sprintf("switches to %s", e.Action))
				return nil
			},
		}},
	}
}

func evolutionBurst() *AbilityDef {
	const name = "Evolution Burst"
	return &AbilityDef{
		Name:        name,
		Description: "When gained, draw 3 evolution cards; then remove this card from play.",
		Hooks: []Hook{{
			Trigger: TriggerAcquire,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, _ *Effect) error {
				if card := holder.ability(name); card != nil {
					g.retireAbility(holder, card)
				}
				return g.gainEvolution(ctx, holder, 3, name)
			},
		}},
	}
}

func predatorInstinct() *AbilityDef {
	const name = "Predator Instinct"
	return &AbilityDef{
		Name:        name,
		Description: "Choose prey. Every HawkDove game between you and your prey earns you 1 evolution card.",
		Hooks: []Hook{
			{
				Trigger: TriggerActivate,
				Scope:   ScopeSelf,
				Apply: func(ctx context.Context, g *Game, holder *Player, _ *Effect) error {
					t, err := g.askTarget(ctx, holder, g.Opponents(holder), CtxOptional)
					if err != nil || t == nil {
						return err
					}
					holder.PreyTarget = t.ID
					g.log(log.NewTargetEvent(holder.ID, holder.Name, t.Name, name))
					return nil
				},
			},
			{
				Trigger: TriggerOutcome,
				Context: CtxHawkDove,
				Scope:   ScopeSelf,
				Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
					if e.Target == nil || e.Target.ID != holder.PreyTarget {
						return nil
					}
					g.logAbility(holder, name, fmt.Sprintf("hunts %s", e.Target.Name))
					return g.gainEvolution(ctx, holder, 1, name)
				},
			},
		},
	}
}

func resourceControl() *AbilityDef {
	const name = "Resource Control"
	return &AbilityDef{
		Name:        name,
		Description: "On ResourceRich, your Cooperate draws 1 extra card and other players' Deceive payouts are halved.",
		Hooks: []Hook{{
			Trigger: TriggerDrawAmount,
			Context: CtxResourceRich,
			Scope:   ScopeAny,
			Apply: func(_ context.Context, g *Game, holder *Player, e *Effect) error {
				switch {
				case e.Actor == holder && e.Action == ActionCooperate:
					e.Amount++
					g.logAbility(holder, name, "+1 evolution card")
				case e.Actor != holder && e.Action == ActionDeceive && e.Amount > 0:
					e.Amount /= 2
					g.logAbility(holder, name, fmt.Sprintf("%s's haul is halved", e.Actor.Name))
				}
				return nil
			},
		}},
	}
}

func disasterExpert() *AbilityDef {
	const name = "Disaster Expert"
	return &AbilityDef{
		Name:        name,
		Description: "When you play Deceive on a NaturalDisaster, choose another player to forfeit 1 evolution card.",
		Hooks: []Hook{{
			Trigger: TriggerOutcome,
			Context: CtxNaturalDisaster,
			Action:  ActionDeceive,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, _ *Effect) error {
				t, err := g.askTarget(ctx, holder, g.Opponents(holder), CtxNaturalDisaster)
				if err != nil || t == nil {
					return err
				}
				g.logAbility(holder, name, fmt.Sprintf("%s forfeits 1", t.Name))
				return g.forfeit(ctx, t, 1, CtxNaturalDisaster, ActionNone, name)
			},
		}},
	}
}

func tacticalUpgrade() *AbilityDef {
	const name = "Tactical Upgrade"
	return &AbilityDef{
		Name:        name,
		Description: "You may roll a second movement die and keep the higher result.",
		Hooks: []Hook{{
			Trigger: TriggerRoll,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				yes, err := g.askYesNo(ctx, holder, QuestionTacticalUpgrade)
				if err != nil || !yes {
					return err
				}
				second := g.rollDie()
				g.logAbility(holder, name, fmt.Sprintf("second roll %d", second))
				if second > e.Roll {
					e.Roll = second
				}
				return nil
			},
		}},
	}
}

func lastStand() *AbilityDef {
	const name = "Last Stand"
	return &AbilityDef{
		Name:        name,
		Description: "When you would be eliminated with no evolution cards, remove this card from play and draw 3 evolution cards instead.",
		Hooks: []Hook{{
			Trigger: TriggerElimination,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				if e.Blocked {
					return nil
				}
				if card := holder.ability(name); card != nil {
					g.retireAbility(holder, card)
				}
				if err := g.gainEvolution(ctx, holder, 3, name); err != nil {
					return err
				}
				// Survival needs at least one card actually drawn.
				if holder.EvolutionCount() > 0 {
					e.Blocked = true
					g.logAbility(holder, name, "survives elimination")
				}
				return nil
			},
		}},
	}
}

func ecoEngineering() *AbilityDef {
	const name = "Eco Engineering"
	return &AbilityDef{
		Name:        name,
		Description: "When you draw an environment change, you may instead retype any ordinary tile to a type of your choice.",
		Hooks: []Hook{{
			Trigger: TriggerEnvironment,
			Scope:   ScopeSelf,
			Apply: func(ctx context.Context, g *Game, holder *Player, e *Effect) error {
				if e.Blocked {
					return nil
				}
				yes, err := g.askYesNo(ctx, holder, QuestionEcoEngineering)
				if err != nil || !yes {
					return err
				}
				var positions []int
				var tiles []string
				for i, t := range g.Board.Types() {
					if t.Ordinary() {
						positions = append(positions, i)
						tiles = append(tiles, fmt.Sprintf("%d: %s", i, t))
					}
				}
				if len(positions) == 0 {
					return nil
				}
				ti, err := g.askOption(ctx, holder, QuestionRetypeTile, tiles)
				if err != nil {
					return err
				}
				types := make([]string, len(OrdinaryTiles))
				for i, t := range OrdinaryTiles {
					types[i] = t.String()
				}
				ki, err := g.askOption(ctx, holder, QuestionRetypeType, types)
				if err != nil {
					return err
				}
				e.Blocked = true
				g.logAbility(holder, name, "reshapes the board")
				g.retype(positions[ti], OrdinaryTiles[ki], name)
				return nil
			},
		}},
	}
}

func evolutionAdvantage() *AbilityDef {
	const name = "Evolution Advantage"
	return &AbilityDef{
		Name:        name,
		Description: "You need 2 fewer evolution cards to win.",
		Hooks: []Hook{{
			Trigger: TriggerAcquire,
			Scope:   ScopeSelf,
			Apply: func(_ context.Context, g *Game, holder *Player, _ *Effect) error {
				holder.RequirementReduction = 2
				g.logAbility(holder, name, fmt.Sprintf("victory target now %d", g.VictoryTarget(holder)))
				g.checkVictory(holder)
				return nil
			},
		}},
	}
}

func rapidAdaptation() *AbilityDef {
	const name = "Rapid Adaptation"
	return &AbilityDef{
		Name:        name,
		Description: "Whenever an environment change is applied, draw 1 evolution card.",
		Hooks: []Hook{{
			Trigger: TriggerOutcome,
			Context: CtxEnvironment,
			Scope:   ScopeAny,
			Apply: func(ctx context.Context, g *Game, holder *Player, _ *Effect) error {
				g.logAbility(holder, name, "adapts to the new environment")
				return g.gainEvolution(ctx, holder, 1, name)
			},
		}},
	}
}

func populationResilience() *AbilityDef {
	const name = "Population Resilience"
	return &AbilityDef{
		Name:        name,
		Description: "You are immune to stagnation. Cooperating on a NaturalDisaster draws 1 evolution card.",
		Hooks: []Hook{
			{
				Trigger: TriggerStagnation,
				Scope:   ScopeSelf,
				Apply: func(_ context.Context, g *Game, holder *Player, e *Effect) error {
					e.Blocked = true
					g.logAbility(holder, name, "immune to stagnation")
					return nil
				},
			},
			{
				Trigger: TriggerOutcome,
				Context: CtxNaturalDisaster,
				Action:  ActionCooperate,
				Scope:   ScopeSelf,
				Apply: func(ctx context.Context, g *Game, holder *Player, _ *Effect) error {
					g.logAbility(holder, name, "+1 evolution card")
					return g.gainEvolution(ctx, holder, 1, name)
				},
			},
		},
	}
}
