// Package main provides the encounter simulator: it loads content and
// configuration, builds the combat engine, and plays a scripted scenario to
// completion, printing the event log.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arbiterhq/arbiter/internal/config"
	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/ai"
	"github.com/arbiterhq/arbiter/internal/game/combat"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/game/effect"
	"github.com/arbiterhq/arbiter/internal/game/event"
	"github.com/arbiterhq/arbiter/internal/game/resolve"
	"github.com/arbiterhq/arbiter/internal/game/spellcasting"
	"github.com/arbiterhq/arbiter/internal/observability"
	"github.com/arbiterhq/arbiter/internal/scripting"
)

// scenarioCombatant is one roster entry of a scenario file.
type scenarioCombatant struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Template string `yaml:"template"`
	Team     string `yaml:"team"`
}

type scenario struct {
	Combatants []scenarioCombatant `yaml:"combatants"`
}

func loadScenario(path string) (*scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var sc scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decoding scenario %q: %w", path, err)
	}
	if len(sc.Combatants) < 2 {
		return nil, fmt.Errorf("scenario %q needs at least two combatants", path)
	}
	return &sc, nil
}

func main() {
	configPath := flag.String("config", "configs/simulator.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "content/scenarios/skirmish.yaml", "path to scenario file")
	domainPath := flag.String("domain", "content/ai/brawler.yaml", "path to HTN domain file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	store, err := content.LoadDirectory(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	var src dice.Source
	if cfg.Engine.Seed != 0 {
		src = dice.NewSeededSource(cfg.Engine.Seed)
		logger.Info("using seeded dice", zap.Int64("seed", cfg.Engine.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewRoller(src, logger)

	var hooks effect.HookRunner
	var scripts *scripting.Manager
	if cfg.Scripts.Dir != "" {
		scripts = scripting.NewManager(roller, logger)
		defer scripts.Close()
		if err := scripts.LoadDirectory(cfg.Scripts.Dir, cfg.Scripts.InstructionLimit); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		hooks = scripts
	}

	executor := effect.NewExecutor(store, roller, logger, hooks)
	caster := spellcasting.NewOrchestrator(store, executor, logger)
	manager := combat.NewManager(store, roller, executor, caster, logger)

	if scripts != nil {
		scripts.GetCombatant = func(id string) *scripting.CombatantInfo {
			s := manager.Combatant(id)
			if s == nil {
				return nil
			}
			info := &scripting.CombatantInfo{
				ID:    s.ID,
				Name:  s.Name,
				HP:    s.CurrentHP,
				MaxHP: s.MaxHPCalculated,
				AC:    s.ArmorClass,
			}
			for i := range s.ActiveConditions {
				if d := s.ActiveConditions[i].Definition; d != nil {
					info.Conditions = append(info.Conditions, d.ID)
				}
			}
			return info
		}
		scripts.ApplyDamage = func(id string, amount int, damageType string) error {
			s := manager.Combatant(id)
			if s == nil {
				return fmt.Errorf("unknown combatant %q", id)
			}
			res := resolve.ApplyDamage(s, []resolve.DamageInstance{{Amount: amount, Type: damageType}})
			s.TemporaryHP = res.NewTempHP
			s.CurrentHP = res.NewHP
			return nil
		}
		scripts.ApplyCondition = func(id, conditionID string) error {
			s := manager.Combatant(id)
			if s == nil {
				return fmt.Errorf("unknown combatant %q", id)
			}
			batch := &effect.Result{}
			return executor.ApplyConditionByID(batch, s, conditionID, "script", "", "", nil)
		}
	}

	sc, err := loadScenario(*scenarioPath)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}

	domain, err := ai.LoadDomain(*domainPath)
	if err != nil {
		logger.Fatal("loading HTN domain", zap.Error(err))
	}
	var caller ai.ScriptCaller
	if scripts != nil {
		caller = scripts
	}
	planner := ai.NewPlanner(domain, caller)

	teams := make(map[string]string, len(sc.Combatants))
	roster := make([]*creature.State, 0, len(sc.Combatants))
	for _, entry := range sc.Combatants {
		tpl, err := store.Creature(entry.Template)
		if err != nil {
			logger.Fatal("unknown creature template",
				zap.String("template", entry.Template),
				zap.Error(err),
			)
		}
		roster = append(roster, creature.FromTemplate(entry.ID, entry.Name, tpl))
		teams[entry.ID] = entry.Team
	}

	snap, err := manager.StartCombat(roster)
	if err != nil {
		logger.Fatal("starting combat", zap.Error(err))
	}
	printEvents(snap.Events, 0)
	seen := len(snap.Events)

	for snap != nil {
		if cfg.Engine.MaxRounds > 0 && snap.Round > cfg.Engine.MaxRounds {
			logger.Warn("round cap reached, aborting encounter", zap.Int("round", snap.Round))
			manager.EndCombat()
			break
		}

		actorID := snap.CurrentTurnCreatureID
		plan, err := planner.Plan(ai.BuildWorldState(snap, teams, actorID))
		if err != nil {
			logger.Fatal("planning turn", zap.Error(err))
		}
		for _, pa := range plan {
			res := manager.ProcessAction(toChoice(actorID, pa))
			if !res.Success {
				logger.Debug("planned action skipped",
					zap.String("actor", actorID),
					zap.String("action", pa.Action),
					zap.String("reason", res.Reason),
				)
			}
		}

		if cur := manager.GetCombatState(); cur != nil {
			printEvents(cur.Events, seen)
			seen = len(cur.Events)
		}

		snap = manager.ProgressToNextTurn()
		if snap != nil {
			printEvents(snap.Events, seen)
			seen = len(snap.Events)
		}
	}

	fmt.Println("encounter complete")
}

// toChoice maps a planned primitive action to an action submission.
func toChoice(actorID string, pa ai.PlannedAction) combat.ActionChoice {
	choice := combat.ActionChoice{ActorID: actorID}
	switch pa.Action {
	case "attack":
		choice.Type = combat.ActionAttack
		choice.Targets = combat.TargetInfo{CreatureIDs: []string{pa.Target}}
	case "dodge":
		choice.Type = combat.ActionDodge
	case "move":
		choice.Type = combat.ActionMove
	default:
		choice.Type = combat.ActionPassTurn
	}
	return choice
}

// printEvents writes every event at index >= from to stdout.
func printEvents(events []event.Event, from int) {
	for _, ev := range events[from:] {
		fmt.Printf("[round %d] %-20s %s\n", ev.Round, ev.Type, ev.Description)
	}
}
