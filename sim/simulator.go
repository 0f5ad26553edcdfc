// Package sim executes membrane systems. It holds the mutable per-run
// Configuration, the rule-selection strategies, and the step loop that fires
// selected rules with communication and dissolution routing.
//
// "Maximal parallelism" is simulation semantics, not goroutines: membranes
// are processed sequentially against a read-current / write-next double
// buffer, so no membrane ever observes another membrane's same-step updates.
// Runs are single-threaded and fully deterministic except for the random
// strategy's one draw per eligible membrane per step, and even that becomes
// reproducible with a seeded source.
package sim

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/membrango/membrango/internal/ctxlog"
	"github.com/membrango/membrango/multiset"
	"github.com/membrango/membrango/psys"
)

// DefaultMaxSteps bounds a run when Options.MaxSteps is zero.
const DefaultMaxSteps = 100

// Rand is the subset of *math/rand/v2.Rand the random strategy draws from.
type Rand interface {
	IntN(n int) int
}

// NewSeededRand returns a deterministic source for reproducible
// random-strategy runs. Equal seeds yield equal draw sequences.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// globalRand falls back to the shared auto-seeded generator.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Options configure one run.
type Options struct {
	// MaxSteps bounds the run. Zero means DefaultMaxSteps; negative is an
	// error.
	MaxSteps int

	// Trace records a snapshot of the configuration before the first step
	// and after every executed step.
	Trace bool

	// Strategy picks the rule-selection discipline. The zero value is
	// StrategyMaximal.
	Strategy Strategy

	// HaltCondition, when non-nil, is evaluated against the current
	// configuration before every step; a true result stops the run with
	// Halted set.
	HaltCondition func(*Configuration) bool

	// Rand supplies the random strategy's draws. nil uses the shared
	// auto-seeded generator; NewSeededRand makes runs reproducible.
	Rand Rand
}

// Result is what one run produced.
type Result struct {
	// Final is the configuration the run stopped in.
	Final *Configuration

	// Trace holds ordered snapshots, the initial state first and one more
	// per executed step. nil unless Options.Trace was set.
	Trace []*Configuration

	// Steps is the number of steps executed.
	Steps int

	// Halted reports that the run stopped because nothing could fire or the
	// halt condition held; false means MaxSteps ran out first.
	Halted bool

	// Dropped counts non-empty productions and dissolution remainders that
	// had no live destination and were discarded.
	Dropped int
}

// Simulator drives one run of a validated System. The System itself is
// read-only and may back any number of concurrent Simulators; a Simulator
// and its Configuration must not be shared.
type Simulator struct {
	sys      *psys.System
	strategy Strategy
	maxSteps int
	trace    bool
	haltCond func(*Configuration) bool
	rand     Rand
	dropped  int
}

// New validates sys and the options and returns a Simulator ready to run.
// Strategy and MaxSteps problems surface here as ArgumentError, model
// problems as psys.ValidationError.
func New(sys *psys.System, opts Options) (*Simulator, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	switch opts.Strategy {
	case StrategyMaximal, StrategyRandom, StrategyFirst:
	default:
		return nil, &ArgumentError{Name: "strategy", Value: opts.Strategy.String()}
	}
	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	if maxSteps < 0 {
		return nil, &ArgumentError{Name: "max steps", Value: strconv.Itoa(opts.MaxSteps)}
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Simulator{
		sys:      sys,
		strategy: opts.Strategy,
		maxSteps: maxSteps,
		trace:    opts.Trace,
		haltCond: opts.HaltCondition,
		rand:     rnd,
	}, nil
}

// Dropped returns the number of discarded productions and remainders so far.
func (s *Simulator) Dropped() int {
	return s.dropped
}

// Step advances cfg by one synchronized evolution step. It returns false
// when cfg was already halted on entry and nothing was processed; true means
// a step was attempted, not that anything changed.
//
// Membranes are processed in declaration order. Each one reads its own
// current contents through a working copy and routes productions into
// next-step buffers, so no membrane sees another's same-step writes. After
// all membranes are processed, dissolved membranes are deactivated and the
// buffers replace the configuration's contents in one swap.
func (s *Simulator) Step(ctx context.Context, cfg *Configuration) bool {
	if IsHalted(cfg, s.sys) {
		return false
	}
	logger := ctxlog.FromContext(ctx)

	// Every membrane starts from its current contents; skipped membranes
	// carry them forward unchanged plus whatever other membranes route in.
	next := make(map[int]multiset.Multiset, len(cfg.contents))
	for id, ms := range cfg.contents {
		next[id] = ms
	}
	var dissolving []int

	for _, m := range s.sys.Membranes() {
		if !cfg.IsActive(m.ID) {
			continue
		}
		applicable := ApplicableRules(s.sys, cfg, m.ID)
		if len(applicable) == 0 {
			continue
		}
		instances := s.selectInstances(applicable, cfg.Multiset(m.ID))
		logger.Debug("firing membrane",
			"membrane", m.ID,
			"label", m.Label,
			"instances", len(instances),
		)

		working := cfg.Multiset(m.ID).Clone()
		dissolved := false
		for _, r := range instances {
			// Selection validated every instance against the pre-step
			// budget, and production never shrinks it, so this cannot fail.
			working, _ = working.Subtract(r.LHS)

			switch r.Target.Kind {
			case psys.TargetHere:
				working = working.Add(r.RHS)
			case psys.TargetOut:
				if m.Parent != psys.NoParent && cfg.IsActive(m.Parent) {
					next[m.Parent] = next[m.Parent].Add(r.RHS)
				} else {
					s.drop(logger, m.ID, r, r.RHS)
				}
			case psys.TargetIn:
				if cfg.IsActive(r.Target.Child) {
					next[r.Target.Child] = next[r.Target.Child].Add(r.RHS)
				} else {
					s.drop(logger, m.ID, r, r.RHS)
				}
			}

			if r.Dissolves {
				// The whole remainder cascades to the parent; the first
				// dissolve wins and ends this membrane's step.
				if m.Parent != psys.NoParent && cfg.IsActive(m.Parent) {
					next[m.Parent] = next[m.Parent].Add(working)
				} else {
					s.drop(logger, m.ID, r, working)
				}
				next[m.ID] = multiset.Multiset{}
				dissolving = append(dissolving, m.ID)
				dissolved = true
				break
			}
		}
		if !dissolved {
			// next[m.ID] still holds m's pre-step contents plus arrivals
			// from membranes processed earlier; keep the arrivals, swap the
			// pre-step contents for the worked result.
			arrivals, _ := next[m.ID].Subtract(cfg.Multiset(m.ID))
			next[m.ID] = working.Add(arrivals)
		}
	}

	for _, id := range dissolving {
		cfg.Dissolve(id)
	}
	cfg.contents = next
	cfg.steps++
	return true
}

// drop records a production or remainder with no live destination. The
// discard itself is deliberate model semantics, never an error; the counter
// exists so runs can report how much was lost.
func (s *Simulator) drop(logger *slog.Logger, membrane int, r *psys.Rule, ms multiset.Multiset) {
	if ms.IsEmpty() {
		return
	}
	s.dropped++
	logger.Debug("dropping production with no live destination",
		"membrane", membrane,
		"rule", r.String(),
		"target", r.Target.String(),
		"objects", ms.Cardinality(),
	)
}

// Run executes the loop: check the halt condition, step, snapshot, repeat
// until the configuration halts, the condition holds, or MaxSteps runs out.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("simulation starting",
		"strategy", s.strategy.String(),
		"max_steps", s.maxSteps,
		"membranes", len(s.sys.Membranes()),
		"rules", len(s.sys.Rules()),
	)

	cfg := NewConfiguration(s.sys)
	var trace []*Configuration
	if s.trace {
		trace = append(trace, cfg.Copy())
	}

	halted := false
	for cfg.Steps() < s.maxSteps {
		if s.haltCond != nil && s.haltCond(cfg) {
			halted = true
			break
		}
		if !s.Step(ctx, cfg) {
			halted = true
			break
		}
		if s.trace {
			trace = append(trace, cfg.Copy())
		}
	}

	logger.Debug("simulation finished",
		"steps", cfg.Steps(),
		"halted", halted,
		"dropped", s.dropped,
	)
	return &Result{
		Final:   cfg,
		Trace:   trace,
		Steps:   cfg.Steps(),
		Halted:  halted,
		Dropped: s.dropped,
	}, nil
}

// Simulate validates sys, builds a fresh Configuration, and runs it to
// completion under opts. ctx carries the logger only; there is deliberately
// no mid-step cancellation, the run's control points are MaxSteps and the
// halt condition.
func Simulate(ctx context.Context, sys *psys.System, opts Options) (*Result, error) {
	s, err := New(sys, opts)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
