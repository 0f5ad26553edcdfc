// Package scenario loads HCL scenario manifests describing batches of
// simulation runs. A manifest holds one or more simulation blocks:
//
//	simulation "doubling" {
//	  model     = "models/doubling.pli"
//	  max_steps = 50
//	  strategy  = "maximal"
//	  trace     = true
//	  halt_when = ms(1, "done") > 0
//	}
//
// The model attribute names a model file relative to the manifest; inline
// embeds the model source directly. The halt_when expression is evaluated
// against the live configuration before every step, with the variable step
// and the functions ms(membrane, symbol), card(membrane), and
// active(membrane) in scope.
package scenario

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/membrango/membrango/sim"
)

// Run is one resolved simulation request. Exactly one of ModelPath and
// Source is set; the remaining fields are validated settings ready to be
// assembled into sim.Options by the caller.
type Run struct {
	Name      string
	ModelPath string // model file to read, empty for inline models
	Source    string // inline model source, empty when ModelPath is set
	MaxSteps  int
	Strategy  sim.Strategy
	Trace     bool
	Seed      *uint64   // nil when the manifest names no seed
	Halt      *HaltExpr // nil when the manifest names no halt_when
}

// fileRoot is the top-level structure of one scenario manifest file.
type fileRoot struct {
	Simulations []*simulationBlock `hcl:"simulation,block"`
}

// simulationBlock is the raw HCL shape of a simulation block. halt_when is
// kept as a whole attribute rather than an expression: gohcl fills absent
// expression fields with a synthetic null expression, while an absent
// attribute field stays nil, which is the presence signal resolve needs.
type simulationBlock struct {
	Name     string         `hcl:"name,label"`
	Model    string         `hcl:"model,optional"`
	Inline   string         `hcl:"inline,optional"`
	MaxSteps int            `hcl:"max_steps,optional"`
	Strategy string         `hcl:"strategy,optional"`
	Trace    bool           `hcl:"trace,optional"`
	Seed     *uint64        `hcl:"seed,optional"`
	HaltWhen *hcl.Attribute `hcl:"halt_when,optional"`
}
