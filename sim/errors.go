package sim

import "fmt"

// ArgumentError reports an option value that arrived dynamically (a CLI flag
// or a scenario attribute) and matched nothing the engine understands.
type ArgumentError struct {
	Name  string // option name, e.g. "strategy"
	Value string // the rejected value
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("sim: invalid %s %q", e.Name, e.Value)
}
