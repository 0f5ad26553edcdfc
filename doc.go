// Package membrango hosts a P system (membrane computing) simulator.
//
// The public packages form the library surface:
//
//   - multiset: the symbol-multiplicity algebra rules consume and produce.
//   - psys: the static model, membranes and rules aggregated into a
//     validated System.
//   - plingua: the model language; plingua.Parse turns P-Lingua style
//     source into a psys.System.
//   - sim: per-run state and execution, selection strategies, halt
//     detection, tracing.
//
// Everything operational (scenario manifests, the app lifecycle, flag
// parsing) lives under internal/, and cmd/membrango carries the binary.
package membrango
