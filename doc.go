// Package confdoc translates between an in-memory configuration
// namespace of typed Go values and a persisted, human-editable TOML
// document, keeping doc comments from the defining source attached to
// the generated entries.
//
// Features:
//   - Caller-owned ordered Namespace of named variables with defaults
//   - Token-level scanning of host-module source text to recover
//     declaration order and doc comments (no syntax tree is built)
//   - Recursive serialization of primitives, slices, string-keyed maps
//     and any value implementing the Serializable capability
//   - Document generation with preceding and inline comment placement
//   - Best-effort loading with per-field diagnostics instead of
//     fail-fast aborts
//   - Struct registration and struct decoding via mapstructure
//
// Quick Start:
//
//	ns := confdoc.NewNamespace()
//	ns.Register("host", "localhost")
//	ns.Register("port", 8080)
//	ns.Register("tags", []string{"primary"})
//
//	err := ns.Generate("config.toml", confdoc.DefaultGenerateOptions())
//	if err != nil {
//	    // handle
//	}
//
//	report, err := ns.Load("config.toml", confdoc.LoadOptions{})
//	if err != nil {
//	    // unreadable or unparsable document
//	}
//	for _, f := range report.Fields {
//	    // f.Path, f.Outcome, f.Err
//	}
//
// Concurrency:
// A Namespace is a single-writer resource. The engine holds no
// process-wide state and performs no internal locking; callers must
// not invoke Generate or Load concurrently against the same Namespace.
package confdoc
