// Package jsregex converts parsed Ruby (Onigmo) regular expressions into
// JavaScript RegExp source and flags.
//
// # Overview
//
// The input is a syntax tree, built in Go with the helpers in package syntax
// or decoded from a JSON or YAML tree document. Parsing pattern text is left
// to the caller. The output is a pattern string, a flags string and a list
// of warnings describing every construct that was approximated, ignored or
// dropped. A conversion never fails because of an unsupported construct.
//
// # Quick Start
//
//	engine := jsregex.NewEngine(jsregex.WithOptions(converter.Options{
//		Target: converter.ES2018,
//	}))
//
//	tree := syntax.NewTree(syntax.Seq(
//		syntax.Atomic(syntax.Plus(syntax.Lit("a"))),
//		syntax.Capture(syntax.Lit("b")),
//		syntax.Ref(1),
//	), 0)
//
//	conv, err := engine.Convert(tree)
//	if err != nil {
//		return err
//	}
//	fmt.Printf("/%s/%s\n", conv.Source, conv.Flags) // /(?=(a+))\1(?:)(b)\2/
//
// # Atomic Groups
//
// JavaScript has no atomic groups or possessive quantifiers. An atomic group
// (?>X) is emulated as (?=(X))\N(?:): the lookahead matches X once, captures
// it, and the backreference consumes exactly that text. The capturing group
// added this way shifts the number of every later group, so backreferences
// in the output are renumbered to keep pointing at the groups they named in
// the input.
//
// # Architecture
//
//   - Engine: limits, batch conversion, event dispatch and metrics
//   - syntax: tree nodes, builders and document decoding
//   - converter: the conversion context and per-node converters
//   - handlers: pluggable consumers of conversion and warning events
//   - metrics: Prometheus conversion metrics and HTTP statistics
//   - server: HTTP and WebSocket conversion service
//   - config: file and environment configuration
package jsregex
