package jsregex

import (
	"context"
	"runtime"
	"testing"

	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func benchmarkTree() *syntax.Tree {
	return syntax.NewTree(syntax.Seq(
		syntax.At(syntax.AnchorLineStart),
		syntax.Named("word", syntax.Plus(syntax.Chars(syntax.CharWord))),
		syntax.Atomic(syntax.Star(syntax.CharSet(syntax.Span('a', 'z'), syntax.Chars(syntax.CharNonSpace)))),
		syntax.Repeat(syntax.Lit("x"), 1, -1, syntax.Possessive),
		syntax.Prop("Greek"),
		syntax.RefName("word"),
	), syntax.IgnoreCase)
}

// BenchmarkEngineCreation benchmarks the time it takes to create a new engine
func BenchmarkEngineCreation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		engine := NewEngine()
		_ = engine
	}
}

// BenchmarkConvert benchmarks a single conversion through the engine
func BenchmarkConvert(b *testing.B) {
	engine := NewEngine(WithOptions(converter.Options{Target: converter.ES2018, EmulatePossessive: true}))
	tree := benchmarkTree()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Convert(tree); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConvertDocument includes decoding the JSON document
func BenchmarkConvertDocument(b *testing.B) {
	engine := NewEngine()
	doc := []byte(`{"flags": "i", "root": {"kind": "sequence", "children": [
		{"kind": "group", "type": "atomic", "children": [{"kind": "literal", "value": "a", "quantifier": {"min": 1, "max": -1}}]},
		{"kind": "group", "type": "capture", "children": [{"kind": "literal", "value": "b"}]},
		{"kind": "backreference", "number": 1}
	]}}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.ConvertDocument(doc, syntax.FormatJSON); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConcurrentConvert benchmarks conversions from many goroutines
func BenchmarkConcurrentConvert(b *testing.B) {
	engine := NewEngine()
	tree := benchmarkTree()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.Convert(tree); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchmarkConvertBatch benchmarks a full batch
func BenchmarkConvertBatch(b *testing.B) {
	engine := NewEngine()
	trees := make([]*syntax.Tree, DefaultLimits().MaxBatchSize)
	for i := range trees {
		trees[i] = benchmarkTree()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.ConvertBatch(context.Background(), trees); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMemoryUsage reports bytes allocated per conversion
func BenchmarkMemoryUsage(b *testing.B) {
	engine := NewEngine()
	tree := benchmarkTree()

	runtime.GC()
	var m1 runtime.MemStats
	runtime.ReadMemStats(&m1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Convert(tree)
	}
	b.StopTimer()

	var m2 runtime.MemStats
	runtime.ReadMemStats(&m2)
	b.ReportMetric(float64(m2.TotalAlloc-m1.TotalAlloc)/float64(b.N), "alloc-bytes/op")
}
