package converter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/jsregex/internal/treegen"
	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
)

// capturingGroups counts the groups in a JavaScript pattern that allocate a
// group number.
func capturingGroups(source string) int {
	count := 0
	inSet := false
	for i := 0; i < len(source); i++ {
		switch ch := source[i]; {
		case ch == '\\':
			i++
		case inSet:
			if ch == ']' {
				inSet = false
			}
		case ch == '[':
			inSet = true
		case ch == '(':
			rest := source[i+1:]
			switch {
			case !strings.HasPrefix(rest, "?"):
				count++
			case strings.HasPrefix(rest, "?<") && !strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!"):
				count++
			}
		}
	}
	return count
}

func checkConversion(t *testing.T, seed uint64, profile treegen.Profile, opts converter.Options) {
	t.Helper()

	tree, err := treegen.New(seed, profile).Tree()
	require.NoError(t, err)

	var result converter.Result
	require.NotPanics(t, func() { result = converter.Convert(tree, opts) }, tree.Pattern)

	again := converter.Convert(tree, opts)
	assert.Equal(t, result, again, tree.Pattern)

	assert.GreaterOrEqual(t, result.SyntheticGroups, 0)
	assert.GreaterOrEqual(t, result.CapturingGroups, result.SyntheticGroups, tree.Pattern)
	assert.Equal(t, result.CapturingGroups, capturingGroups(result.Source), "%s => %s", tree.Pattern, result.Source)
	assert.NotContains(t, result.Source, "\n", tree.Pattern)
}

func TestCapturingGroups(t *testing.T) {
	cases := map[string]int{
		``:                    0,
		`(a)(?:b)`:            1,
		`(?<x>a)(?<=b)(?<!c)`: 1,
		`\(a\)[(]`:            0,
		`(?=(a))\1(?:)`:       1,
		`[\]()](b)`:           1,
	}
	for source, want := range cases {
		assert.Equal(t, want, capturingGroups(source), source)
	}
}

func TestGeneratedTrees(t *testing.T) {
	targets := []converter.Options{
		es2009,
		es2015,
		es2018,
		{Target: converter.ES2018, EmulatePossessive: true},
	}
	for _, profile := range treegen.Profiles() {
		t.Run(profile.Name, func(t *testing.T) {
			for seed := range uint64(50) {
				for _, opts := range targets {
					checkConversion(t, seed, profile, opts)
				}
			}
		})
	}
}

func FuzzConvert(f *testing.F) {
	for seed := range uint64(8) {
		f.Add(seed, uint8(0), false)
	}
	f.Add(uint64(99), uint8(2), true)

	profiles := treegen.Profiles()
	f.Fuzz(func(t *testing.T, seed uint64, target uint8, emulate bool) {
		opts := converter.Options{
			Target:            converter.Target(int(target) % 3),
			EmulatePossessive: emulate,
		}
		checkConversion(t, seed, profiles[seed%uint64(len(profiles))], opts)
	})
}
