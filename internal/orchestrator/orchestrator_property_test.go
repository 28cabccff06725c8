//go:build property

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/uiforge/internal/generator"
	"github.com/conneroisu/uiforge/internal/types"
)

// flaky fails every prompt that starts with "fail".
var flaky = generator.ClientFunc(func(_ context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	if strings.HasPrefix(req.Prompt, "fail") {
		return nil, errors.New("backend down")
	}
	return &types.GenerateResponse{Code: "<Card/>", Explanation: req.Prompt}, nil
})

// step encodes one operation: 0 submits, 1 submits a failing prompt,
// 2 clears, anything larger rolls back to step-3.
func run(o *Orchestrator, step int) {
	ctx := context.Background()
	switch {
	case step == 0:
		o.Submit(ctx, "ok")
	case step == 1:
		o.Submit(ctx, "fail")
	case step == 2:
		o.ClearAll(ctx)
	default:
		_ = o.Rollback(ctx, step-3)
	}
}

func TestOrchestratorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 150

	properties := gopter.NewProperties(parameters)

	properties.Property("current index stays valid", prop.ForAll(
		func(steps []int) bool {
			o := New(flaky)
			for _, s := range steps {
				run(o, s)
				st := o.Snapshot()
				if len(st.Versions) == 0 && st.CurrentIndex != -1 {
					return false
				}
				if len(st.Versions) > 0 && (st.CurrentIndex < 0 || st.CurrentIndex >= len(st.Versions)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 7)),
	))

	properties.Property("versions are append-only between clears", prop.ForAll(
		func(steps []int) bool {
			o := New(flaky)
			var prev []types.GenerationResult
			for _, s := range steps {
				run(o, s)
				cur := o.Snapshot().Versions
				if s == 2 {
					if len(cur) != 0 {
						return false
					}
					prev = nil
					continue
				}
				if len(cur) < len(prev) {
					return false
				}
				for i := range prev {
					if cur[i].ID != prev[i].ID {
						return false
					}
				}
				prev = cur
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 7)),
	))

	properties.Property("every submission ends idle", prop.ForAll(
		func(steps []int) bool {
			o := New(flaky)
			for _, s := range steps {
				run(o, s)
				if st := o.Snapshot(); st.Loading || st.Phase != PhaseIdle {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 7)),
	))

	properties.Property("failures never add versions", prop.ForAll(
		func(n int) bool {
			o := New(flaky)
			for i := 0; i < n; i++ {
				o.Submit(context.Background(), "fail")
			}
			st := o.Snapshot()
			return len(st.Versions) == 0 && len(st.Messages) == 2*n
		},
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
