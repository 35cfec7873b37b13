package observability

import (
	"context"

	"github.com/wickerworks/osier/pkg/domain"
)

// Multi combines multiple LifecycleHooks into one. Callbacks fire in argument
// order; nil callbacks are skipped.
func Multi(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, ev *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, ev)
				}
			}
		},
		OnRunFinish: func(ctx context.Context, ev *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunFinish != nil {
					h.OnRunFinish(ctx, ev)
				}
			}
		},
		OnStepStart: func(ctx context.Context, ev *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStepStart != nil {
					h.OnStepStart(ctx, ev)
				}
			}
		},
		OnStepMerge: func(ctx context.Context, ev *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStepMerge != nil {
					h.OnStepMerge(ctx, ev)
				}
			}
		},
		OnUnitStart: func(ctx context.Context, ev *domain.UnitEvent) {
			for _, h := range hooks {
				if h.OnUnitStart != nil {
					h.OnUnitStart(ctx, ev)
				}
			}
		},
		OnUnitFinish: func(ctx context.Context, ev *domain.UnitEvent) {
			for _, h := range hooks {
				if h.OnUnitFinish != nil {
					h.OnUnitFinish(ctx, ev)
				}
			}
		},
	}
}
