// Package manifest loads declarative pipeline descriptions: the units with
// their input/output type maps, reducer bindings by built-in name, and the
// step sequence. A manifest is pure registration data, it carries no control
// flow.
//
// Example document:
//
//	units:
//	  - id: summarize
//	    input:
//	      cleaned: "[int]"
//	    output:
//	      summary: string
//	      tag: "[string]"
//	reducers:
//	  tag: concat
//	steps:
//	  - units: [summarize, classify]
package manifest

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/reducer"
	"github.com/wickerworks/osier/pkg/registry"
	"github.com/wickerworks/osier/pkg/schema"
)

// UnitDecl declares one unit's identity and data contract.
type UnitDecl struct {
	ID     string            `mapstructure:"id"`
	Input  map[string]string `mapstructure:"input"`
	Output map[string]string `mapstructure:"output"`
}

// StepDecl declares one step of the plan.
type StepDecl struct {
	Units []string `mapstructure:"units"`
}

// Manifest is a parsed pipeline description.
type Manifest struct {
	Units    []UnitDecl        `mapstructure:"units"`
	Reducers map[string]string `mapstructure:"reducers"`
	Steps    []StepDecl        `mapstructure:"steps"`
}

// Parse decodes a YAML manifest document.
// YAML is decoded into a generic map first and then mapped onto the typed
// structure, so unknown keys are reported instead of silently dropped.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest: invalid yaml: %w", err)
	}

	var m Manifest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &m,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	if len(m.Units) == 0 {
		return nil, fmt.Errorf("manifest: no units declared")
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return Parse(data)
}

// Build materializes the manifest into a validated registry and plan.
//
// fns binds unit IDs to their callables; a nil map (or missing entries)
// yields function-less registrations, which is enough for validation and
// graph rendering but not for execution.
func (m *Manifest) Build(fns map[string]registry.UnitFunc) (*registry.Registry, *domain.Plan, error) {
	reg := registry.New()

	for field, name := range m.Reducers {
		red, ok := reducer.Lookup(name)
		if !ok {
			return nil, nil, fmt.Errorf("manifest: field %q: unknown reducer %q", field, name)
		}
		reg.RegisterReducer(field, red)
	}

	for _, decl := range m.Units {
		input, err := schema.FromTypeMap(decl.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: unit %q input: %w", decl.ID, err)
		}
		output, err := schema.FromTypeMap(decl.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: unit %q output: %w", decl.ID, err)
		}
		if err := reg.Register(decl.ID, input, output, fns[decl.ID]); err != nil {
			return nil, nil, err
		}
	}

	plan := domain.NewPlan()
	for _, step := range m.Steps {
		plan.FanOut(step.Units...)
	}
	if err := reg.ValidatePlan(plan); err != nil {
		return nil, nil, err
	}

	return reg, plan, nil
}
