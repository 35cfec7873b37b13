// Package graph renders plans as Mermaid flowcharts for documentation and
// the CLI's graph command.
package graph

import (
	"fmt"
	"strings"

	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/registry"
)

// GenerateMermaid produces a Mermaid flowchart for a plan.
// Steps are rendered as barrier nodes (circles) and units as subroutine
// boxes; a fan-out draws every unit of the step between two barriers. When a
// registry is supplied, unit labels include their output fields.
func GenerateMermaid(plan *domain.Plan, reg *registry.Registry) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((start))\n")

	prev := "start"
	for i, step := range plan.Steps() {
		join := fmt.Sprintf("merge%d", i)
		if i == plan.Len()-1 {
			join = "finish"
		}

		for _, unitID := range step.UnitIDs {
			safeID := sanitizeMermaidID(fmt.Sprintf("s%d_%s", i, unitID))
			label := unitID
			if reg != nil {
				if unit, ok := reg.Unit(unitID); ok && unit.Output.Len() > 0 {
					label = fmt.Sprintf("%s <br/> writes: %s", unitID, strings.Join(unit.Output.Names(), ", "))
				}
			}
			sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", safeID, label))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, safeID))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, join))
		}

		if i == plan.Len()-1 {
			sb.WriteString("    finish((finish))\n")
		} else {
			sb.WriteString(fmt.Sprintf("    %s((merge))\n", join))
		}
		prev = join
	}

	return sb.String()
}

// sanitizeMermaidID makes an identifier safe for Mermaid syntax.
func sanitizeMermaidID(id string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		" ", "_",
		"-", "_",
		".", "_",
	)
	return replacer.Replace(id)
}
