package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/usecase"
)

// DeployRenderer renders deployment plans and results
type DeployRenderer struct {
	out   io.Writer
	color bool
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, color bool) *DeployRenderer {
	return &DeployRenderer{out: out, color: color}
}

// RenderPlan renders the ordered plan with each step's action
func (r *DeployRenderer) RenderPlan(plan *usecase.DeploymentPlan) error {
	fmt.Fprintf(r.out, "Deployment plan for %s (%d units)\n", networkHeader.Sprintf(" %s ", plan.Network), len(plan.Steps))

	section(r.out, "Tokens")
	r.renderTokens(plan.Tokens)

	section(r.out, "Steps")
	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "UNIT", "MODE", "ACTION", "DEPENDS ON", "ADDRESS"})
	for i, step := range plan.Steps {
		address := ""
		if step.Recorded {
			address = addressStyle.Sprint(step.Address.Hex())
		}
		t.AppendRow(table.Row{
			i + 1,
			nameStyle.Sprint(step.Name),
			r.mode(step.Mode),
			r.action(step.Action),
			faintStyle.Sprint(strings.Join(step.Dependencies, ", ")),
			address,
		})
	}
	t.Render()
	return nil
}

// RenderResult renders what a run did. A failed run still lists every unit
// that completed before the failure.
func (r *DeployRenderer) RenderResult(result *usecase.DeployResult, runErr error) error {
	if result == nil {
		return nil
	}
	if result.DryRun {
		if err := r.RenderPlan(result.Plan); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, warningStyle.Sprint("Dry run: nothing was sent"))
		return nil
	}

	fmt.Fprintln(r.out)
	t := newTable(r.out)
	t.AppendHeader(table.Row{"UNIT", "STATE", "ADDRESS", "IMPLEMENTATION"})
	for _, u := range result.Units {
		impl := ""
		if u.Implementation != (common.Address{}) {
			impl = faintStyle.Sprint(u.Implementation.Hex())
		}
		t.AppendRow(table.Row{nameStyle.Sprint(u.Unit), r.state(u), addressStyle.Sprint(u.Address.Hex()), impl})
	}
	t.Render()

	fmt.Fprintln(r.out)
	deployed, skipped := 0, 0
	for _, u := range result.Units {
		switch u.State {
		case domain.UnitRecorded:
			deployed++
		case domain.UnitSkipped:
			skipped++
		}
	}
	summary := fmt.Sprintf("%d deployed, %d skipped", deployed, skipped)
	if runErr != nil || !result.Success {
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("Deployment stopped at %s (%s)", result.FailedUnit, summary)))
		fmt.Fprintf(r.out, "Run id %s. Fix the problem and rerun with --resume.\n", result.RunID)
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployment completed (%s)", summary)))
	return nil
}

// RenderUnits lists the deploy catalog
func (r *DeployRenderer) RenderUnits(catalog domain.Catalog, network string) error {
	t := newTable(r.out)
	t.AppendHeader(table.Row{"UNIT", "ARTIFACT", "MODE", "TAGS", "ARGS"})
	for _, u := range catalog {
		if !u.AppliesTo(network) {
			continue
		}
		args := make([]string, len(u.Args))
		for i, a := range u.Args {
			args[i] = a.String()
		}
		t.AppendRow(table.Row{
			nameStyle.Sprint(u.Name),
			u.ArtifactName(),
			r.mode(u.Mode),
			faintStyle.Sprint(strings.Join(u.Tags, ",")),
			strings.Join(args, ", "),
		})
	}
	t.Render()
	return nil
}

func (r *DeployRenderer) renderTokens(tokens domain.ExternalTokens) {
	t := newTable(r.out)
	for _, role := range domain.TokenRoles {
		t.AppendRow(table.Row{string(role), addressStyle.Sprint(tokens.ByRole(role).Hex())})
	}
	t.Render()
}

func (r *DeployRenderer) mode(m domain.DeployMode) string {
	if m == domain.ModeProxied {
		return proxiedStyle.Sprint(m)
	}
	return string(m)
}

func (r *DeployRenderer) action(a usecase.PlanAction) string {
	switch a {
	case usecase.ActionSkip:
		return faintStyle.Sprint(a)
	case usecase.ActionUpgrade, usecase.ActionRedeploy:
		return warningStyle.Sprint(a)
	default:
		return successStyle.Sprint(a)
	}
}

func (r *DeployRenderer) state(u domain.UnitResult) string {
	switch u.State {
	case domain.UnitRecorded:
		if u.Upgraded {
			return successStyle.Sprint("upgraded")
		}
		return successStyle.Sprint(u.State)
	case domain.UnitSkipped:
		return faintStyle.Sprint(u.State)
	case domain.UnitFailed:
		return errorStyle.Sprint(u.State)
	default:
		return warningStyle.Sprint(u.State)
	}
}

// RenderRunState renders the persisted state of a deployment run
func (r *DeployRenderer) RenderRunState(state *usecase.DeployRunState) error {
	status := successStyle.Sprint(state.Status)
	if state.FailedUnit != "" {
		status = errorStyle.Sprint(state.Status)
	}
	fmt.Fprintf(r.out, "Run %s on %s: %s\n", state.RunID, networkHeader.Sprintf(" %s ", state.Network), status)
	fmt.Fprintf(r.out, "Started %s, updated %s\n",
		state.StartedAt.Format("2006-01-02 15:04:05"),
		state.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "UNIT", "STATE"})
	for i, name := range state.Plan {
		s := state.Units[name]
		if s == "" {
			s = domain.UnitPending
		}
		t.AppendRow(table.Row{i + 1, nameStyle.Sprint(name), r.state(domain.UnitResult{State: s})})
	}
	t.Render()

	if state.Error != "" {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("%s failed: %s", state.FailedUnit, state.Error)))
	}
	return nil
}
