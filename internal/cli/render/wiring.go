package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/usecase"
)

// WiringRenderer renders wiring reports
type WiringRenderer struct {
	out   io.Writer
	color bool
}

// NewWiringRenderer creates a new wiring renderer
func NewWiringRenderer(out io.Writer, color bool) *WiringRenderer {
	return &WiringRenderer{out: out, color: color}
}

// RenderReport renders every checked edge. A failed run still lists the edges
// reconciled before the failure.
func (r *WiringRenderer) RenderReport(report *usecase.WiringReport, runErr error) error {
	if report == nil {
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"EDGE", "OUTCOME", "CURRENT", "DESIRED", "TX"})
	for _, res := range report.Results {
		tx := ""
		if res.TxHash != (common.Hash{}) {
			tx = faintStyle.Sprint(res.TxHash.Hex())
		}
		t.AppendRow(table.Row{res.Edge.ID(), r.outcome(res.Outcome), res.Current.Hex(), res.Desired.Hex(), tx})
	}
	t.Render()

	fmt.Fprintln(r.out)
	summary := fmt.Sprintf("%d in sync, %d updated, %d drifted, %d transactions",
		report.Count(domain.WiringInSync),
		report.Count(domain.WiringUpdated),
		report.Count(domain.WiringDrift),
		report.Transactions,
	)
	switch {
	case runErr != nil:
		fmt.Fprintln(r.out, FormatError("Wiring stopped: "+summary))
	case report.PlanOnly && report.Count(domain.WiringDrift) > 0:
		fmt.Fprintln(r.out, warningStyle.Sprint("⚠️  "+summary+"; run `wire sync` to apply"))
	default:
		fmt.Fprintln(r.out, FormatSuccess(summary))
	}
	return nil
}

func (r *WiringRenderer) outcome(o domain.WiringOutcome) string {
	switch o {
	case domain.WiringInSync:
		return faintStyle.Sprint(o)
	case domain.WiringUpdated:
		return successStyle.Sprint(o)
	case domain.WiringDrift:
		return warningStyle.Sprint(o)
	default:
		return errorStyle.Sprint(o)
	}
}
