package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/usecase"
)

// RegistryRenderer renders registry documents and edits
type RegistryRenderer struct {
	out   io.Writer
	color bool
}

// NewRegistryRenderer creates a new registry renderer
func NewRegistryRenderer(out io.Writer, color bool) *RegistryRenderer {
	return &RegistryRenderer{out: out, color: color}
}

// RenderShow renders one registry document grouped by network
func (r *RegistryRenderer) RenderShow(result *usecase.ShowRegistryResult) error {
	switch doc := result.Document.(type) {
	case domain.AddressBook:
		r.renderAddressBook(doc)
	case domain.RecordSet[domain.ProposalRecord]:
		renderRecords(r, doc, table.Row{"ID", "NAME", "TOKEN", "CAPACITY", "PREMIUM", "STATUS"},
			func(p domain.ProposalRecord) table.Row {
				return table.Row{p.ID, nameStyle.Sprint(p.Name), p.Token, GroupDigits(p.Capacity), p.Premium, p.Status}
			})
	case domain.RecordSet[domain.ReportRecord]:
		renderRecords(r, doc, table.Row{"ID", "POOL", "PAYOUT", "REPORTER", "STATUS"},
			func(p domain.ReportRecord) table.Row {
				return table.Row{p.ID, p.PoolID, GroupDigits(p.Payout), p.Reporter, p.Status}
			})
	case domain.RecordSet[domain.PriorityPoolRecord]:
		renderRecords(r, doc, table.Row{"ID", "NAME", "POOL", "TOKEN", "PREMIUM"},
			func(p domain.PriorityPoolRecord) table.Row {
				return table.Row{p.ID, nameStyle.Sprint(p.Name), addressStyle.Sprint(p.PoolAddress), p.Token, p.Premium}
			})
	case domain.RecordSet[domain.ILMRecord]:
		renderRecords(r, doc, table.Row{"ID", "NAME", "TOKEN", "ADDRESS"},
			func(p domain.ILMRecord) table.Row {
				return table.Row{p.ID, nameStyle.Sprint(p.Name), p.Token, p.Address}
			})
	default:
		return PrintJSON(r.out, result.Document)
	}
	return nil
}

func (r *RegistryRenderer) renderAddressBook(book domain.AddressBook) {
	networks := book.Networks()
	if len(networks) == 0 {
		fmt.Fprintln(r.out, "No addresses recorded")
		return
	}
	for i, network := range networks {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintln(r.out, networkHeader.Sprintf(" %s ", network))
		t := newTable(r.out)
		for _, name := range book.Names(network) {
			addr, _ := book.Lookup(network, name)
			t.AppendRow(table.Row{nameStyle.Sprint(name), addressStyle.Sprint(addr.Hex())})
		}
		t.Render()
	}
}

func renderRecords[T domain.Record](r *RegistryRenderer, set domain.RecordSet[T], header table.Row, row func(T) table.Row) {
	networks := make([]string, 0, len(set))
	for network := range set {
		networks = append(networks, network)
	}
	sort.Strings(networks)
	if len(networks) == 0 {
		fmt.Fprintln(r.out, "No records")
		return
	}

	for i, network := range networks {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintln(r.out, networkHeader.Sprintf(" %s ", network))
		t := newTable(r.out)
		t.AppendHeader(header)
		for _, id := range set.IDs(network) {
			rec, _ := set.Get(network, id)
			t.AppendRow(row(rec))
		}
		t.Render()
	}
}

// RenderInit lists the documents written and kept
func (r *RegistryRenderer) RenderInit(result *usecase.InitRegistryResult) error {
	for _, path := range result.Written {
		fmt.Fprintln(r.out, FormatSuccess("Wrote "+path))
	}
	for _, path := range result.Kept {
		fmt.Fprintln(r.out, faintStyle.Sprintf("Kept %s (use --force to overwrite)", path))
	}
	return nil
}

// RenderSet renders a manual edit
func (r *RegistryRenderer) RenderSet(result *usecase.SetRegistryEntryResult) error {
	switch {
	case result.Current == nil:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %s from %s (was %s)", result.Name, result.Network, result.Previous.Hex())))
	case result.Previous != nil && *result.Previous != *result.Current:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Updated %s on %s: %s -> %s", result.Name, result.Network, result.Previous.Hex(), result.Current.Hex())))
	default:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Recorded %s on %s at %s", result.Name, result.Network, result.Current.Hex())))
	}
	return nil
}

// RenderChange renders one observed registry change
func (r *RegistryRenderer) RenderChange(change usecase.RegistryChange) {
	fmt.Fprintf(r.out, "%s %s changed\n", warningStyle.Sprint("●"), nameStyle.Sprint(change.Kind))
}
