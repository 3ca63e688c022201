package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shieldworks/protect/internal/usecase"
)

// OpsRenderer renders the results of operational tasks
type OpsRenderer struct {
	out   io.Writer
	color bool
}

// NewOpsRenderer creates a new ops renderer
func NewOpsRenderer(out io.Writer, color bool) *OpsRenderer {
	return &OpsRenderer{out: out, color: color}
}

// numeric reports whether a field value looks like an amount worth grouping.
func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range strings.TrimPrefix(s, "-") {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}

// RenderFields renders named values as a two-column table
func (r *OpsRenderer) RenderFields(fields []usecase.Field) {
	if len(fields) == 0 {
		return
	}
	t := newTable(r.out)
	for _, f := range fields {
		value := f.Value
		if numeric(value) {
			value = GroupDigits(value)
		}
		t.AppendRow(table.Row{faintStyle.Sprint(f.Name), value})
	}
	t.Render()
}

func (r *OpsRenderer) tx(hash common.Hash) {
	if hash != (common.Hash{}) {
		fmt.Fprintf(r.out, "%s %s\n", faintStyle.Sprint("tx"), hash.Hex())
	}
}

// RenderProposal renders a proposal operation
func (r *OpsRenderer) RenderProposal(result *usecase.ProposalResult) error {
	r.tx(result.TxHash)
	rec := result.Record
	fmt.Fprintf(r.out, "Proposal %s %s\n", nameStyle.Sprint("#"+result.ID), rec.Name)
	r.RenderFields([]usecase.Field{
		{Name: "token", Value: rec.Token},
		{Name: "capacity", Value: rec.Capacity},
		{Name: "premium", Value: rec.Premium},
		{Name: "proposer", Value: rec.Proposer},
		{Name: "status", Value: rec.Status},
	})
	if len(result.Details) > 0 {
		section(r.out, "On chain")
		r.RenderFields(result.Details)
	}
	return nil
}

// RenderReport renders an incident report operation
func (r *OpsRenderer) RenderReport(result *usecase.ReportResult) error {
	r.tx(result.TxHash)
	if result.ID != "" {
		rec := result.Record
		fmt.Fprintf(r.out, "Report %s on pool %s\n", nameStyle.Sprint("#"+result.ID), rec.PoolID)
		r.RenderFields([]usecase.Field{
			{Name: "payout", Value: rec.Payout},
			{Name: "reporter", Value: rec.Reporter},
			{Name: "status", Value: rec.Status},
		})
	}
	if result.VotingPeriod != "" {
		fmt.Fprintf(r.out, "Voting period %s\n", result.VotingPeriod)
	}
	if len(result.Details) > 0 {
		section(r.out, "On chain")
		r.RenderFields(result.Details)
	}
	if len(result.References) > 0 {
		section(r.out, "References")
		t := newTable(r.out)
		for _, name := range sortedKeys(result.References) {
			t.AppendRow(table.Row{nameStyle.Sprint(name), addressStyle.Sprint(result.References[name].Hex())})
		}
		t.Render()
	}
	if result.Executed {
		fmt.Fprintln(r.out, FormatSuccess("Report executed"))
	}
	if result.Reported {
		fmt.Fprintln(r.out, FormatWarning("Pool is currently reported"))
	}
	return nil
}

// RenderPool renders a pool operation
func (r *OpsRenderer) RenderPool(result *usecase.PoolResult) error {
	for _, hash := range result.TxHashes {
		r.tx(hash)
	}
	if result.Approved {
		fmt.Fprintln(r.out, FormatSuccess("Pool token approved"))
	}
	if p := result.Pool; p != nil {
		fmt.Fprintf(r.out, "Pool %s %s\n", nameStyle.Sprint("#"+p.ID), p.Name)
		r.RenderFields([]usecase.Field{
			{Name: "address", Value: p.Address.Hex()},
			{Name: "token", Value: p.Token.Hex()},
			{Name: "capacity", Value: p.Capacity},
			{Name: "premium", Value: p.Premium},
		})
	}
	r.RenderFields(result.Metrics)
	return nil
}

// RenderPoolList renders the on-chain pools next to the local list
func (r *OpsRenderer) RenderPoolList(list *usecase.PoolList) error {
	local := make(map[common.Address]string, len(list.Local))
	for _, rec := range list.Local {
		local[common.HexToAddress(rec.PoolAddress)] = rec.Name
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "POOL", "NAME"})
	for i, addr := range list.OnChain {
		name, ok := local[addr]
		if !ok {
			name = warningStyle.Sprint("not in local list")
		}
		t.AppendRow(table.Row{i + 1, addressStyle.Sprint(addr.Hex()), name})
	}
	t.Render()
	return nil
}

// RenderFarming renders a farming operation
func (r *OpsRenderer) RenderFarming(result *usecase.FarmingResult) error {
	r.tx(result.TxHash)
	if result.PoolID != "" {
		fmt.Fprintf(r.out, "Farming pool %s\n", nameStyle.Sprint("#"+result.PoolID))
	}
	r.RenderFields(result.Metrics)
	return nil
}

// RenderToken renders a token operation
func (r *OpsRenderer) RenderToken(result *usecase.TokenResult) error {
	r.tx(result.TxHash)
	symbol := result.Symbol
	if symbol == "" {
		symbol = result.Token
	}
	if result.Amount != "" {
		fmt.Fprintf(r.out, "%s %s %s to %s\n", successStyle.Sprint("✓"), GroupDigits(result.Amount), symbol, result.Holder.Hex())
	}
	if result.Balance != "" {
		fmt.Fprintf(r.out, "Balance of %s: %s %s\n", result.Holder.Hex(), GroupDigits(result.Balance), symbol)
	}
	return nil
}

// RenderPolicy renders a policy center operation
func (r *OpsRenderer) RenderPolicy(result *usecase.PolicyResult) error {
	r.tx(result.TxHash)
	if e := result.Edge; e != nil {
		fmt.Fprintf(r.out, "%s %s -> %s\n", e.Outcome, e.Current.Hex(), e.Desired.Hex())
	}
	r.RenderFields(result.Metrics)
	return nil
}

// RenderPrepare renders local preparation. Steps that finished before a failure are
// still shown.
func (r *OpsRenderer) RenderPrepare(result *usecase.PrepareResult, runErr error) error {
	if result == nil {
		return nil
	}
	section(r.out, "Minted")
	for _, m := range result.Minted {
		if err := r.RenderToken(m); err != nil {
			return err
		}
	}
	if result.Wiring != nil {
		section(r.out, "Wiring")
		if err := NewWiringRenderer(r.out, r.color).RenderReport(result.Wiring, nil); err != nil {
			return err
		}
	}
	if result.Pool != nil {
		section(r.out, "Pool")
		if err := r.RenderPool(result.Pool); err != nil {
			return err
		}
	}
	fmt.Fprintln(r.out)
	if runErr != nil {
		fmt.Fprintln(r.out, FormatError(runErr.Error()))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess("Local network prepared"))
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
