package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shieldworks/protect/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out   io.Writer
	color bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, color bool) *NetworksRenderer {
	return &NetworksRenderer{
		out:   out,
		color: color,
	}
}

// RenderNetworksList renders the network table with each network's env status
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"", "NETWORK", "CHAIN ID", "RPC", "SIGNER", "RECORDED", ""})
	for _, n := range result.Networks {
		marker := " "
		if n.Spec.Name == result.Current {
			marker = "*"
		}

		rpc := n.Spec.RPCURL
		if rpc == "" {
			rpc = "$" + n.Spec.RPCURLEnv
		}
		signer := string(n.Spec.Signer.Kind)
		if n.Spec.Signer.Env != "" {
			signer += " ($" + n.Spec.Signer.Env + ")"
		}

		name := n.Spec.Name
		if n.Spec.Production {
			name += " " + warningStyle.Sprint("[production]")
		}

		status := successStyle.Sprint("✅")
		if n.Error != nil {
			status = errorStyle.Sprintf("❌ %v", n.Error)
		}

		t.AppendRow(table.Row{marker, name, n.Spec.ChainID, rpc, signer, n.Recorded, status})
	}
	t.Render()
	return nil
}
