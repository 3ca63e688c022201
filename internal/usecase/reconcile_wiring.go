package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
)

// ReconcileWiring brings the on-chain cross-contract references in line with the
// desired wiring graph, writing only the edges that differ.
type ReconcileWiring struct {
	ops      *ContractOps
	store    RegistryStore
	graphs   WiringGraphSource
	progress ProgressSink
	log      *slog.Logger
}

// NewReconcileWiring creates a new wiring reconciler
func NewReconcileWiring(
	ops *ContractOps,
	store RegistryStore,
	graphs WiringGraphSource,
	progress ProgressSink,
	log *slog.Logger,
) *ReconcileWiring {
	if progress == nil {
		progress = NopProgress{}
	}
	return &ReconcileWiring{
		ops:      ops,
		store:    store,
		graphs:   graphs,
		progress: progress,
		log:      log,
	}
}

// WiringParams contains parameters for a wiring run
type WiringParams struct {
	// PlanOnly reads every edge and reports drift without sending transactions.
	PlanOnly bool
	// Contracts limits the run to edges owned by these contracts.
	Contracts []string
}

// WiringReport is the outcome of a wiring run. On failure it holds every edge
// reached before the failing one.
type WiringReport struct {
	Network      string              `json:"network"`
	PlanOnly     bool                `json:"planOnly,omitempty"`
	Results      []domain.EdgeResult `json:"results"`
	Transactions int                 `json:"transactions"`
}

// Count returns how many edges ended with the outcome.
func (r *WiringReport) Count(outcome domain.WiringOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Graph returns the validated wiring graph the reconciler works from.
func (w *ReconcileWiring) Graph(ctx context.Context) (domain.WiringGraph, error) {
	graph, err := w.graphs.Load(ctx)
	if err != nil {
		return domain.WiringGraph{}, fmt.Errorf("failed to load wiring graph: %w", err)
	}
	if err := graph.Validate(); err != nil {
		return domain.WiringGraph{}, fmt.Errorf("invalid wiring graph: %w", err)
	}
	return graph, nil
}

// Execute reconciles the graph edge by edge. A revert halts the run.
func (w *ReconcileWiring) Execute(ctx context.Context, params WiringParams) (*WiringReport, error) {
	network := w.ops.Network()

	graph, err := w.Graph(ctx)
	if err != nil {
		return nil, err
	}

	edges := graph.For(network)
	if len(params.Contracts) > 0 {
		edges = slices.DeleteFunc(edges, func(e domain.WiringEdge) bool {
			return !slices.Contains(params.Contracts, e.Contract)
		})
	}

	book, err := addressBookOrEmpty(w.store)
	if err != nil {
		return nil, err
	}
	if err := PreflightWiring(network, edges, book); err != nil {
		return nil, err
	}

	if !params.PlanOnly {
		if err := w.ops.ConfirmProduction(ctx, fmt.Sprintf("Reconcile %d wiring edges", len(edges))); err != nil {
			return nil, err
		}
	}

	report := &WiringReport{Network: network, PlanOnly: params.PlanOnly}
	for i, edge := range edges {
		target := EdgeTarget{
			Contract: edge.Contract,
			Getter:   edge.GetterSignature(),
			Setter:   edge.SetterSignature(),
		}
		target.Address, _ = book.Lookup(network, edge.Contract)
		target.Desired, _ = book.Lookup(network, edge.Target)
		if edge.Key != "" {
			key, _ := book.Lookup(network, edge.Key)
			target.Key = &key
		}

		w.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "edge_checking",
			Current: i + 1,
			Total:   len(edges),
			Message: edge.ID(),
			Spinner: true,
		})

		res, err := reconcileEdge(ctx, w.ops, target, params.PlanOnly)
		res.Edge = edge
		report.Results = append(report.Results, res)
		if res.Outcome == domain.WiringUpdated {
			report.Transactions++
		}
		if err != nil {
			return report, fmt.Errorf("wiring %s failed: %w", edge.ID(), err)
		}

		w.progress.OnProgress(ctx, ProgressEvent{
			Stage:    "edge_reconciled",
			Current:  i + 1,
			Total:    len(edges),
			Message:  fmt.Sprintf("%s: %s", edge.ID(), res.Outcome),
			Metadata: res,
		})
	}

	w.log.Debug("wiring reconciled", "network", network, "edges", len(edges), "transactions", report.Transactions)
	return report, nil
}

// PreflightWiring checks that every contract, target and key of the edges is recorded.
func PreflightWiring(network string, edges []domain.WiringEdge, book domain.AddressBook) error {
	var missing []domain.MissingKey
	seen := make(map[domain.MissingKey]bool)
	for _, edge := range edges {
		for _, key := range edge.Keys() {
			if _, ok := book.Lookup(network, key); ok {
				continue
			}
			m := domain.MissingKey{Consumer: edge.ID(), Key: key}
			if !seen[m] {
				seen[m] = true
				missing = append(missing, m)
			}
		}
	}
	if len(missing) > 0 {
		return &domain.MissingDependencyError{Network: network, Missing: missing}
	}
	return nil
}

// EdgeTarget is one resolved reference: the contract at Address must return Desired
// from Getter, called with Key when set.
type EdgeTarget struct {
	Contract string
	Address  common.Address
	Getter   string
	Setter   string
	Key      *common.Address
	Desired  common.Address
}

// reconcileEdge compares the getter with the desired address and calls the setter
// only when they differ.
func reconcileEdge(ctx context.Context, ops *ContractOps, t EdgeTarget, planOnly bool) (domain.EdgeResult, error) {
	res := domain.EdgeResult{Desired: t.Desired, Outcome: domain.WiringFailed}

	getter, err := bindings.AddressGetter(t.Getter)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	setter, err := bindings.Setter(t.Setter)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}

	var args []any
	if t.Key != nil {
		args = append(args, *t.Key)
	}

	var current common.Address
	if err := ops.Call(ctx, t.Address, getter, args, &current); err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Current = current

	if current == t.Desired {
		res.Outcome = domain.WiringInSync
		return res, nil
	}
	if planOnly {
		res.Outcome = domain.WiringDrift
		return res, nil
	}

	receipt, err := ops.Send(ctx, t.Contract, t.Address, setter, append(args, t.Desired)...)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Outcome = domain.WiringUpdated
	res.TxHash = receipt.TxHash
	return res, nil
}
