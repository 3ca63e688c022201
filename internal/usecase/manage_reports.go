package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
)

// ManageReports runs the incident report lifecycle and mirrors each report into
// the local report list.
type ManageReports struct {
	ops   *ContractOps
	store RegistryStore
}

// NewManageReports creates a new report manager
func NewManageReports(ops *ContractOps, store RegistryStore) *ManageReports {
	return &ManageReports{ops: ops, store: store}
}

// ReportResult is the outcome of a report operation
type ReportResult struct {
	ID           string                    `json:"id"`
	TxHash       common.Hash               `json:"txHash,omitempty"`
	Record       domain.ReportRecord       `json:"record"`
	Details      []Field                   `json:"details,omitempty"`
	VotingPeriod string                    `json:"votingPeriod,omitempty"`
	References   map[string]common.Address `json:"references,omitempty"`
	Executed     bool                      `json:"executed,omitempty"`
	Reported     bool                      `json:"reported,omitempty"`
}

// Vote choices accepted by IncidentReport.vote.
const (
	VoteFor     = 1
	VoteAgainst = 2
)

// Report files an incident report against a pool and records it.
func (m *ManageReports) Report(ctx context.Context, poolID, payout *big.Int) (*ReportResult, error) {
	incident, err := m.ops.Address(domain.ContractIncidentReport)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Report pool %s", poolID)); err != nil {
		return nil, err
	}

	receipt, err := m.ops.Send(ctx, domain.ContractIncidentReport, incident, bindings.FuncReport, poolID, payout)
	if err != nil {
		return nil, err
	}

	var counter *big.Int
	if err := m.ops.Call(ctx, incident, bindings.FuncReportCounter, nil, &counter); err != nil {
		return nil, err
	}
	sender, err := m.ops.Sender(ctx)
	if err != nil {
		return nil, err
	}

	record := domain.ReportRecord{
		ID:       counter.String(),
		PoolID:   poolID.String(),
		Payout:   payout.String(),
		Reporter: sender.Hex(),
		Status:   "pending",
	}
	if err := m.saveRecord(ctx, record); err != nil {
		return nil, err
	}
	return &ReportResult{ID: record.ID, TxHash: receipt.TxHash, Record: record}, nil
}

// Vote casts a vote on a report with an amount of vote-escrowed tokens.
func (m *ManageReports) Vote(ctx context.Context, id *big.Int, choice int64, amount *big.Int) (*ReportResult, error) {
	if choice != VoteFor && choice != VoteAgainst {
		return nil, fmt.Errorf("invalid vote choice %d: expected %d (for) or %d (against)", choice, VoteFor, VoteAgainst)
	}
	return m.transition(ctx, id, "Vote on", false, func(incident common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractIncidentReport, incident, bindings.FuncVote, id, big.NewInt(choice), amount)
	})
}

// StartVoting opens voting on a report.
func (m *ManageReports) StartVoting(ctx context.Context, id *big.Int) (*ReportResult, error) {
	return m.transition(ctx, id, "Start voting on", true, func(incident common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractIncidentReport, incident, bindings.FuncStartVoting, id)
	})
}

// Settle settles a report's vote.
func (m *ManageReports) Settle(ctx context.Context, id *big.Int) (*ReportResult, error) {
	return m.transition(ctx, id, "Settle", true, func(incident common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractIncidentReport, incident, bindings.FuncSettle, id)
	})
}

// Close closes a report.
func (m *ManageReports) Close(ctx context.Context, id *big.Int) (*ReportResult, error) {
	return m.transition(ctx, id, "Close", true, func(incident common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractIncidentReport, incident, bindings.FuncCloseReport, id)
	})
}

// Unpause unpauses the pools paused by a report.
func (m *ManageReports) Unpause(ctx context.Context, id *big.Int) (*ReportResult, error) {
	return m.transition(ctx, id, "Unpause pools of", true, func(incident common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractIncidentReport, incident, bindings.FuncUnpausePools, id)
	})
}

// SetQuorum sets the quorum ratio for report votes.
func (m *ManageReports) SetQuorum(ctx context.Context, ratio *big.Int) (*ReportResult, error) {
	incident, err := m.ops.Address(domain.ContractIncidentReport)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Set quorum ratio to %s", ratio)); err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractIncidentReport, incident, bindings.FuncSetQuorumRatio, ratio)
	if err != nil {
		return nil, err
	}
	return &ReportResult{TxHash: receipt.TxHash}, nil
}

// Get reads a report and the incident voting period from the chain.
func (m *ManageReports) Get(ctx context.Context, id *big.Int) (*ReportResult, error) {
	incident, err := m.ops.Address(domain.ContractIncidentReport)
	if err != nil {
		return nil, err
	}
	details, err := m.ops.CallView(ctx, domain.ContractIncidentReport, incident, "reports", id)
	if err != nil {
		return nil, err
	}
	var period *big.Int
	if err := m.ops.Call(ctx, incident, bindings.FuncIncidentVotingPeriod, nil, &period); err != nil {
		return nil, err
	}

	result := &ReportResult{ID: id.String(), Details: details, VotingPeriod: period.String()}
	reports, err := recordsOrEmpty(m.store.Reports)
	if err != nil {
		return nil, err
	}
	result.Record, _ = reports.Get(m.ops.Network(), id.String())
	return result, nil
}

// Reported tells whether a pool currently has an open report.
func (m *ManageReports) Reported(ctx context.Context, poolID *big.Int) (*ReportResult, error) {
	incident, err := m.ops.Address(domain.ContractIncidentReport)
	if err != nil {
		return nil, err
	}
	var reported bool
	if err := m.ops.Call(ctx, incident, bindings.FuncReported, []any{poolID}, &reported); err != nil {
		return nil, err
	}
	return &ReportResult{Reported: reported}, nil
}

// Execute executes a settled report through the Executor. The Executor's stored
// references are read first so a miswired Executor is visible in the result.
func (m *ManageReports) Execute(ctx context.Context, id *big.Int) (*ReportResult, error) {
	executor, err := m.ops.Address(domain.ContractExecutor)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]common.Address)
	for _, target := range []string{
		domain.ContractPriorityPoolFactory,
		domain.ContractIncidentReport,
		domain.ContractOnboardProposal,
		domain.ContractTreasury,
	} {
		getter, err := bindings.AddressGetter(domain.WiringEdge{Target: target}.GetterSignature())
		if err != nil {
			return nil, err
		}
		var addr common.Address
		if err := m.ops.Call(ctx, executor, getter, nil, &addr); err != nil {
			return nil, err
		}
		refs[target] = addr
	}

	result, err := m.transition(ctx, id, "Execute", true, func(common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractExecutor, executor, bindings.FuncExecuteReport, id)
	})
	if err != nil {
		return nil, err
	}
	result.References = refs

	if err := m.ops.Call(ctx, executor, bindings.FuncReportExecuted, []any{id}, &result.Executed); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *ManageReports) transition(
	ctx context.Context,
	id *big.Int,
	action string,
	refresh bool,
	send func(incident common.Address) (*domain.TxReceipt, error),
) (*ReportResult, error) {
	incident, err := m.ops.Address(domain.ContractIncidentReport)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("%s report %s", action, id)); err != nil {
		return nil, err
	}

	receipt, err := send(incident)
	if err != nil {
		return nil, err
	}

	result := &ReportResult{ID: id.String(), TxHash: receipt.TxHash, Record: domain.ReportRecord{ID: id.String()}}
	if !refresh {
		return result, nil
	}
	record, err := m.refresh(ctx, incident, id)
	if err != nil {
		return nil, err
	}
	result.Record = record
	return result, nil
}

// refresh copies the on-chain status into the local record when the report is known locally.
func (m *ManageReports) refresh(ctx context.Context, incident common.Address, id *big.Int) (domain.ReportRecord, error) {
	reports, err := recordsOrEmpty(m.store.Reports)
	if err != nil {
		return domain.ReportRecord{}, err
	}
	record, ok := reports.Get(m.ops.Network(), id.String())
	if !ok {
		return domain.ReportRecord{ID: id.String()}, nil
	}

	details, err := m.ops.CallView(ctx, domain.ContractIncidentReport, incident, "reports", id)
	if err != nil {
		return record, nil
	}
	if status, ok := FieldValue(details, "status"); ok {
		record.Status = status
	}
	return record, m.saveRecord(ctx, record)
}

func (m *ManageReports) saveRecord(ctx context.Context, record domain.ReportRecord) error {
	reports, err := recordsOrEmpty(m.store.Reports)
	if err != nil {
		return err
	}
	reports.Put(m.ops.Network(), record.ID, record)
	if err := m.store.Save(domain.KindReports, reports); err != nil {
		return err
	}
	return m.store.Flush(ctx)
}
