package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
)

// ManageProposals runs the onboard proposal lifecycle and mirrors each proposal
// into the local proposal list.
type ManageProposals struct {
	ops   *ContractOps
	store RegistryStore
}

// NewManageProposals creates a new proposal manager
func NewManageProposals(ops *ContractOps, store RegistryStore) *ManageProposals {
	return &ManageProposals{ops: ops, store: store}
}

// ProposeParams contains the parameters of a new pool proposal
type ProposeParams struct {
	Name     string
	Token    common.Address
	Capacity *big.Int
	Premium  *big.Int
}

// ProposalResult is the outcome of a proposal operation
type ProposalResult struct {
	ID      string                `json:"id"`
	TxHash  common.Hash           `json:"txHash,omitempty"`
	Record  domain.ProposalRecord `json:"record"`
	Details []Field               `json:"details,omitempty"`
}

// Propose submits a new pool proposal and records it.
func (m *ManageProposals) Propose(ctx context.Context, params ProposeParams) (*ProposalResult, error) {
	onboard, err := m.ops.Address(domain.ContractOnboardProposal)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, "Propose "+params.Name); err != nil {
		return nil, err
	}

	receipt, err := m.ops.Send(ctx, domain.ContractOnboardProposal, onboard, bindings.FuncPropose,
		params.Name, params.Token, params.Capacity, params.Premium)
	if err != nil {
		return nil, err
	}

	var counter *big.Int
	if err := m.ops.Call(ctx, onboard, bindings.FuncProposalCounter, nil, &counter); err != nil {
		return nil, err
	}
	sender, err := m.ops.Sender(ctx)
	if err != nil {
		return nil, err
	}

	record := domain.ProposalRecord{
		ID:       counter.String(),
		Name:     params.Name,
		Token:    params.Token.Hex(),
		Capacity: params.Capacity.String(),
		Premium:  params.Premium.String(),
		Proposer: sender.Hex(),
		Status:   "pending",
	}
	if err := m.saveRecord(ctx, record); err != nil {
		return nil, err
	}
	return &ProposalResult{ID: record.ID, TxHash: receipt.TxHash, Record: record}, nil
}

// StartVoting opens voting on a proposal.
func (m *ManageProposals) StartVoting(ctx context.Context, id *big.Int) (*ProposalResult, error) {
	return m.transition(ctx, id, "Start voting", func(onboard common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractOnboardProposal, onboard, bindings.FuncStartVoting, id)
	})
}

// Settle settles a proposal's vote.
func (m *ManageProposals) Settle(ctx context.Context, id *big.Int) (*ProposalResult, error) {
	return m.transition(ctx, id, "Settle", func(onboard common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractOnboardProposal, onboard, bindings.FuncSettle, id)
	})
}

// Close closes a proposal.
func (m *ManageProposals) Close(ctx context.Context, id *big.Int) (*ProposalResult, error) {
	return m.transition(ctx, id, "Close", func(onboard common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractOnboardProposal, onboard, bindings.FuncCloseProposal, id)
	})
}

// Execute executes a passed proposal through the Executor.
func (m *ManageProposals) Execute(ctx context.Context, id *big.Int) (*ProposalResult, error) {
	executor, err := m.ops.Address(domain.ContractExecutor)
	if err != nil {
		return nil, err
	}
	return m.transition(ctx, id, "Execute", func(common.Address) (*domain.TxReceipt, error) {
		return m.ops.Send(ctx, domain.ContractExecutor, executor, bindings.FuncExecuteProposal, id)
	})
}

// Get reads a proposal from the chain.
func (m *ManageProposals) Get(ctx context.Context, id *big.Int) (*ProposalResult, error) {
	onboard, err := m.ops.Address(domain.ContractOnboardProposal)
	if err != nil {
		return nil, err
	}
	details, err := m.ops.CallView(ctx, domain.ContractOnboardProposal, onboard, "proposals", id)
	if err != nil {
		return nil, err
	}
	result := &ProposalResult{ID: id.String(), Details: details}
	if proposals, err := m.store.Proposals(); err == nil {
		result.Record, _ = proposals.Get(m.ops.Network(), id.String())
	}
	return result, nil
}

func (m *ManageProposals) transition(
	ctx context.Context,
	id *big.Int,
	action string,
	send func(onboard common.Address) (*domain.TxReceipt, error),
) (*ProposalResult, error) {
	onboard, err := m.ops.Address(domain.ContractOnboardProposal)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("%s proposal %s", action, id)); err != nil {
		return nil, err
	}

	receipt, err := send(onboard)
	if err != nil {
		return nil, err
	}

	result := &ProposalResult{ID: id.String(), TxHash: receipt.TxHash}
	record, err := m.refresh(ctx, onboard, id)
	if err != nil {
		return nil, err
	}
	result.Record = record
	return result, nil
}

// refresh copies the on-chain status into the local record when the proposal is known locally.
func (m *ManageProposals) refresh(ctx context.Context, onboard common.Address, id *big.Int) (domain.ProposalRecord, error) {
	proposals, err := recordsOrEmpty(m.store.Proposals)
	if err != nil {
		return domain.ProposalRecord{}, err
	}
	record, ok := proposals.Get(m.ops.Network(), id.String())
	if !ok {
		return domain.ProposalRecord{ID: id.String()}, nil
	}

	details, err := m.ops.CallView(ctx, domain.ContractOnboardProposal, onboard, "proposals", id)
	if err != nil {
		return record, nil
	}
	if status, ok := FieldValue(details, "status"); ok {
		record.Status = status
	}
	return record, m.saveRecord(ctx, record)
}

func (m *ManageProposals) saveRecord(ctx context.Context, record domain.ProposalRecord) error {
	proposals, err := recordsOrEmpty(m.store.Proposals)
	if err != nil {
		return err
	}
	proposals.Put(m.ops.Network(), record.ID, record)
	if err := m.store.Save(domain.KindProposals, proposals); err != nil {
		return err
	}
	return m.store.Flush(ctx)
}
