package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
	"github.com/shieldworks/protect/internal/domain/config"
)

// Run status values persisted in the run state file.
const (
	RunRunning   = "running"
	RunFailed    = "failed"
	RunCompleted = "completed"
)

// DeploySequence executes a deployment plan unit by unit.
type DeploySequence struct {
	planner   *PlanDeployment
	store     RegistryStore
	artifacts ArtifactRepository
	chain     ChainClient
	confirmer Confirmer
	cfg       *config.RuntimeConfig
	progress  ProgressSink
	log       *slog.Logger
	now       func() time.Time
}

// NewDeploySequence creates a new deploy sequencer
func NewDeploySequence(
	planner *PlanDeployment,
	store RegistryStore,
	artifacts ArtifactRepository,
	chain ChainClient,
	confirmer Confirmer,
	cfg *config.RuntimeConfig,
	progress ProgressSink,
	log *slog.Logger,
) *DeploySequence {
	if progress == nil {
		progress = NopProgress{}
	}
	return &DeploySequence{
		planner:   planner,
		store:     store,
		artifacts: artifacts,
		chain:     chain,
		confirmer: confirmer,
		cfg:       cfg,
		progress:  progress,
		log:       log,
		now:       time.Now,
	}
}

// DeployParams contains parameters for a deployment run
type DeployParams struct {
	Select   []string
	Redeploy []string
	Upgrade  []string
	DryRun   bool
	Resume   bool
}

// DeployResult contains the outcome of a deployment run
type DeployResult struct {
	RunID      string              `json:"runId"`
	Plan       *DeploymentPlan     `json:"plan"`
	Units      []domain.UnitResult `json:"units"`
	FailedUnit string              `json:"failedUnit,omitempty"`
	Success    bool                `json:"success"`
	DryRun     bool                `json:"dryRun,omitempty"`
}

// DeployRunState is the persisted state of a deployment run
type DeployRunState struct {
	RunID            string                      `json:"run_id"`
	Network          string                      `json:"network"`
	StartedAt        time.Time                   `json:"started_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	Select           []string                    `json:"select,omitempty"`
	Redeploy         []string                    `json:"redeploy,omitempty"`
	Upgrade          []string                    `json:"upgrade,omitempty"`
	Plan             []string                    `json:"plan"`
	Units            map[string]domain.UnitState `json:"units"`
	CurrentUnitIndex int                         `json:"current_unit_index"`
	FailedUnit       string                      `json:"failed_unit,omitempty"`
	Error            string                      `json:"error,omitempty"`
	Status           string                      `json:"status"`
}

// Execute plans, pre-flights and runs the deployment. The first failure halts the run;
// the returned result then lists every unit that completed before it.
func (d *DeploySequence) Execute(ctx context.Context, params DeployParams) (*DeployResult, error) {
	network := domain.Normalize(d.cfg.NetworkName())

	var prev *DeployRunState
	if params.Resume {
		state, err := d.loadState(network)
		if err != nil {
			return nil, err
		}
		if state.Status == RunCompleted {
			return nil, fmt.Errorf("previous deployment on %s already completed", network)
		}
		prev = state
		params = resumeParams(state)
	}

	plan, err := d.planner.Run(ctx, PlanParams{
		Network:  network,
		Select:   params.Select,
		Redeploy: params.Redeploy,
		Upgrade:  params.Upgrade,
	})
	if err != nil {
		return nil, err
	}

	d.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "plan_created",
		Total:    len(plan.Steps),
		Message:  fmt.Sprintf("Planned %d units on %s", len(plan.Steps), network),
		Metadata: plan,
	})

	result := &DeployResult{Plan: plan, DryRun: params.DryRun}
	if params.DryRun {
		result.Success = true
		return result, nil
	}

	artifacts, err := d.loadArtifacts(ctx, plan)
	if err != nil {
		return nil, err
	}

	if pending := countPending(plan); pending > 0 {
		if err := confirmProduction(ctx, d.confirmer, d.cfg, fmt.Sprintf("Deploy %d units", pending)); err != nil {
			return nil, err
		}
	}

	state := d.newState(network, params, plan, prev)
	result.RunID = state.RunID
	d.saveStateOrWarn(state)

	for i, step := range plan.Steps {
		state.CurrentUnitIndex = i
		unit := plan.Units[i]

		if step.Action == ActionSkip {
			res := domain.UnitResult{Unit: step.Name, Mode: step.Mode, State: domain.UnitSkipped, Address: step.Address, Reason: "already recorded"}
			result.Units = append(result.Units, res)
			state.Units[step.Name] = domain.UnitSkipped
			d.progress.OnProgress(ctx, ProgressEvent{
				Stage:    "unit_skipped",
				Current:  i + 1,
				Total:    len(plan.Steps),
				Message:  fmt.Sprintf("%s already recorded at %s", step.Name, step.Address.Hex()),
				Metadata: res,
			})
			continue
		}

		d.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "unit_starting",
			Current: i + 1,
			Total:   len(plan.Steps),
			Message: fmt.Sprintf("%s %s (%s)", step.Action, step.Name, step.Mode),
			Spinner: true,
		})
		state.Units[step.Name] = domain.UnitPending

		res, err := d.runUnit(ctx, network, unit, step, plan.Tokens, artifacts, i, len(plan.Steps))
		if err != nil {
			res.State = domain.UnitFailed
			res.Error = err.Error()
			result.Units = append(result.Units, res)
			result.FailedUnit = step.Name

			state.Units[step.Name] = domain.UnitFailed
			state.FailedUnit = step.Name
			state.Error = err.Error()
			state.Status = RunFailed
			d.saveStateOrWarn(state)
			return result, fmt.Errorf("unit %s failed: %w", step.Name, err)
		}

		result.Units = append(result.Units, res)
		state.Units[step.Name] = domain.UnitRecorded
		d.saveStateOrWarn(state)
	}

	state.Status = RunCompleted
	state.CurrentUnitIndex = len(plan.Steps)
	state.FailedUnit = ""
	state.Error = ""
	d.saveStateOrWarn(state)

	result.Success = true
	d.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "deploy_completed",
		Current:  len(plan.Steps),
		Total:    len(plan.Steps),
		Message:  fmt.Sprintf("Deployment on %s completed", network),
		Metadata: result,
	})
	return result, nil
}

// runUnit drives one unit from Pending through Deployed to Recorded.
func (d *DeploySequence) runUnit(
	ctx context.Context,
	network string,
	unit domain.Unit,
	step PlanStep,
	tokens domain.ExternalTokens,
	artifacts map[string]*domain.Artifact,
	index, total int,
) (domain.UnitResult, error) {
	res := domain.UnitResult{Unit: unit.Name, Mode: unit.Mode, State: domain.UnitPending}

	book, err := addressBookOrEmpty(d.store)
	if err != nil {
		return res, err
	}
	args, err := unit.ResolveArgs(domain.ArgEnv{Network: network, Book: book, Production: tokens})
	if err != nil {
		return res, err
	}

	artifact := artifacts[unit.ArtifactName()]
	switch {
	case unit.Mode == domain.ModeDirect:
		err = d.deployDirect(ctx, unit, artifact, args, &res)
	case step.Action == ActionUpgrade:
		err = d.upgradeProxied(ctx, network, unit, artifact, book, &res)
	default:
		err = d.deployProxied(ctx, network, unit, artifact, args, artifacts, &res)
	}
	if err != nil {
		return res, err
	}

	res.State = domain.UnitDeployed
	d.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "unit_deployed",
		Current:  index + 1,
		Total:    total,
		Message:  fmt.Sprintf("%s deployed at %s", unit.Name, res.Address.Hex()),
		Metadata: res,
	})

	if err := d.record(ctx, network, unit, &res); err != nil {
		return res, err
	}

	res.State = domain.UnitRecorded
	d.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "unit_recorded",
		Current:  index + 1,
		Total:    total,
		Message:  fmt.Sprintf("%s recorded", unit.Name),
		Metadata: res,
	})
	return res, nil
}

func (d *DeploySequence) deployDirect(ctx context.Context, unit domain.Unit, artifact *domain.Artifact, args []any, res *domain.UnitResult) error {
	receipt, err := d.deploy(ctx, unit.Name, artifact, args...)
	if err != nil {
		return err
	}
	res.Address = receipt.Address
	res.TxHashes = append(res.TxHashes, receipt.TxHash)
	return nil
}

// deployProxied deploys logic, then a transparent proxy whose constructor calls the
// initializer. The unit is deployed only when both receipts succeed.
func (d *DeploySequence) deployProxied(
	ctx context.Context,
	network string,
	unit domain.Unit,
	logic *domain.Artifact,
	args []any,
	artifacts map[string]*domain.Artifact,
	res *domain.UnitResult,
) error {
	initData, err := logic.ABI.Pack(unit.InitializerName(), args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s.%s: %w", unit.Name, unit.InitializerName(), err)
	}

	admin, err := d.ensureProxyAdmin(ctx, network, artifacts[d.cfg.ProxyAdminArtifact])
	if err != nil {
		return err
	}

	impl, err := d.deploy(ctx, unit.Name+"_Implementation", logic)
	if err != nil {
		return err
	}
	res.Implementation = impl.Address
	res.TxHashes = append(res.TxHashes, impl.TxHash)

	proxy, err := d.deploy(ctx, unit.Name+"_Proxy", artifacts[d.cfg.ProxyArtifact], impl.Address, admin, initData)
	if err != nil {
		return err
	}
	res.Address = proxy.Address
	res.TxHashes = append(res.TxHashes, proxy.TxHash)
	return nil
}

// upgradeProxied deploys new logic and points the existing proxy at it.
func (d *DeploySequence) upgradeProxied(
	ctx context.Context,
	network string,
	unit domain.Unit,
	logic *domain.Artifact,
	book domain.AddressBook,
	res *domain.UnitResult,
) error {
	proxy, _ := book.Lookup(network, unit.Name)
	admin, ok := book.Lookup(network, domain.ContractProxyAdmin)
	if !ok {
		return &domain.MissingDependencyError{
			Network: network,
			Missing: []domain.MissingKey{{Consumer: unit.Name, Key: domain.ContractProxyAdmin}},
		}
	}

	impl, err := d.deploy(ctx, unit.Name+"_Implementation", logic)
	if err != nil {
		return err
	}
	res.Implementation = impl.Address
	res.TxHashes = append(res.TxHashes, impl.TxHash)

	input, err := bindings.FuncUpgrade.EncodeArgs(proxy, impl.Address)
	if err != nil {
		return fmt.Errorf("failed to encode upgrade: %w", err)
	}
	receipt, err := d.chain.Transact(ctx, admin, input)
	if err != nil {
		return fmt.Errorf("upgrade of %s failed: %w", unit.Name, err)
	}
	if receipt.Reverted {
		return &domain.RemoteRevertError{Contract: domain.ContractProxyAdmin, Method: "upgrade", TxHash: receipt.TxHash}
	}
	res.Address = proxy
	res.TxHashes = append(res.TxHashes, receipt.TxHash)
	res.Upgraded = true
	return nil
}

// ensureProxyAdmin returns the network's shared proxy admin, deploying and recording it once.
func (d *DeploySequence) ensureProxyAdmin(ctx context.Context, network string, artifact *domain.Artifact) (common.Address, error) {
	book, err := addressBookOrEmpty(d.store)
	if err != nil {
		return common.Address{}, err
	}
	if admin, ok := book.Lookup(network, domain.ContractProxyAdmin); ok {
		return admin, nil
	}

	var args []any
	if len(artifact.ABI.Constructor.Inputs) == 1 {
		owner, err := d.chain.Sender(ctx)
		if err != nil {
			return common.Address{}, fmt.Errorf("failed to resolve proxy admin owner: %w", err)
		}
		args = append(args, owner)
	}

	receipt, err := d.deploy(ctx, domain.ContractProxyAdmin, artifact, args...)
	if err != nil {
		return common.Address{}, err
	}

	book.Set(network, domain.ContractProxyAdmin, receipt.Address)
	if err := d.store.Save(domain.KindAddresses, book); err != nil {
		return common.Address{}, err
	}
	if err := d.store.Flush(ctx); err != nil {
		return common.Address{}, err
	}
	d.log.Debug("proxy admin deployed", "network", network, "address", receipt.Address.Hex())
	return receipt.Address, nil
}

func (d *DeploySequence) deploy(ctx context.Context, label string, artifact *domain.Artifact, args ...any) (*domain.DeployReceipt, error) {
	receipt, err := d.chain.Deploy(ctx, artifact, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", label, err)
	}
	if receipt.Reverted {
		return nil, &domain.RemoteRevertError{Contract: label, TxHash: receipt.TxHash}
	}
	d.log.Debug("contract deployed", "unit", label, "address", receipt.Address.Hex(), "tx", receipt.TxHash.Hex())
	return receipt, nil
}

// record writes the unit's addresses and flushes them before the next unit starts.
func (d *DeploySequence) record(ctx context.Context, network string, unit domain.Unit, res *domain.UnitResult) error {
	if !res.Upgraded {
		book, err := addressBookOrEmpty(d.store)
		if err != nil {
			return err
		}
		book.Set(network, unit.Name, res.Address)
		if err := d.store.Save(domain.KindAddresses, book); err != nil {
			return err
		}
	}

	if unit.Mode == domain.ModeProxied {
		impls, err := implementationBookOrEmpty(d.store)
		if err != nil {
			return err
		}
		impls.Set(network, unit.Name, res.Implementation)
		if err := d.store.Save(domain.KindImplementations, impls); err != nil {
			return err
		}
	}

	return d.store.Flush(ctx)
}

// loadArtifacts fetches every artifact the plan needs so a missing one fails before any chain call.
func (d *DeploySequence) loadArtifacts(ctx context.Context, plan *DeploymentPlan) (map[string]*domain.Artifact, error) {
	var names []string
	needsProxy := false
	for _, step := range plan.Steps {
		if step.Action == ActionSkip {
			continue
		}
		names = append(names, step.Artifact)
		if step.Mode == domain.ModeProxied && step.Action != ActionUpgrade {
			needsProxy = true
		}
	}
	if needsProxy {
		names = append(names, d.cfg.ProxyArtifact, d.cfg.ProxyAdminArtifact)
	}

	artifacts := make(map[string]*domain.Artifact, len(names))
	var errs []error
	for _, name := range names {
		if _, done := artifacts[name]; done {
			continue
		}
		artifact, err := d.artifacts.Get(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("artifact %s: %w", name, err))
			continue
		}
		artifacts[name] = artifact
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return artifacts, nil
}

func countPending(plan *DeploymentPlan) int {
	n := 0
	for _, step := range plan.Steps {
		if step.Action != ActionSkip {
			n++
		}
	}
	return n
}

func (d *DeploySequence) newState(network string, params DeployParams, plan *DeploymentPlan, prev *DeployRunState) *DeployRunState {
	now := d.now()
	state := &DeployRunState{
		RunID:     uuid.NewString(),
		Network:   network,
		StartedAt: now,
		UpdatedAt: now,
		Select:    params.Select,
		Redeploy:  params.Redeploy,
		Upgrade:   params.Upgrade,
		Units:     make(map[string]domain.UnitState, len(plan.Steps)),
		Status:    RunRunning,
	}
	if prev != nil {
		state.RunID = prev.RunID
		state.StartedAt = prev.StartedAt
		for name, unitState := range prev.Units {
			state.Units[name] = unitState
		}
	}
	for _, step := range plan.Steps {
		state.Plan = append(state.Plan, step.Name)
	}
	return state
}

// resumeParams replays the previous run's selection. Units it already recorded are
// no longer forced, so they are skipped instead of being deployed twice.
func resumeParams(state *DeployRunState) DeployParams {
	done := func(name string) bool {
		return state.Units[name] == domain.UnitRecorded
	}
	return DeployParams{
		Select:   state.Select,
		Redeploy: slices.DeleteFunc(slices.Clone(state.Redeploy), done),
		Upgrade:  slices.DeleteFunc(slices.Clone(state.Upgrade), done),
	}
}

// StateFilePath returns the run state file of a network.
func (d *DeploySequence) StateFilePath(network string) string {
	return filepath.Join(d.cfg.RunsDir(), fmt.Sprintf("deploy-%s.json", domain.Normalize(network)))
}

func (d *DeploySequence) saveStateOrWarn(state *DeployRunState) {
	if err := d.saveState(state); err != nil {
		d.log.Warn("failed to save deploy run state", "error", err)
	}
}

func (d *DeploySequence) saveState(state *DeployRunState) error {
	state.UpdatedAt = d.now()
	path := d.StateFilePath(state.Network)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// LoadState reads the last run state of a network.
func (d *DeploySequence) LoadState(network string) (*DeployRunState, error) {
	return d.loadState(domain.Normalize(network))
}

func (d *DeploySequence) loadState(network string) (*DeployRunState, error) {
	data, err := os.ReadFile(d.StateFilePath(network))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no previous deployment on %s to resume: %w", network, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var state DeployRunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.Units == nil {
		state.Units = make(map[string]domain.UnitState)
	}
	return &state, nil
}
