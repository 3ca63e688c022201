package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	abiEmpty       = `[]`
	abiPoolX       = `[{"type":"function","name":"initialize","inputs":[{"name":"token","type":"address"},{"name":"settlement","type":"address"}],"outputs":[]}]`
	abiVault       = `[{"type":"constructor","inputs":[{"name":"pool","type":"address"}]}]`
	abiProxy       = `[{"type":"constructor","inputs":[{"name":"logic","type":"address"},{"name":"admin","type":"address"},{"name":"data","type":"bytes"}]}]`
	abiProxyAdmin1 = `[{"type":"constructor","inputs":[{"name":"owner","type":"address"}]}]`
)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		{Name: "TokenA", Mode: domain.ModeDirect, Tags: []string{"tokens"}},
		{
			Name: "PoolX",
			Mode: domain.ModeProxied,
			Args: []domain.Arg{domain.Ref("TokenA"), domain.Token(domain.RoleSettlement)},
			Tags: []string{"pools"},
		},
		{
			Name:   "Vault",
			Mode:   domain.ModeDirect,
			Args:   []domain.Arg{domain.Ref("PoolX")},
			OnlyOn: []string{domain.NetworkLocalhost},
		},
	}
}

type sequenceFixture struct {
	cfg       *config.RuntimeConfig
	store     *memStore
	chain     *fakeChain
	artifacts fakeArtifacts
	confirmer *fakeConfirmer
	progress  *recordingSink
	seq       *DeploySequence
}

func newSequenceFixture(t *testing.T, network string) *sequenceFixture {
	t.Helper()
	f := &sequenceFixture{
		cfg:       testConfig(t, network),
		store:     newMemStore().withMocks(network),
		chain:     newFakeChain(),
		artifacts: fakeArtifacts{},
		confirmer: &fakeConfirmer{answer: true},
		progress:  &recordingSink{},
	}
	if domain.IsProduction(network) {
		f.store.withProductionTokens(network)
	}
	f.artifacts.
		add(t, "TokenA", abiEmpty).
		add(t, "PoolX", abiPoolX).
		add(t, "Vault", abiVault).
		add(t, "TransparentUpgradeableProxy", abiProxy).
		add(t, "ProxyAdmin", abiEmpty)

	planner := NewPlanDeployment(f.store, NewResolveExternalTokens(f.store, f.cfg), testCatalog(), fakeSuggester{}, discardLogger())
	f.seq = NewDeploySequence(planner, f.store, f.artifacts, f.chain, f.confirmer, f.cfg, f.progress, discardLogger())
	return f
}

func TestDeploySequence_FullRun(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)

	result, err := f.seq.Execute(context.Background(), DeployParams{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.RunID)

	// TokenA, then PoolX (admin, logic, proxy), then Vault
	assert.Equal(t, []string{"TokenA", "ProxyAdmin", "PoolX", "TransparentUpgradeableProxy", "Vault"}, f.chain.deployed())

	book := f.store.book(t)
	tokenA, _ := book.Lookup("localhost", "TokenA")
	admin, _ := book.Lookup("localhost", domain.ContractProxyAdmin)
	poolX, _ := book.Lookup("localhost", "PoolX")
	vault, _ := book.Lookup("localhost", "Vault")
	assert.Equal(t, addr(1), tokenA)
	assert.Equal(t, addr(2), admin)
	assert.Equal(t, addr(4), poolX, "proxied unit records the proxy")
	assert.Equal(t, addr(5), vault)

	impls, err := f.store.ImplementationBook()
	require.NoError(t, err)
	impl, ok := impls.Lookup("localhost", "PoolX")
	require.True(t, ok)
	assert.Equal(t, addr(3), impl)
	_, ok = impls.Lookup("localhost", "TokenA")
	assert.False(t, ok, "direct units have no implementation entry")

	// proxy constructor gets logic, admin and the encoded initializer
	proxy := f.chain.deploys[3]
	initData, err := f.artifacts["PoolX"].ABI.Pack("initialize", addr(1), mockShield)
	require.NoError(t, err)
	assert.Equal(t, []any{addr(3), addr(2), initData}, proxy.Args)

	// Vault reads the proxy, not the logic contract
	assert.Equal(t, []any{addr(4)}, f.chain.deploys[4].Args)

	for _, u := range result.Units {
		assert.Equal(t, domain.UnitRecorded, u.State, u.Unit)
	}
	assert.Contains(t, f.progress.stages, "plan_created")
	assert.Contains(t, f.progress.stages, "unit_recorded")
	assert.Equal(t, "deploy_completed", f.progress.stages[len(f.progress.stages)-1])
}

func TestDeploySequence_SecondRunSkipsRecorded(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)

	_, err := f.seq.Execute(context.Background(), DeployParams{})
	require.NoError(t, err)
	before := len(f.chain.deploys)

	result, err := f.seq.Execute(context.Background(), DeployParams{})
	require.NoError(t, err)
	assert.Len(t, f.chain.deploys, before, "no contract deployed twice")
	for _, u := range result.Units {
		assert.Equal(t, domain.UnitSkipped, u.State, u.Unit)
	}
}

func TestDeploySequence_Upgrade(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)

	_, err := f.seq.Execute(context.Background(), DeployParams{})
	require.NoError(t, err)

	result, err := f.seq.Execute(context.Background(), DeployParams{Select: []string{"PoolX"}, Upgrade: []string{"PoolX"}})
	require.NoError(t, err)
	require.Len(t, result.Units, 1)
	res := result.Units[0]
	assert.True(t, res.Upgraded)
	assert.Equal(t, addr(4), res.Address, "proxy address is kept")
	assert.Equal(t, addr(6), res.Implementation)

	upgrade, err := bindings.FuncUpgrade.EncodeArgs(addr(4), addr(6))
	require.NoError(t, err)
	require.Equal(t, 1, f.chain.txCount())
	assert.Equal(t, upgrade, f.chain.txs[0])

	book := f.store.book(t)
	poolX, _ := book.Lookup("localhost", "PoolX")
	assert.Equal(t, addr(4), poolX)
	impls, _ := f.store.ImplementationBook()
	impl, _ := impls.Lookup("localhost", "PoolX")
	assert.Equal(t, addr(6), impl)
}

func TestDeploySequence_UpgradeRejectsDirectUnit(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)

	_, err := f.seq.Execute(context.Background(), DeployParams{Upgrade: []string{"TokenA"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only proxied units can be upgraded")
	assert.Empty(t, f.chain.deploys)
}

func TestDeploySequence_Redeploy(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)

	_, err := f.seq.Execute(context.Background(), DeployParams{})
	require.NoError(t, err)

	result, err := f.seq.Execute(context.Background(), DeployParams{Redeploy: []string{"TokenA"}})
	require.NoError(t, err)
	assert.Equal(t, domain.UnitRecorded, result.Units[0].State)

	book := f.store.book(t)
	tokenA, _ := book.Lookup("localhost", "TokenA")
	assert.Equal(t, addr(6), tokenA)
}

func TestDeploySequence_FailureHaltsAndResumes(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)
	f.chain.revert("Vault", true)

	result, err := f.seq.Execute(context.Background(), DeployParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteRevert))
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "Vault", result.FailedUnit)
	require.Len(t, result.Units, 3)
	assert.Equal(t, domain.UnitRecorded, result.Units[0].State)
	assert.Equal(t, domain.UnitRecorded, result.Units[1].State)
	assert.Equal(t, domain.UnitFailed, result.Units[2].State)

	book := f.store.book(t)
	_, ok := book.Lookup("localhost", "PoolX")
	assert.True(t, ok, "units before the failure stay recorded")
	_, ok = book.Lookup("localhost", "Vault")
	assert.False(t, ok)

	state, err := f.seq.LoadState("localhost")
	require.NoError(t, err)
	assert.Equal(t, RunFailed, state.Status)
	assert.Equal(t, "Vault", state.FailedUnit)

	f.chain.revert("Vault", false)
	resumed, err := f.seq.Execute(context.Background(), DeployParams{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, result.RunID, resumed.RunID)
	assert.Equal(t, domain.UnitSkipped, resumed.Units[0].State)
	assert.Equal(t, domain.UnitSkipped, resumed.Units[1].State)
	assert.Equal(t, domain.UnitRecorded, resumed.Units[2].State)

	state, err = f.seq.LoadState("localhost")
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, state.Status)

	_, err = f.seq.Execute(context.Background(), DeployParams{Resume: true})
	assert.ErrorContains(t, err, "already completed")
}

func TestDeploySequence_ResumeWithoutState(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)

	_, err := f.seq.Execute(context.Background(), DeployParams{Resume: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeploySequence_DryRunTouchesNothing(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)

	result, err := f.seq.Execute(context.Background(), DeployParams{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Plan.Steps, 3)
	assert.Empty(t, f.chain.deploys)
	assert.Zero(t, f.store.flushes)
}

func TestDeploySequence_MissingArtifactFailsBeforeChain(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)
	delete(f.artifacts, "Vault")

	_, err := f.seq.Execute(context.Background(), DeployParams{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.chain.deploys)
}

func TestDeploySequence_ProductionNeedsConfirmation(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkAvax)
	f.cfg.NonInteractive = false
	f.confirmer.answer = false

	_, err := f.seq.Execute(context.Background(), DeployParams{Select: []string{"TokenA"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	require.Len(t, f.confirmer.asked, 1)
	assert.Contains(t, f.confirmer.asked[0], "avax")
	assert.Empty(t, f.chain.deploys)
}

func TestDeploySequence_ProductionUsesRecordedTokens(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkAvax)

	_, err := f.seq.Execute(context.Background(), DeployParams{})
	require.NoError(t, err)

	// Vault only runs on localhost
	assert.Equal(t, []string{"TokenA", "ProxyAdmin", "PoolX", "TransparentUpgradeableProxy"}, f.chain.deployed())

	initData, err := f.artifacts["PoolX"].ABI.Pack("initialize", addr(1), prodShield)
	require.NoError(t, err)
	assert.Equal(t, initData, f.chain.deploys[3].Args[2])
}

func TestDeploySequence_ProductionPinnedToken(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkAvax)
	pinned := common.HexToAddress("0x00000000000000000000000000000000000000F3")
	f.cfg.MainnetTokens = domain.ExternalTokens{Settlement: pinned}
	f.store.docs[domain.KindAddresses].(domain.AddressBook).Delete(domain.NetworkAvax, domain.ContractShield)

	_, err := f.seq.Execute(context.Background(), DeployParams{})
	require.NoError(t, err)

	initData, err := f.artifacts["PoolX"].ABI.Pack("initialize", addr(1), pinned)
	require.NoError(t, err)
	assert.Equal(t, initData, f.chain.deploys[3].Args[2])
}

func TestDeploySequence_ProductionWithoutTokensFailsBeforeChain(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkAvax)
	f.store.docs[domain.KindAddresses].(domain.AddressBook).Delete(domain.NetworkAvax, domain.ContractShield)

	_, err := f.seq.Execute(context.Background(), DeployParams{})
	require.ErrorIs(t, err, domain.ErrMissingDependency)
	assert.Contains(t, err.Error(), domain.ContractShield)
	assert.Empty(t, f.chain.deploys)
	assert.Empty(t, f.confirmer.asked)
}

func TestDeploySequence_ProxyAdminOwner(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)
	f.artifacts.add(t, "ProxyAdmin", abiProxyAdmin1)

	_, err := f.seq.Execute(context.Background(), DeployParams{Select: []string{"TokenA", "PoolX"}})
	require.NoError(t, err)
	assert.Equal(t, []any{testSender}, f.chain.deploys[1].Args)
}

func TestDeploySequence_ExistingProxyAdminIsShared(t *testing.T) {
	f := newSequenceFixture(t, domain.NetworkLocalhost)
	shared := common.HexToAddress("0x00000000000000000000000000000000000000AD")
	f.store.set("localhost", domain.ContractProxyAdmin, shared)

	_, err := f.seq.Execute(context.Background(), DeployParams{Select: []string{"TokenA", "PoolX"}})
	require.NoError(t, err)
	assert.NotContains(t, f.chain.deployed(), "ProxyAdmin")
	assert.Equal(t, shared, f.chain.deploys[2].Args[1])
}
