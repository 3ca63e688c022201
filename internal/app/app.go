package app

import (
	"log/slog"

	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/shieldworks/protect/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Store    usecase.RegistryStore
	Progress usecase.ProgressSink

	// Registry and networks
	ListNetworks     *usecase.ListNetworks
	ShowRegistry     *usecase.ShowRegistry
	InitRegistry     *usecase.InitRegistry
	SetRegistryEntry *usecase.SetRegistryEntry
	WatchRegistry    *usecase.WatchRegistry
	ResolveTokens    *usecase.ResolveExternalTokens

	// Deployment and wiring
	PlanDeployment  *usecase.PlanDeployment
	DeploySequence  *usecase.DeploySequence
	ReconcileWiring *usecase.ReconcileWiring

	// Operational tasks
	Proposals    *usecase.ManageProposals
	Reports      *usecase.ManageReports
	Pools        *usecase.ManagePools
	Farming      *usecase.ManageFarming
	Tokens       *usecase.ManageTokens
	Policy       *usecase.ManagePolicy
	PrepareLocal *usecase.PrepareLocal
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	store usecase.RegistryStore,
	progress usecase.ProgressSink,
	listNetworks *usecase.ListNetworks,
	showRegistry *usecase.ShowRegistry,
	initRegistry *usecase.InitRegistry,
	setRegistryEntry *usecase.SetRegistryEntry,
	watchRegistry *usecase.WatchRegistry,
	resolveTokens *usecase.ResolveExternalTokens,
	planDeployment *usecase.PlanDeployment,
	deploySequence *usecase.DeploySequence,
	reconcileWiring *usecase.ReconcileWiring,
	proposals *usecase.ManageProposals,
	reports *usecase.ManageReports,
	pools *usecase.ManagePools,
	farming *usecase.ManageFarming,
	tokens *usecase.ManageTokens,
	policy *usecase.ManagePolicy,
	prepareLocal *usecase.PrepareLocal,
) *App {
	return &App{
		Config:           cfg,
		Log:              log,
		Store:            store,
		Progress:         progress,
		ListNetworks:     listNetworks,
		ShowRegistry:     showRegistry,
		InitRegistry:     initRegistry,
		SetRegistryEntry: setRegistryEntry,
		WatchRegistry:    watchRegistry,
		ResolveTokens:    resolveTokens,
		PlanDeployment:   planDeployment,
		DeploySequence:   deploySequence,
		ReconcileWiring:  reconcileWiring,
		Proposals:        proposals,
		Reports:          reports,
		Pools:            pools,
		Farming:          farming,
		Tokens:           tokens,
		Policy:           policy,
		PrepareLocal:     prepareLocal,
	}
}
