//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/shieldworks/protect/internal/adapters"
	"github.com/shieldworks/protect/internal/config"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/logging"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance. The returned cleanup releases
// the chain connection.
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,
		domain.DefaultCatalog,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewListNetworks,
		usecase.NewShowRegistry,
		usecase.NewInitRegistry,
		usecase.NewSetRegistryEntry,
		usecase.NewWatchRegistry,
		usecase.NewResolveExternalTokens,
		usecase.NewPlanDeployment,
		usecase.NewDeploySequence,
		usecase.NewContractOps,
		usecase.NewReconcileWiring,
		usecase.NewManageProposals,
		usecase.NewManageReports,
		usecase.NewManagePools,
		usecase.NewManageFarming,
		usecase.NewManageTokens,
		usecase.NewManagePolicy,
		usecase.NewPrepareLocal,

		// App
		NewApp,
	)
	return nil, nil, nil
}
