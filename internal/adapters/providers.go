package adapters

import (
	"github.com/google/wire"
	"github.com/shieldworks/protect/internal/adapters/artifacts"
	"github.com/shieldworks/protect/internal/adapters/blockchain"
	"github.com/shieldworks/protect/internal/adapters/fswatch"
	"github.com/shieldworks/protect/internal/adapters/interactive"
	"github.com/shieldworks/protect/internal/adapters/progress"
	"github.com/shieldworks/protect/internal/adapters/registry"
	"github.com/shieldworks/protect/internal/adapters/wiring"
	"github.com/shieldworks/protect/internal/usecase"
)

// RegistrySet provides the file-backed address registry
var RegistrySet = wire.NewSet(
	registry.ProvideFileStore,
	wire.Bind(new(usecase.RegistryStore), new(*registry.FileStore)),

	fswatch.NewWatcher,
	wire.Bind(new(usecase.RegistryWatcher), new(*fswatch.Watcher)),
)

// ArtifactSet provides compiled contract lookup
var ArtifactSet = wire.NewSet(
	artifacts.ProvideRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*artifacts.Repository)),
)

// BlockchainSet provides the signer-bound chain client
var BlockchainSet = wire.NewSet(
	blockchain.ProvideClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
)

// WiringSet provides the desired wiring graph
var WiringSet = wire.NewSet(
	wiring.ProvideGraphSource,
	wire.Bind(new(usecase.WiringGraphSource), new(*wiring.GraphSource)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmer,
	wire.Bind(new(usecase.Confirmer), new(*interactive.Confirmer)),

	interactive.NewFuzzySuggester,
	wire.Bind(new(usecase.UnitSuggester), new(*interactive.FuzzySuggester)),
)

// ProgressSet provides the progress sink
var ProgressSet = wire.NewSet(
	progress.ProvideProgressSink,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RegistrySet,
	ArtifactSet,
	BlockchainSet,
	WiringSet,
	InteractiveSet,
	ProgressSet,
)
