package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
)

// RegistryStore is the persisted address registry. Documents are loaded and
// validated at Open; Save stages a full overwrite of one document and Flush
// writes every staged document.
type RegistryStore interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Dir() string

	// Load returns a deep copy of the typed document for the kind, or
	// domain.ErrNotFound if it was never initialized.
	Load(kind domain.RecordKind) (any, error)
	AddressBook() (domain.AddressBook, error)
	ImplementationBook() (domain.AddressBook, error)
	Proposals() (domain.RecordSet[domain.ProposalRecord], error)
	Reports() (domain.RecordSet[domain.ReportRecord], error)
	PriorityPools() (domain.RecordSet[domain.PriorityPoolRecord], error)
	ILM() (domain.RecordSet[domain.ILMRecord], error)

	Save(kind domain.RecordKind, doc any) error
	Flush(ctx context.Context) error
	Init(ctx context.Context, force bool, kinds ...domain.RecordKind) error
}

// ChainClient is the signer-bound connection to the selected network.
// Every mutating call blocks until the transaction is mined.
type ChainClient interface {
	Sender(ctx context.Context) (common.Address, error)
	ChainID(ctx context.Context) (uint64, error)
	Deploy(ctx context.Context, artifact *domain.Artifact, args ...any) (*domain.DeployReceipt, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	Transact(ctx context.Context, to common.Address, data []byte) (*domain.TxReceipt, error)
}

// ArtifactRepository provides compiled contracts by name.
type ArtifactRepository interface {
	Get(ctx context.Context, name string) (*domain.Artifact, error)
	Names(ctx context.Context) ([]string, error)
}

// WiringGraphSource provides the desired wiring graph.
type WiringGraphSource interface {
	Load(ctx context.Context) (domain.WiringGraph, error)
}

// Confirmer asks the user before a chain-mutating action on a production network.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// RegistryWatcher reports registry document changes until ctx is done.
type RegistryWatcher interface {
	Watch(ctx context.Context, dir string, onChange func(file string)) error
}

// UnitSuggester proposes close matches for a mistyped unit or tag name.
type UnitSuggester interface {
	Suggest(name string, candidates []string) []string
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
