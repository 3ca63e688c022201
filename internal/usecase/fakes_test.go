package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/stretchr/testify/require"
)

var (
	testSender = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	mockDEG    = common.HexToAddress("0x00000000000000000000000000000000000000D1")
	mockVeDEG  = common.HexToAddress("0x00000000000000000000000000000000000000D2")
	mockShield = common.HexToAddress("0x00000000000000000000000000000000000000D3")

	prodDEG    = common.HexToAddress("0x00000000000000000000000000000000000000E1")
	prodVeDEG  = common.HexToAddress("0x00000000000000000000000000000000000000E2")
	prodShield = common.HexToAddress("0x00000000000000000000000000000000000000E3")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, network string) *config.RuntimeConfig {
	t.Helper()
	networks := domain.DefaultNetworks()
	spec, ok := networks[network]
	require.True(t, ok, "unknown network %s", network)
	return &config.RuntimeConfig{
		ProjectRoot:        t.TempDir(),
		RegistryDir:        t.TempDir(),
		Network:            &spec,
		Networks:           networks,
		NonInteractive:     true,
		ProxyArtifact:      "TransparentUpgradeableProxy",
		ProxyAdminArtifact: "ProxyAdmin",
	}
}

// memStore is an in-memory RegistryStore.
type memStore struct {
	mu      sync.Mutex
	docs    map[domain.RecordKind]any
	flushes int
	dir     string
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[domain.RecordKind]any), dir: "info"}
}

// withMocks records the three mock tokens on network.
func (s *memStore) withMocks(network string) *memStore {
	book := domain.AddressBook{}
	if existing, ok := s.docs[domain.KindAddresses].(domain.AddressBook); ok {
		book = existing
	}
	book.Set(network, domain.ContractMockDEG, mockDEG)
	book.Set(network, domain.ContractMockVeDEG, mockVeDEG)
	book.Set(network, domain.ContractMockShield, mockShield)
	s.docs[domain.KindAddresses] = book
	return s
}

// withProductionTokens records the production protocol tokens on network.
func (s *memStore) withProductionTokens(network string) *memStore {
	return s.set(network, domain.ContractDegisToken, prodDEG).
		set(network, domain.ContractVoteEscrowedDegis, prodVeDEG).
		set(network, domain.ContractShield, prodShield)
}

func (s *memStore) set(network, name string, addr common.Address) *memStore {
	book, _ := s.docs[domain.KindAddresses].(domain.AddressBook)
	if book == nil {
		book = domain.AddressBook{}
	}
	book.Set(network, name, addr)
	s.docs[domain.KindAddresses] = book
	return s
}

func (s *memStore) Open(context.Context) error  { return nil }
func (s *memStore) Close(context.Context) error { return nil }
func (s *memStore) Dir() string                 { return s.dir }

func (s *memStore) Load(kind domain.RecordKind) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, domain.ErrNotFound)
	}
	switch d := doc.(type) {
	case domain.AddressBook:
		return d.Clone(), nil
	case domain.RecordSet[domain.ProposalRecord]:
		return d.Clone(), nil
	case domain.RecordSet[domain.ReportRecord]:
		return d.Clone(), nil
	case domain.RecordSet[domain.PriorityPoolRecord]:
		return d.Clone(), nil
	case domain.RecordSet[domain.ILMRecord]:
		return d.Clone(), nil
	}
	return doc, nil
}

func loadTyped[T any](s *memStore, kind domain.RecordKind) (T, error) {
	doc, err := s.Load(kind)
	if err != nil {
		var zero T
		return zero, err
	}
	return doc.(T), nil
}

func (s *memStore) AddressBook() (domain.AddressBook, error) {
	return loadTyped[domain.AddressBook](s, domain.KindAddresses)
}

func (s *memStore) ImplementationBook() (domain.AddressBook, error) {
	return loadTyped[domain.AddressBook](s, domain.KindImplementations)
}

func (s *memStore) Proposals() (domain.RecordSet[domain.ProposalRecord], error) {
	return loadTyped[domain.RecordSet[domain.ProposalRecord]](s, domain.KindProposals)
}

func (s *memStore) Reports() (domain.RecordSet[domain.ReportRecord], error) {
	return loadTyped[domain.RecordSet[domain.ReportRecord]](s, domain.KindReports)
}

func (s *memStore) PriorityPools() (domain.RecordSet[domain.PriorityPoolRecord], error) {
	return loadTyped[domain.RecordSet[domain.PriorityPoolRecord]](s, domain.KindPriorityPools)
}

func (s *memStore) ILM() (domain.RecordSet[domain.ILMRecord], error) {
	return loadTyped[domain.RecordSet[domain.ILMRecord]](s, domain.KindILM)
}

func (s *memStore) Save(kind domain.RecordKind, doc any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[kind] = doc
	return nil
}

func (s *memStore) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *memStore) Init(_ context.Context, force bool, kinds ...domain.RecordKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range kinds {
		if _, ok := s.docs[kind]; ok && !force {
			continue
		}
		switch kind {
		case domain.KindAddresses, domain.KindImplementations:
			s.docs[kind] = domain.AddressBook{}
		case domain.KindProposals:
			s.docs[kind] = domain.RecordSet[domain.ProposalRecord]{}
		case domain.KindReports:
			s.docs[kind] = domain.RecordSet[domain.ReportRecord]{}
		case domain.KindPriorityPools:
			s.docs[kind] = domain.RecordSet[domain.PriorityPoolRecord]{}
		case domain.KindILM:
			s.docs[kind] = domain.RecordSet[domain.ILMRecord]{}
		}
	}
	return nil
}

func (s *memStore) book(t *testing.T) domain.AddressBook {
	t.Helper()
	book, err := s.AddressBook()
	require.NoError(t, err)
	return book
}

// fakeDeploy is one recorded contract creation.
type fakeDeploy struct {
	Artifact string
	Args     []any
	Address  common.Address
}

// fakeChain deploys to sequential addresses and models storage as a map from
// (contract, calldata) to return data. Linked setters write the value their
// getter returns.
type fakeChain struct {
	mu       sync.Mutex
	n        int64
	deploys  []fakeDeploy
	txs      [][]byte
	storage  map[string][]byte
	links    map[string]string
	reverted map[string]bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		storage:  make(map[string][]byte),
		links:    make(map[string]string),
		reverted: make(map[string]bool),
	}
}

func selector(signature string) string {
	return string(crypto.Keccak256([]byte(signature))[:4])
}

func storageKey(to common.Address, data []byte) string {
	return to.Hex() + string(data)
}

// addr returns the address of the n-th deployment.
func addr(n int64) common.Address {
	return common.BigToAddress(big.NewInt(0x1000 + n))
}

// link makes the setter store the value the getter reads back.
func (c *fakeChain) link(setter, getter string) {
	c.links[selector(setter)] = selector(getter)
}

// revert makes every deployment of the artifact, or every call of the signature, revert.
func (c *fakeChain) revert(name string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.Contains(name, "(") {
		name = selector(name)
	}
	c.reverted[name] = on
}

// returns stubs the result of a view call.
func (c *fakeChain) returns(t *testing.T, to common.Address, fn *w3.Func, args []any, values ...any) {
	t.Helper()
	input, err := fn.EncodeArgs(args...)
	require.NoError(t, err)
	output, err := fn.Returns.Pack(values...)
	require.NoError(t, err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage[storageKey(to, input)] = output
}

func (c *fakeChain) Sender(context.Context) (common.Address, error) { return testSender, nil }

func (c *fakeChain) ChainID(context.Context) (uint64, error) { return 31337, nil }

func (c *fakeChain) Deploy(_ context.Context, artifact *domain.Artifact, args ...any) (*domain.DeployReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	receipt := &domain.DeployReceipt{Address: addr(c.n), TxHash: common.BigToHash(big.NewInt(c.n))}
	if c.reverted[artifact.Name] {
		receipt.Address = common.Address{}
		receipt.Reverted = true
		return receipt, nil
	}
	c.deploys = append(c.deploys, fakeDeploy{Artifact: artifact.Name, Args: args, Address: receipt.Address})
	return receipt, nil
}

func (c *fakeChain) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if out, ok := c.storage[storageKey(to, data)]; ok {
		return out, nil
	}
	return make([]byte, 32), nil
}

func (c *fakeChain) Transact(_ context.Context, to common.Address, data []byte) (*domain.TxReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	receipt := &domain.TxReceipt{TxHash: common.BigToHash(big.NewInt(c.n)), BlockNumber: uint64(c.n)}
	sel := string(data[:4])
	if c.reverted[sel] {
		receipt.Reverted = true
		return receipt, nil
	}
	c.txs = append(c.txs, data)
	if getter, ok := c.links[sel]; ok && len(data) >= 36 {
		key := append([]byte(getter), data[4:len(data)-32]...)
		c.storage[storageKey(to, key)] = bytes.Clone(data[len(data)-32:])
	}
	return receipt, nil
}

func (c *fakeChain) deployed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.deploys))
	for i, d := range c.deploys {
		names[i] = d.Artifact
	}
	return names
}

func (c *fakeChain) txCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.txs)
}

// fakeArtifacts serves artifacts parsed from inline ABIs.
type fakeArtifacts map[string]*domain.Artifact

func (f fakeArtifacts) add(t *testing.T, name, abiJSON string) fakeArtifacts {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	f[name] = &domain.Artifact{Name: name, ABI: parsed, Bytecode: []byte{0x60, 0x80}}
	return f
}

func (f fakeArtifacts) Get(_ context.Context, name string) (*domain.Artifact, error) {
	a, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", name, domain.ErrNotFound)
	}
	return a, nil
}

func (f fakeArtifacts) Names(context.Context) ([]string, error) {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	return names, nil
}

type fakeConfirmer struct {
	answer bool
	asked  []string
}

func (c *fakeConfirmer) Confirm(_ context.Context, message string) (bool, error) {
	c.asked = append(c.asked, message)
	return c.answer, nil
}

type fakeSuggester struct{}

func (fakeSuggester) Suggest(name string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(name)) {
			out = append(out, c)
		}
	}
	return out
}

type fakeGraph domain.WiringGraph

func (g fakeGraph) Load(context.Context) (domain.WiringGraph, error) {
	return domain.WiringGraph(g), nil
}

// recordingSink collects progress stages.
type recordingSink struct {
	mu     sync.Mutex
	stages []string
}

func (s *recordingSink) OnProgress(_ context.Context, e ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, e.Stage)
}
func (s *recordingSink) Info(string)  {}
func (s *recordingSink) Error(string) {}
