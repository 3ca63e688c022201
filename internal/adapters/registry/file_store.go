package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/shieldworks/protect/internal/usecase"
)

// FileStore keeps the registry documents as tab-indented JSON files in one directory.
type FileStore struct {
	dir    string
	mu     sync.RWMutex
	opened bool
	closed bool
	docs   map[domain.RecordKind]any
	// hashes holds the hash of each file as last seen on disk; absent files have no entry.
	hashes map[domain.RecordKind]common.Hash
	dirty  map[domain.RecordKind]bool
}

// NewFileStore creates a store over dir. Nothing is read until Open.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:    dir,
		docs:   make(map[domain.RecordKind]any),
		hashes: make(map[domain.RecordKind]common.Hash),
		dirty:  make(map[domain.RecordKind]bool),
	}
}

// ProvideFileStore creates the store for the configured registry directory.
func ProvideFileStore(cfg *config.RuntimeConfig) *FileStore {
	return NewFileStore(cfg.RegistryDir)
}

// Dir returns the registry directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Open reads and validates every existing document.
func (s *FileStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrRegistryClosed
	}
	if s.opened {
		return nil
	}

	for _, kind := range domain.RecordKinds {
		data, err := os.ReadFile(s.path(kind))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("%w: failed to read %s: %v", domain.ErrRegistryIO, kind.FileName(), err)
		}
		doc, err := decodeDocument(kind, data)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", kind.FileName(), err)
		}
		s.docs[kind] = doc
		s.hashes[kind] = crypto.Keccak256Hash(data)
	}

	s.opened = true
	return nil
}

// Close flushes pending documents and rejects further use.
func (s *FileStore) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Load returns a deep copy of the document for kind.
func (s *FileStore) Load(kind domain.RecordKind) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkUsable(); err != nil {
		return nil, err
	}
	doc, ok := s.docs[kind]
	if !ok {
		return nil, fmt.Errorf("%s (%s) has not been initialized: %w", kind, kind.FileName(), domain.ErrNotFound)
	}
	return cloneDocument(doc), nil
}

func (s *FileStore) AddressBook() (domain.AddressBook, error) {
	return load[domain.AddressBook](s, domain.KindAddresses)
}

func (s *FileStore) ImplementationBook() (domain.AddressBook, error) {
	return load[domain.AddressBook](s, domain.KindImplementations)
}

func (s *FileStore) Proposals() (domain.RecordSet[domain.ProposalRecord], error) {
	return load[domain.RecordSet[domain.ProposalRecord]](s, domain.KindProposals)
}

func (s *FileStore) Reports() (domain.RecordSet[domain.ReportRecord], error) {
	return load[domain.RecordSet[domain.ReportRecord]](s, domain.KindReports)
}

func (s *FileStore) PriorityPools() (domain.RecordSet[domain.PriorityPoolRecord], error) {
	return load[domain.RecordSet[domain.PriorityPoolRecord]](s, domain.KindPriorityPools)
}

func (s *FileStore) ILM() (domain.RecordSet[domain.ILMRecord], error) {
	return load[domain.RecordSet[domain.ILMRecord]](s, domain.KindILM)
}

// Save stages doc as the complete new content of kind. Keys missing from doc are dropped.
func (s *FileStore) Save(kind domain.RecordKind, doc any) error {
	if err := checkDocument(kind, doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsable(); err != nil {
		return err
	}
	s.docs[kind] = cloneDocument(doc)
	s.dirty[kind] = true
	return nil
}

// Flush writes every staged document, refusing to overwrite a file that changed
// on disk since this store last read or wrote it.
func (s *FileStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrRegistryClosed
	}
	if len(s.dirty) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create registry directory: %v", domain.ErrRegistryIO, err)
	}

	for _, kind := range domain.RecordKinds {
		if !s.dirty[kind] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.checkUnchanged(kind); err != nil {
			return err
		}

		data, err := encodeDocument(s.docs[kind])
		if err != nil {
			return fmt.Errorf("%w: failed to encode %s: %v", domain.ErrRegistryIO, kind.FileName(), err)
		}
		if err := writeFileAtomic(s.path(kind), data); err != nil {
			return fmt.Errorf("%w: failed to write %s: %v", domain.ErrRegistryIO, kind.FileName(), err)
		}
		s.hashes[kind] = crypto.Keccak256Hash(data)
		delete(s.dirty, kind)
	}
	return nil
}

// Init writes empty documents for the given kinds (all kinds when none are given).
// Existing documents are kept unless force is set.
func (s *FileStore) Init(ctx context.Context, force bool, kinds ...domain.RecordKind) error {
	if len(kinds) == 0 {
		kinds = domain.RecordKinds
	}

	s.mu.Lock()
	if err := s.checkUsable(); err != nil {
		s.mu.Unlock()
		return err
	}
	for _, kind := range kinds {
		if _, exists := s.docs[kind]; exists && !force {
			continue
		}
		s.docs[kind] = emptyDocument(kind)
		s.dirty[kind] = true
	}
	s.mu.Unlock()

	return s.Flush(ctx)
}

func (s *FileStore) path(kind domain.RecordKind) string {
	return filepath.Join(s.dir, kind.FileName())
}

func (s *FileStore) checkUsable() error {
	if s.closed {
		return domain.ErrRegistryClosed
	}
	if !s.opened {
		return fmt.Errorf("%w: registry not opened", domain.ErrRegistryIO)
	}
	return nil
}

func (s *FileStore) checkUnchanged(kind domain.RecordKind) error {
	data, err := os.ReadFile(s.path(kind))
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("%w: failed to read %s: %v", domain.ErrRegistryIO, kind.FileName(), err)
		}
		if _, seen := s.hashes[kind]; seen {
			return fmt.Errorf("%s was removed since it was loaded: %w", kind.FileName(), domain.ErrConcurrentModification)
		}
		return nil
	}

	seen, ok := s.hashes[kind]
	if !ok || crypto.Keccak256Hash(data) != seen {
		return fmt.Errorf("%s changed on disk since it was loaded: %w", kind.FileName(), domain.ErrConcurrentModification)
	}
	return nil
}

func load[T any](s *FileStore, kind domain.RecordKind) (T, error) {
	var zero T
	doc, err := s.Load(kind)
	if err != nil {
		return zero, err
	}
	typed, ok := doc.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", domain.ErrRegistryIO, kind, doc)
	}
	return typed, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

var _ usecase.RegistryStore = (*FileStore)(nil)
