package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a registry document or record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrMissingDependency is returned when a unit, wiring edge or task needs a registry key that isn't recorded
	ErrMissingDependency = errors.New("missing dependency")

	// ErrRegistryIO is returned when a registry document can't be read, parsed or written
	ErrRegistryIO = errors.New("registry I/O error")

	// ErrConcurrentModification is returned when a registry document changed on disk since it was loaded
	ErrConcurrentModification = errors.New("registry modified concurrently")

	// ErrRemoteRevert is returned when the chain rejects a deployment or transaction
	ErrRemoteRevert = errors.New("transaction reverted")

	// ErrUnknownUnit is returned when a unit or tag name is not in the catalog
	ErrUnknownUnit = errors.New("unknown deploy unit")

	// ErrUnknownNetwork is returned when a network has no configuration
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned when a decimal amount can't be parsed
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrMissingEnv is returned when a required environment variable is unset
	ErrMissingEnv = errors.New("missing environment variable")

	// ErrRegistryClosed is returned when a closed registry is used
	ErrRegistryClosed = errors.New("registry is closed")
)

// MissingKey names one registry key a consumer needs.
type MissingKey struct {
	Consumer string
	Key      string
}

// MissingDependencyError aggregates every key absent from the registry for a network.
type MissingDependencyError struct {
	Network string
	Missing []MissingKey
}

func (e *MissingDependencyError) Error() string {
	missing := make([]MissingKey, len(e.Missing))
	copy(missing, e.Missing)
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Consumer != missing[j].Consumer {
			return missing[i].Consumer < missing[j].Consumer
		}
		return missing[i].Key < missing[j].Key
	})

	lines := make([]string, 0, len(missing))
	for _, m := range missing {
		lines = append(lines, fmt.Sprintf("  - %s needs %s", m.Consumer, m.Key))
	}
	return fmt.Sprintf("missing dependency on %s: %d key(s) not recorded:\n%s",
		e.Network, len(missing), strings.Join(lines, "\n"))
}

func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// Keys returns the distinct missing keys.
func (e *MissingDependencyError) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range e.Missing {
		if !seen[m.Key] {
			seen[m.Key] = true
			keys = append(keys, m.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// RemoteRevertError is returned when a mined transaction has a failed status.
type RemoteRevertError struct {
	Contract string
	Method   string
	TxHash   common.Hash
}

func (e *RemoteRevertError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("deployment of %s reverted (tx %s)", e.Contract, e.TxHash.Hex())
	}
	return fmt.Sprintf("%s.%s reverted (tx %s)", e.Contract, e.Method, e.TxHash.Hex())
}

func (e *RemoteRevertError) Is(target error) bool {
	return target == ErrRemoteRevert
}

// SchemaError describes a registry document that failed validation at load time.
type SchemaError struct {
	Kind    RecordKind
	Network string
	Key     string
	Reason  string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Network == "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Key == "":
		return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Network, e.Reason)
	default:
		return fmt.Sprintf("%s[%s][%s]: %s", e.Kind, e.Network, e.Key, e.Reason)
	}
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrRegistryIO
}

// UnknownUnitErr is returned when a requested unit or tag doesn't exist.
type UnknownUnitErr struct {
	Name        string
	Suggestions []string
}

func (e UnknownUnitErr) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown deploy unit or tag %q", e.Name)
	}
	return fmt.Sprintf("unknown deploy unit or tag %q, did you mean: %s?", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e UnknownUnitErr) Is(target error) bool {
	return target == ErrUnknownUnit
}
