package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// RecordKind identifies one persisted registry document.
type RecordKind string

const (
	KindAddresses       RecordKind = "addresses"
	KindImplementations RecordKind = "implementations"
	KindProposals       RecordKind = "proposals"
	KindReports         RecordKind = "reports"
	KindPriorityPools   RecordKind = "priority-pools"
	KindILM             RecordKind = "ilm"
)

// RecordKinds lists every registry document in a stable order.
var RecordKinds = []RecordKind{
	KindAddresses,
	KindImplementations,
	KindProposals,
	KindReports,
	KindPriorityPools,
	KindILM,
}

var recordFiles = map[RecordKind]string{
	KindAddresses:       "address.json",
	KindImplementations: "implementation.json",
	KindProposals:       "proposals.json",
	KindReports:         "reports.json",
	KindPriorityPools:   "PriorityPool.json",
	KindILM:             "ILM.json",
}

// FileName returns the document file name for the kind.
func (k RecordKind) FileName() string {
	return recordFiles[k]
}

// ParseRecordKind parses a kind name as given on the command line.
func ParseRecordKind(s string) (RecordKind, error) {
	for _, k := range RecordKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q (expected one of %v)", s, RecordKinds)
}

// AddressBook maps network -> contract name -> address. The same shape backs both the
// proxy/contract addresses and the implementation addresses behind proxies.
type AddressBook map[string]map[string]common.Address

// Lookup returns the recorded address. Absence is reported explicitly, never as a zero address.
func (b AddressBook) Lookup(network, name string) (common.Address, bool) {
	contracts, ok := b[network]
	if !ok {
		return common.Address{}, false
	}
	addr, ok := contracts[name]
	return addr, ok
}

// Set records an address, creating the network entry if needed.
func (b AddressBook) Set(network, name string, addr common.Address) {
	if b[network] == nil {
		b[network] = make(map[string]common.Address)
	}
	b[network][name] = addr
}

// Delete removes a recorded name.
func (b AddressBook) Delete(network, name string) {
	if contracts, ok := b[network]; ok {
		delete(contracts, name)
	}
}

// Names returns the sorted contract names recorded for a network.
func (b AddressBook) Names(network string) []string {
	names := make([]string, 0, len(b[network]))
	for name := range b[network] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Networks returns the sorted network names present in the book.
func (b AddressBook) Networks() []string {
	networks := make([]string, 0, len(b))
	for network := range b {
		networks = append(networks, network)
	}
	sort.Strings(networks)
	return networks
}

// Clone returns a deep copy.
func (b AddressBook) Clone() AddressBook {
	clone := make(AddressBook, len(b))
	for network, contracts := range b {
		inner := make(map[string]common.Address, len(contracts))
		for name, addr := range contracts {
			inner[name] = addr
		}
		clone[network] = inner
	}
	return clone
}

// MarshalJSON writes checksummed addresses.
func (b AddressBook) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]string, len(b))
	for network, contracts := range b {
		inner := make(map[string]string, len(contracts))
		for name, addr := range contracts {
			inner[name] = addr.Hex()
		}
		out[network] = inner
	}
	return json.Marshal(out)
}

// DecodeAddressBook parses and validates an address document. Every value must be a
// hex address string; explicit nulls and other shapes are rejected.
func DecodeAddressBook(kind RecordKind, data []byte) (AddressBook, error) {
	networks, err := decodeObject(kind, "", data)
	if err != nil {
		return nil, err
	}

	book := make(AddressBook, len(networks))
	for network, raw := range networks {
		contracts, err := decodeObject(kind, network, raw)
		if err != nil {
			return nil, err
		}
		inner := make(map[string]common.Address, len(contracts))
		for name, value := range contracts {
			if isNull(value) {
				return nil, &SchemaError{Kind: kind, Network: network, Key: name, Reason: "address is null"}
			}
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, &SchemaError{Kind: kind, Network: network, Key: name, Reason: "address must be a string"}
			}
			if !common.IsHexAddress(s) {
				return nil, &SchemaError{Kind: kind, Network: network, Key: name, Reason: fmt.Sprintf("%q is not a hex address", s)}
			}
			inner[name] = common.HexToAddress(s)
		}
		book[network] = inner
	}
	return book, nil
}

// Record is a locally mirrored piece of on-chain state.
type Record interface {
	Validate() error
}

// ProposalRecord mirrors an onboard proposal.
type ProposalRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Token    string `json:"token"`
	Capacity string `json:"capacity"`
	Premium  string `json:"premium"`
	Proposer string `json:"proposer,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (r ProposalRecord) Validate() error {
	return validateOptionalAddress("token", r.Token)
}

// ReportRecord mirrors an incident report.
type ReportRecord struct {
	ID       string `json:"id"`
	PoolID   string `json:"poolId"`
	Payout   string `json:"payout"`
	Reporter string `json:"reporter,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (r ReportRecord) Validate() error {
	return validateOptionalAddress("reporter", r.Reporter)
}

// PriorityPoolRecord mirrors a priority pool deployed through the factory.
type PriorityPoolRecord struct {
	ID          string `json:"id"`
	PoolAddress string `json:"poolAddress"`
	Name        string `json:"name"`
	Token       string `json:"token"`
	Premium     string `json:"premium"`
}

func (r PriorityPoolRecord) Validate() error {
	if !common.IsHexAddress(r.PoolAddress) {
		return fmt.Errorf("poolAddress %q is not a hex address", r.PoolAddress)
	}
	return validateOptionalAddress("token", r.Token)
}

// ILMRecord mirrors an impermanent-loss-mining pair.
type ILMRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Token   string `json:"token"`
	Address string `json:"address,omitempty"`
}

func (r ILMRecord) Validate() error {
	if err := validateOptionalAddress("token", r.Token); err != nil {
		return err
	}
	return validateOptionalAddress("address", r.Address)
}

// RecordSet maps network -> id -> record.
type RecordSet[T Record] map[string]map[string]T

// Get returns a record and whether it exists.
func (s RecordSet[T]) Get(network, id string) (T, bool) {
	r, ok := s[network][id]
	return r, ok
}

// Put stores a record, creating the network entry if needed.
func (s RecordSet[T]) Put(network, id string, r T) {
	if s[network] == nil {
		s[network] = make(map[string]T)
	}
	s[network][id] = r
}

// IDs returns the sorted record ids for a network.
func (s RecordSet[T]) IDs(network string) []string {
	ids := make([]string, 0, len(s[network]))
	for id := range s[network] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns a copy whose maps are independent of the receiver.
func (s RecordSet[T]) Clone() RecordSet[T] {
	clone := make(RecordSet[T], len(s))
	for network, records := range s {
		inner := make(map[string]T, len(records))
		for id, r := range records {
			inner[id] = r
		}
		clone[network] = inner
	}
	return clone
}

// DecodeRecordSet parses and validates a record document.
func DecodeRecordSet[T Record](kind RecordKind, data []byte) (RecordSet[T], error) {
	networks, err := decodeObject(kind, "", data)
	if err != nil {
		return nil, err
	}

	set := make(RecordSet[T], len(networks))
	for network, raw := range networks {
		records, err := decodeObject(kind, network, raw)
		if err != nil {
			return nil, err
		}
		inner := make(map[string]T, len(records))
		for id, value := range records {
			if isNull(value) {
				return nil, &SchemaError{Kind: kind, Network: network, Key: id, Reason: "record is null"}
			}
			var r T
			if err := json.Unmarshal(value, &r); err != nil {
				return nil, &SchemaError{Kind: kind, Network: network, Key: id, Reason: err.Error()}
			}
			if err := r.Validate(); err != nil {
				return nil, &SchemaError{Kind: kind, Network: network, Key: id, Reason: err.Error()}
			}
			inner[id] = r
		}
		set[network] = inner
	}
	return set, nil
}

func decodeObject(kind RecordKind, network string, data []byte) (map[string]json.RawMessage, error) {
	if isNull(data) {
		return nil, &SchemaError{Kind: kind, Network: network, Reason: "expected an object, got null"}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &SchemaError{Kind: kind, Network: network, Reason: fmt.Sprintf("expected an object: %v", err)}
	}
	return obj, nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func validateOptionalAddress(field, value string) error {
	if value != "" && !common.IsHexAddress(value) {
		return fmt.Errorf("%s %q is not a hex address", field, value)
	}
	return nil
}
