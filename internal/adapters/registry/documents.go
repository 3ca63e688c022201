package registry

import (
	"encoding/json"
	"fmt"

	"github.com/shieldworks/protect/internal/domain"
)

func decodeDocument(kind domain.RecordKind, data []byte) (any, error) {
	switch kind {
	case domain.KindAddresses, domain.KindImplementations:
		return domain.DecodeAddressBook(kind, data)
	case domain.KindProposals:
		return domain.DecodeRecordSet[domain.ProposalRecord](kind, data)
	case domain.KindReports:
		return domain.DecodeRecordSet[domain.ReportRecord](kind, data)
	case domain.KindPriorityPools:
		return domain.DecodeRecordSet[domain.PriorityPoolRecord](kind, data)
	case domain.KindILM:
		return domain.DecodeRecordSet[domain.ILMRecord](kind, data)
	default:
		return nil, fmt.Errorf("%w: unknown record kind %q", domain.ErrRegistryIO, kind)
	}
}

// encodeDocument renders a document the way the registry files have always
// looked: tab indented, sorted keys, trailing newline.
func encodeDocument(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func emptyDocument(kind domain.RecordKind) any {
	switch kind {
	case domain.KindAddresses, domain.KindImplementations:
		return domain.AddressBook{}
	case domain.KindProposals:
		return domain.RecordSet[domain.ProposalRecord]{}
	case domain.KindReports:
		return domain.RecordSet[domain.ReportRecord]{}
	case domain.KindPriorityPools:
		return domain.RecordSet[domain.PriorityPoolRecord]{}
	default:
		return domain.RecordSet[domain.ILMRecord]{}
	}
}

func cloneDocument(doc any) any {
	switch d := doc.(type) {
	case domain.AddressBook:
		return d.Clone()
	case domain.RecordSet[domain.ProposalRecord]:
		return d.Clone()
	case domain.RecordSet[domain.ReportRecord]:
		return d.Clone()
	case domain.RecordSet[domain.PriorityPoolRecord]:
		return d.Clone()
	case domain.RecordSet[domain.ILMRecord]:
		return d.Clone()
	default:
		return doc
	}
}

// checkDocument verifies that doc has the type of kind and passes validation.
func checkDocument(kind domain.RecordKind, doc any) error {
	mismatch := func() error {
		return fmt.Errorf("%w: cannot save %T as %s", domain.ErrRegistryIO, doc, kind)
	}

	switch kind {
	case domain.KindAddresses, domain.KindImplementations:
		book, ok := doc.(domain.AddressBook)
		if !ok || book == nil {
			return mismatch()
		}
		return nil
	case domain.KindProposals:
		return checkRecords[domain.ProposalRecord](kind, doc, mismatch)
	case domain.KindReports:
		return checkRecords[domain.ReportRecord](kind, doc, mismatch)
	case domain.KindPriorityPools:
		return checkRecords[domain.PriorityPoolRecord](kind, doc, mismatch)
	case domain.KindILM:
		return checkRecords[domain.ILMRecord](kind, doc, mismatch)
	default:
		return mismatch()
	}
}

func checkRecords[T domain.Record](kind domain.RecordKind, doc any, mismatch func() error) error {
	set, ok := doc.(domain.RecordSet[T])
	if !ok || set == nil {
		return mismatch()
	}
	for network, records := range set {
		for id, r := range records {
			if err := r.Validate(); err != nil {
				return &domain.SchemaError{Kind: kind, Network: network, Key: id, Reason: err.Error()}
			}
		}
	}
	return nil
}
