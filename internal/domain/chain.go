package domain

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	Name       string
	SourcePath string
	ABI        abi.ABI
	Bytecode   []byte
}

// HasConstructorInputs reports whether the constructor takes arguments.
func (a *Artifact) HasConstructorInputs() bool {
	return len(a.ABI.Constructor.Inputs) > 0
}

// DeployReceipt is what the chain returns for one contract creation.
type DeployReceipt struct {
	Address  common.Address
	TxHash   common.Hash
	GasUsed  uint64
	Reverted bool
}

// TxReceipt is what the chain returns for one mined transaction.
type TxReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Reverted    bool
}
