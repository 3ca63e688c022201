package domain

import "github.com/ethereum/go-ethereum/common"

// ExternalTokensFor returns the network's protocol tokens.
//
// Test networks read the mock tokens recorded in the book. The production network
// takes each token from pinned when set there, otherwise from the production keys
// of the book. Every token that can't be resolved is reported in one
// MissingDependencyError.
func ExternalTokensFor(network string, book AddressBook, pinned ExternalTokens) (ExternalTokens, error) {
	production := IsProduction(network)
	keys := TokenKeys(network)

	var (
		tokens  ExternalTokens
		missing []MissingKey
	)
	for _, role := range TokenRoles {
		if pin := pinned.ByRole(role); production && pin != (common.Address{}) {
			tokens.set(role, pin)
			continue
		}
		addr, ok := book.Lookup(network, keys[role])
		if !ok {
			missing = append(missing, MissingKey{Consumer: "external tokens", Key: keys[role]})
			continue
		}
		tokens.set(role, addr)
	}
	if len(missing) > 0 {
		return ExternalTokens{}, &MissingDependencyError{Network: network, Missing: missing}
	}
	return tokens, nil
}
