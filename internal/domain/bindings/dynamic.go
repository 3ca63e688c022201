package bindings

import (
	"fmt"
	"sync"

	"github.com/lmittmann/w3"
)

var dynamicFuncs sync.Map

// AddressGetter returns a view function with the given signature that returns one address.
func AddressGetter(signature string) (*w3.Func, error) {
	return cached(signature, "address")
}

// Setter returns a state-changing function with the given signature and no return values.
func Setter(signature string) (*w3.Func, error) {
	return cached(signature, "")
}

func cached(signature, returns string) (*w3.Func, error) {
	key := signature + "->" + returns
	if fn, ok := dynamicFuncs.Load(key); ok {
		return fn.(*w3.Func), nil
	}
	fn, err := w3.NewFunc(signature, returns)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", signature, err)
	}
	actual, _ := dynamicFuncs.LoadOrStore(key, fn)
	return actual.(*w3.Func), nil
}
