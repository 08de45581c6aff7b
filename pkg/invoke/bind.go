package invoke

import (
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
	"github.com/aretw0/fsmtrail/pkg/signature"
)

// Bind resolves args against params and returns one value per parameter,
// in declaration order. Entries of args matching no parameter are ignored.
// The resolver is consulted at most once per injectable parameter and never retried.
func Bind(params []signature.Parameter, args Args, resolver ports.Resolver) ([]any, error) {
	if resolver == nil {
		resolver = ports.NopResolver
	}

	out := make([]any, len(params))
	for i, p := range params {
		if v, ok := args.Lookup(p.Name); ok {
			out[i] = v
			continue
		}
		if v, ok := args.LookupAt(i); ok {
			out[i] = v
			continue
		}

		if p.Injectable() {
			if v, ok := safeResolve(resolver, p.Type.Name()); ok {
				out[i] = v
				continue
			}
		}

		if p.HasDefault {
			out[i] = p.Default
			continue
		}

		return nil, &domain.MissingParameterError{Parameter: p.Name, Position: i}
	}
	return out, nil
}

// safeResolve treats a panicking resolver as a failed resolution.
func safeResolve(r ports.Resolver, typeName string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	return r.Resolve(typeName)
}
