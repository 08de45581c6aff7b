package invoke

import (
	"testing"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
	"github.com/aretw0/fsmtrail/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingResolver resolves from a fixed map and remembers every lookup.
type recordingResolver struct {
	values map[string]any
	calls  []string
}

func (r *recordingResolver) Resolve(typeName string) (any, bool) {
	r.calls = append(r.calls, typeName)
	v, ok := r.values[typeName]
	return v, ok
}

func TestBind_NamedEntryWinsOverPositional(t *testing.T) {
	params := []signature.Parameter{
		{Name: "a", Type: signature.String()},
		{Name: "b", Type: signature.String()},
	}
	args := Positional("pos-a", "pos-b").With("a", "named-a")

	got, err := Bind(params, args, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"named-a", "pos-b"}, got)
}

func TestBind_ExplicitNilIsAnEntry(t *testing.T) {
	resolver := &recordingResolver{values: map[string]any{"ClassX": "instance"}}
	params := []signature.Parameter{{Name: "x", Type: signature.Class("ClassX")}}

	got, err := Bind(params, Named(map[string]any{"x": nil}), resolver)
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, got)
	assert.Empty(t, resolver.calls, "an explicit nil must not trigger resolution")
}

func TestBind_BuiltinTypesAreNeverResolved(t *testing.T) {
	for _, typ := range []signature.Type{signature.String(), signature.Int(), signature.Bool(), signature.Array(), signature.Mixed()} {
		t.Run(typ.Name(), func(t *testing.T) {
			resolver := &recordingResolver{values: map[string]any{typ.Name(): "should not be used"}}
			params := []signature.Parameter{{Name: "p", Type: typ}}

			_, err := Bind(params, Args{}, resolver)
			assert.ErrorIs(t, err, domain.ErrMissingParameter)
			assert.Empty(t, resolver.calls)
		})
	}
}

func TestBind_NonInjectableShapesFallThroughToDefault(t *testing.T) {
	resolver := &recordingResolver{values: map[string]any{"ClassX": "resolved"}}
	params := []signature.Parameter{
		{Name: "nullable", Type: signature.Class("ClassX"), Nullable: true, HasDefault: true, Default: "d1"},
		{Name: "union", Type: signature.AnyOf(signature.Class("ClassX"), signature.Class("ClassY")), HasDefault: true, Default: "d2"},
		{Name: "inter", Type: signature.AllOf(signature.Class("ClassX"), signature.Class("ClassY")), HasDefault: true, Default: "d3"},
		{Name: "untyped", Type: signature.None{}, HasDefault: true, Default: "d4"},
	}

	got, err := Bind(params, Args{}, resolver)
	require.NoError(t, err)
	assert.Equal(t, []any{"d1", "d2", "d3", "d4"}, got)
	assert.Empty(t, resolver.calls)
}

func TestBind_ResolvesInjectableParameter(t *testing.T) {
	resolver := &recordingResolver{values: map[string]any{"ClassX": "instance"}}
	params := []signature.Parameter{
		{Name: "a", Type: signature.None{}},
		{Name: "b", Type: signature.Class("ClassX"), HasDefault: true, Default: "unused"},
	}

	got, err := Bind(params, Named(map[string]any{"a": "v"}), resolver)
	require.NoError(t, err)
	assert.Equal(t, []any{"v", "instance"}, got)
	assert.Equal(t, []string{"ClassX"}, resolver.calls)
}

func TestBind_ResolutionFailureWithoutDefault(t *testing.T) {
	params := []signature.Parameter{
		{Name: "a", Type: signature.None{}},
		{Name: "b", Type: signature.Class("ClassX")},
	}

	_, err := Bind(params, Named(map[string]any{"a": "v"}), &recordingResolver{})
	require.ErrorIs(t, err, domain.ErrMissingParameter)

	var missing *domain.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "b", missing.Parameter)
	assert.Equal(t, 1, missing.Position)
}

func TestBind_ResolutionFailureFallsBackToDefault(t *testing.T) {
	params := []signature.Parameter{
		{Name: "a", Type: signature.None{}},
		{Name: "b", Type: signature.Class("ClassX"), HasDefault: true, Default: "D"},
	}

	got, err := Bind(params, Named(map[string]any{"a": "v"}), &recordingResolver{})
	require.NoError(t, err)
	assert.Equal(t, []any{"v", "D"}, got)
}

func TestBind_PanickingResolverCountsAsFailure(t *testing.T) {
	resolver := ports.ResolverFunc(func(string) (any, bool) { panic("container exploded") })
	params := []signature.Parameter{{Name: "b", Type: signature.Class("ClassX"), HasDefault: true, Default: "D"}}

	got, err := Bind(params, Args{}, resolver)
	require.NoError(t, err)
	assert.Equal(t, []any{"D"}, got)
}

func TestBind_IgnoresExtraEntriesAndKeepsDeclarationOrder(t *testing.T) {
	params := []signature.Parameter{
		{Name: "first", Type: signature.Int()},
		{Name: "second", Type: signature.Int()},
		{Name: "third", Type: signature.Int(), HasDefault: true, Default: 3},
	}
	args := Named(map[string]any{"second": 2, "unknown": "ignored"}).At(0, 1).At(7, "ignored")

	got, err := Bind(params, args, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestBind_NoParameters(t *testing.T) {
	got, err := Bind(nil, Positional("x"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestArgs_CopyOnWrite(t *testing.T) {
	base := Named(map[string]any{"a": 1})
	derived := base.With("b", 2).At(0, "zero")

	_, ok := base.Lookup("b")
	assert.False(t, ok)
	_, ok = base.LookupAt(0)
	assert.False(t, ok)
	assert.Equal(t, 3, derived.Len())

	merged := base.Merge(Named(map[string]any{"a": 10}))
	v, _ := merged.Lookup("a")
	assert.Equal(t, 10, v)
	v, _ = base.Lookup("a")
	assert.Equal(t, 1, v)
}
