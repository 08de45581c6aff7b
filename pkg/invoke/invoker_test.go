package invoke

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
	"github.com/aretw0/fsmtrail/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Mailer struct {
	sent []string
}

type OrderService struct {
	approved []string
}

func (s *OrderService) Approve(id string, m *Mailer) (bool, error) {
	s.approved = append(s.approved, id)
	m.sent = append(m.sent, id)
	return true, nil
}

func (s *OrderService) Reject(ctx context.Context, id string) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	return errors.New("rejected " + id)
}

func (s *OrderService) Count(n int) int { return n * 2 }

func (s *OrderService) Audit() {}

func (s *OrderService) MethodVisibility(method string) Visibility {
	if method == "Audit" {
		return Protected
	}
	return Public
}

type upper struct{}

func (upper) Invoke(s string) string { return strings.ToUpper(s) }

func typeName[T any]() string { return reflect.TypeFor[T]().String() }

func newTestInvoker(t *testing.T, svc *OrderService, mailer *Mailer) (*Invoker, *recordingResolver) {
	t.Helper()
	resolver := &recordingResolver{values: map[string]any{
		typeName[*Mailer]():       mailer,
		typeName[*OrderService](): svc,
	}}
	return New(resolver), resolver
}

func TestInvoker_BoundMethodAccessDenied(t *testing.T) {
	svc := &OrderService{}
	inv, resolver := newTestInvoker(t, svc, &Mailer{})
	ctx := context.Background()

	tests := []struct {
		name   string
		method string
		reason domain.AccessReason
	}{
		{"missing method", "Cancel", domain.AccessNoSuchMethod},
		{"unexported method", "approve", domain.AccessPrivate},
		{"protected method", "Audit", domain.AccessProtected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.Call(ctx, Method(svc, tt.method), Args{})
			require.ErrorIs(t, err, domain.ErrAccessDenied)
			assert.NotErrorIs(t, err, domain.ErrMissingParameter)

			var denied *domain.AccessDeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, tt.reason, denied.Reason)
			assert.Equal(t, tt.method, denied.Method)
		})
	}
	assert.Empty(t, resolver.calls, "access is checked before any binding")

	_, err := inv.Call(ctx, BoundMethod{Method: "Approve"}, Args{})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestInvoker_BoundMethodInjectsDependencies(t *testing.T) {
	svc := &OrderService{}
	mailer := &Mailer{}
	inv, _ := newTestInvoker(t, svc, mailer)

	out, err := inv.Call(context.Background(), Method(svc, "Approve"), Positional("order-1"))
	require.NoError(t, err)
	assert.Equal(t, []any{true}, out)
	assert.Equal(t, []string{"order-1"}, mailer.sent)
}

func TestInvoker_ContextParameterReceivesCallContext(t *testing.T) {
	svc := &OrderService{}
	inv, resolver := newTestInvoker(t, svc, &Mailer{})

	_, err := inv.Call(context.Background(), Method(svc, "Reject"), Named(map[string]any{"arg1": "o-9"}))
	require.EqualError(t, err, "rejected o-9")
	assert.NotContains(t, resolver.calls, "context.Context")
}

func TestInvoker_AllShapesShareOneBindingPath(t *testing.T) {
	svc := &OrderService{}
	mailer := &Mailer{}
	inv, _ := newTestInvoker(t, svc, mailer)
	require.NoError(t, inv.Registry().Register("Orders", "approve", func(id string, m *Mailer) (bool, error) {
		m.sent = append(m.sent, "static:"+id)
		return true, nil
	}, signature.Names("id", "mailer")))

	shapes := map[string]Callable{
		"bound":     Method(svc, "Approve"),
		"named":     NamedType{Type: typeName[*OrderService](), Method: "Approve"},
		"stringref": Ref(typeName[*OrderService]() + "@Approve"),
		"static":    Ref("Orders@approve"),
		"invocable": Func(svc.Approve),
	}

	for name, c := range shapes {
		t.Run(name, func(t *testing.T) {
			out, err := inv.Call(context.Background(), c, Positional("o-1"))
			require.NoError(t, err)
			assert.Equal(t, []any{true}, out)

			_, err = inv.Call(context.Background(), c, Args{})
			assert.ErrorIs(t, err, domain.ErrMissingParameter, "every shape reports the same binding failure")
		})
	}
	assert.Len(t, mailer.sent, len(shapes))
	assert.Contains(t, mailer.sent, "static:o-1")
}

func TestInvoker_UnknownCallables(t *testing.T) {
	inv := New(nil)
	ctx := context.Background()

	for name, c := range map[string]Callable{
		"unregistered type":  Ref("Ghost@run"),
		"malformed ref":      Ref("no-at-sign"),
		"empty method":       Ref("Type@"),
		"not invocable":      Invocable{Fn: 42},
		"nil invocable":      Invocable{},
		"nil callable":       nil,
		"named missing type": NamedType{Type: "Ghost", Method: "Run"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := inv.Call(ctx, c, Args{})
			assert.ErrorIs(t, err, domain.ErrUnknownCallable)
		})
	}

	svc := &OrderService{}
	inv, _ = newTestInvoker(t, svc, &Mailer{})
	_, err := inv.Call(ctx, NamedType{Type: typeName[*OrderService](), Method: "Missing"}, Args{})
	assert.ErrorIs(t, err, domain.ErrUnknownCallable)
}

func TestInvoker_InvokeMethodValue(t *testing.T) {
	out, err := New(nil).Call(context.Background(), Invocable{Fn: upper{}}, Positional("go"))
	require.NoError(t, err)
	assert.Equal(t, []any{"GO"}, out)
}

func TestInvoker_ArgumentConversion(t *testing.T) {
	svc := &OrderService{}
	inv := New(nil)
	ctx := context.Background()

	out, err := inv.Call(ctx, Method(svc, "Count"), Positional(float64(21)))
	require.NoError(t, err, "JSON numbers convert to integer parameters")
	assert.Equal(t, []any{42}, out)

	_, err = inv.Call(ctx, Method(svc, "Count"), Positional("21"))
	assert.ErrorIs(t, err, domain.ErrArgumentType)

	_, err = inv.Call(ctx, Method(svc, "Count"), Positional(nil))
	assert.ErrorIs(t, err, domain.ErrArgumentType)
}

func TestInvoker_NumericConversionIsLossless(t *testing.T) {
	var gotN int
	var gotU uint8
	fn := Func(func(n int, u uint8) { gotN, gotU = n, u }, signature.Names("n", "u"))
	ctx := context.Background()
	inv := New(nil)

	_, err := inv.Call(ctx, fn, Named(map[string]any{"n": 3.0, "u": float64(255)}))
	require.NoError(t, err)
	assert.Equal(t, 3, gotN)
	assert.Equal(t, uint8(255), gotU)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"fractional float to int", map[string]any{"n": 3.7, "u": 1}},
		{"negative float to uint", map[string]any{"n": 1, "u": -1.0}},
		{"negative int to uint", map[string]any{"n": 1, "u": -1}},
		{"int overflows uint8", map[string]any{"n": 1, "u": 300}},
		{"float overflows uint8", map[string]any{"n": 1, "u": 256.0}},
		{"uint64 overflows int", map[string]any{"n": uint64(math.MaxUint64), "u": 1}},
		{"NaN to int", map[string]any{"n": math.NaN(), "u": 1}},
		{"infinity to int", map[string]any{"n": math.Inf(1), "u": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.Call(ctx, fn, Named(tt.args))
			assert.ErrorIs(t, err, domain.ErrArgumentType)
		})
	}

	_, err = inv.Call(ctx, Func(func(f float32) {}), Positional(1e300))
	assert.ErrorIs(t, err, domain.ErrArgumentType, "float64 beyond float32 range")
}

func TestInvoker_SignatureOverride(t *testing.T) {
	sig, err := signature.Of(func(name string, greeting string) {}, signature.Names("name", "greeting"), signature.Default("greeting", "hello"))
	require.NoError(t, err)

	fn := Invocable{Fn: func(name, greeting string) string { return greeting + " " + name }, Signature: &sig}
	out, err := New(nil).Call(context.Background(), fn, Named(map[string]any{"name": "ada"}))
	require.NoError(t, err)
	assert.Equal(t, []any{"hello ada"}, out)

	bad := Invocable{Fn: func() {}, Signature: &sig}
	_, err = New(nil).Call(context.Background(), bad, Args{})
	assert.Error(t, err)
}

func TestInvoker_RegistrySignatureOverrideMustMatch(t *testing.T) {
	sig, err := signature.Of(func(a, b string) {}, signature.Names("a", "b"))
	require.NoError(t, err)
	inv := New(nil)
	require.NoError(t, inv.Registry().Register("Order", "check", func(a string) bool { return a != "" }))

	for _, c := range []Callable{
		NamedType{Type: "Order", Method: "check", Signature: &sig},
		StringRef{Ref: "Order@check", Signature: &sig},
	} {
		assert.NotPanics(t, func() {
			_, err := inv.Call(context.Background(), c, Positional("x", "y"))
			assert.ErrorContains(t, err, "signature declares 2 parameters, function takes 1")
		}, c.Describe())
	}

	one, err := signature.Of(func(a string) {}, signature.Names("a"))
	require.NoError(t, err)
	out, err := inv.Call(context.Background(), StringRef{Ref: "Order@check", Signature: &one}, Named(map[string]any{"a": "x"}))
	require.NoError(t, err)
	assert.Equal(t, []any{true}, out)
}

func TestInvoker_PrepareNormalizesOnce(t *testing.T) {
	resolutions := 0
	inv := New(ports.ResolverFunc(func(typeName string) (any, bool) {
		if typeName != "OrderService" {
			return nil, false
		}
		resolutions++
		return &OrderService{}, true
	}))
	ctx := context.Background()

	p, err := inv.Prepare(ctx, StringRef{Ref: "OrderService@Count"})
	require.NoError(t, err)
	assert.Equal(t, "OrderService@Count", p.Name())
	assert.Len(t, p.Signature().Params, 1)

	out, err := p.Call(ctx, Positional(4))
	require.NoError(t, err)
	assert.Equal(t, []any{8}, out)
	assert.Equal(t, 1, resolutions)

	_, err = inv.Prepare(ctx, StringRef{Ref: "Unknown@Count"})
	assert.ErrorIs(t, err, domain.ErrUnknownCallable)
}

func TestInvoker_VariadicFunction(t *testing.T) {
	join := func(sep string, parts ...string) string { return strings.Join(parts, sep) }

	out, err := New(nil).Call(context.Background(), Func(join), Positional("-", []string{"a", "b"}))
	require.NoError(t, err)
	assert.Equal(t, []any{"a-b"}, out)
}

func TestInvoker_NilResolverIsAllowed(t *testing.T) {
	inv := New(ports.NopResolver)
	_, err := inv.Call(context.Background(), Func(func(m *Mailer) {}), Args{})
	assert.ErrorIs(t, err, domain.ErrMissingParameter)
}
