package definition_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/fsmtrail/pkg/adapters/memory"
	"github.com/aretw0/fsmtrail/pkg/definition"
	"github.com/aretw0/fsmtrail/pkg/fsm"
	"github.com/aretw0/fsmtrail/pkg/invoke"
	"github.com/aretw0/fsmtrail/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OrderDefinition(t *testing.T) {
	doc, err := definition.Load(filepath.Join("testdata", "order.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "order", doc.Name)
	assert.Equal(t, "status", doc.Attribute)
	require.Len(t, doc.Transitions, 4)
	assert.Equal(t, []string{"new"}, doc.Transitions[0].From, "a single state is lifted into a list")
	assert.Equal(t, "Inventory@InStock", doc.Transitions[1].Guards[0].Ref)

	params := doc.Transitions[1].Actions[0].Params
	require.Len(t, params, 3)
	assert.False(t, params[0].HasDefault)
	assert.True(t, params[1].HasDefault, "an explicit null default is still a default")
	assert.Nil(t, params[1].Default)
	assert.Equal(t, 1, params[2].Default)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := definition.Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := definition.Parse([]byte("name: x\nattribute: s\nstates: [a]\ncolour: blue\n"))
	assert.ErrorContains(t, err, "colour")

	_, err = definition.Parse([]byte("name: [unterminated"))
	assert.Error(t, err)
}

func TestDocument_Machine(t *testing.T) {
	doc, err := definition.Load(filepath.Join("testdata", "order.yaml"))
	require.NoError(t, err)

	m, err := doc.Machine()
	require.NoError(t, err)

	process, ok := m.Transition("process")
	require.True(t, ok)
	require.Len(t, process.Actions, 1)

	ref, ok := process.Actions[0].(invoke.StringRef)
	require.True(t, ok)
	assert.Equal(t, "Warehouse@Reserve", ref.Ref)
	require.NotNil(t, ref.Signature)
	note, ok := ref.Signature.Param("note")
	require.True(t, ok)
	assert.True(t, note.Nullable)
	assert.Equal(t, signature.String(), note.Type)

	guard := process.Guards[0].(invoke.StringRef)
	assert.Nil(t, guard.Signature, "without params the signature comes from reflection")
}

type Inventory struct{ stock map[string]int }

func (i *Inventory) InStock(sku string) bool { return i.stock[sku] > 0 }

type Warehouse struct{ reserved []string }

func (w *Warehouse) Reserve(sku string, note *string, quantity int) {
	for range quantity {
		w.reserved = append(w.reserved, sku)
	}
}

type Mailer struct{}

func (Mailer) Receipt() {}

func TestDocument_MachineRunsWithRegistry(t *testing.T) {
	doc, err := definition.Load(filepath.Join("testdata", "order.yaml"))
	require.NoError(t, err)
	m, err := doc.Machine()
	require.NoError(t, err)

	inventory := &Inventory{stock: map[string]int{"sku-1": 3}}
	warehouse := &Warehouse{}
	resolver := map[string]any{"Inventory": inventory, "Warehouse": warehouse, "Mailer": Mailer{}}
	inv := invoke.New(resolverFunc(resolver))

	e, err := fsm.New(m, memory.NewEventLog(), fsm.WithInvoker(inv))
	require.NoError(t, err)

	order := fsm.NewObject("order", "1", map[string]string{"status": "pending"})
	_, err = e.Apply(context.Background(), order, fsm.Request{
		Transition: "process",
		Args:       invoke.Named(map[string]any{"sku": "sku-1"}).At(0, "sku-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sku-1"}, warehouse.reserved)
}

type resolverFunc map[string]any

func (r resolverFunc) Resolve(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}
