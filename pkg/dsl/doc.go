/*
Package dsl provides a fluent builder for fsm machines.

It is the programmatic counterpart of the YAML definitions read by the
definition package: callables are Go values instead of "Type@method" references.

Example usage:

	b := dsl.New("order", "status").Initial("new")

	b.Transition("submit").From("new").To("pending")

	b.Transition("process").
		From("pending").
		To("processing").
		Guard(invoke.Func(inStock)).
		Do(invoke.Method(warehouse, "Reserve"))

	b.Transition("cancel").To("cancelled")

	machine, err := b.Build()
*/
package dsl
