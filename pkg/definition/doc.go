// Package definition reads machine definitions from YAML files.
//
// A definition names callables by "Type@method" reference, optionally with
// declared parameters:
//
//	name: order
//	attribute: status
//	initial: new
//	states: [new, pending, processing, completed, cancelled]
//	transitions:
//	  - name: process
//	    from: pending
//	    to: processing
//	    guards:
//	      - Inventory@inStock
//	    actions:
//	      - ref: Warehouse@reserve
//	        params:
//	          - {name: sku, type: string}
//	          - {name: note, type: "?string", default: null}
//	  - name: cancel
//	    to: cancelled
//
// Documents are decoded strictly: unknown keys are errors.
package definition
