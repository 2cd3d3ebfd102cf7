package errors_test

import (
	"fmt"

	"github.com/agentstation/propverify/pkg/errors"
)

// Example demonstrates checking for the all-sources-empty failure.
func Example() {
	var err error = errors.NewNoDataFoundError("PROP-4K2M9Q1Z")

	if errors.IsNotFound(err) {
		fmt.Println("no record exists for this property")
	}

	// Output: no record exists for this property
}

// Example_resourceError demonstrates wrapping a storage failure.
func Example_resourceError() {
	err := errors.WrapResource("upsert", "property", "PROP-4K2M9Q1Z", errors.New("connection refused"))
	fmt.Println(err)

	// Output: failed to upsert property PROP-4K2M9Q1Z: connection refused
}
