package constants_test

import (
	"fmt"
	"time"

	"github.com/agentstation/propverify/pkg/constants"
)

// Example demonstrates formatting a date in the canonical layout.
func Example() {
	d := time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC)
	fmt.Println(d.Format(constants.DateLayout))
	// Output: 2023-12-25
}
