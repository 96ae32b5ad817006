// Command hutplanctl runs the occupancy core against a snapshot file without
// a database: lane stacking, range reports and assignment validation.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
