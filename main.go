// content-forge is the offline batch pipeline that populates the
// category content store from a generative service.
package main

import (
	"fmt"
	"os"

	"github.com/jonesrussell/north-cloud/content-forge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
