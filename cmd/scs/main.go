// Command scs is the fleet configuration & provisioning engine's CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/wstrucke/scs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scs:", err)
		os.Exit(1)
	}
}
