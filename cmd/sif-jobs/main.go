// Command sif-jobs runs the example analytics jobs: triangle counting,
// k-means clustering, rolling top words and windowed word counting.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
