package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newCLI().execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
