package main

import (
	"fmt"
	"os"
)

func main() {
	a := NewApp(os.Stdout, os.Stderr, os.Stdin)
	rootCmd := SetupCommands(a)

	err := rootCmd.Execute()
	if cerr := a.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
