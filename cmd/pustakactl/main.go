// Command pustakactl runs operator tasks against the library database.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"pustaka/internal/config"

	"golang.org/x/term"
)

func main() {
	root := newRootCmd(runtimeEnv{
		loadConfig:   config.Load,
		readPassword: readPassword,
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readPassword reads a password from the terminal with masking.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(bytePassword)), nil
}
