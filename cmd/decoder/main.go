package main

import (
	"os"

	"github.com/lugondev/solana-decoder/cmd/decoder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
