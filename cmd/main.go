package main

import (
	"os"

	"github.com/tcfw/auctionhouse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
