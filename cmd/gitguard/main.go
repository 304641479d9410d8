package main

import (
	"os"

	"github.com/gitguardhq/gitguard/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
