package main

import (
	"os"

	"servicecenter/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
