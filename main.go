package main

import (
	"os"

	"github.com/Dolphinator7/airtable-automation/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
