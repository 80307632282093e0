package main

import (
	"os"

	"github.com/yigitkabak/aperium/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
