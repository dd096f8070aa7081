package main

import (
	"os"

	"github.com/eisodos-svm/eisodos-bench/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
