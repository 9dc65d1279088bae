package main

import (
	"os"

	"github.com/yoockh/voiceeval/app/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
