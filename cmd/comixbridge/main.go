// Package main implements the comixbridge command, which reads comic book
// archives through the task bridge either once from the command line or as
// an HTTP service.
package main

import (
	"os"

	"github.com/phrazzld/comix-bridge/internal/task"
)

func main() {
	if err := newRootCmd(task.Init).Execute(); err != nil {
		os.Exit(1)
	}
}
