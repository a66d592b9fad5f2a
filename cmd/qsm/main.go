package main

import (
	"github.com/0rlych1kk4/quantum-safe-multisig/cmd/qsm/cmd"
)

func main() {
	cmd.Execute()
}
