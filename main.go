package main

import (
	"os"

	"github.com/sosy-lab/cpachecker-sub130/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
