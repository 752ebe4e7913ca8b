package main

import (
	"github.com/dollet000/dollet-stats/cmd"
)

func main() {
	cmd.Execute()
}
