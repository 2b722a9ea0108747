package main

import (
	"github.com/jsphweid/retempo/cmd"
)

func main() {
	cmd.Execute()
}
