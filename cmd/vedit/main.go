package main

import (
	"github.com/mengelbart/vedit/cmdmain"
	_ "github.com/mengelbart/vedit/subcmd"
)

func main() {
	cmdmain.Main()
}
