package main

import "github.com/chrlschwb/l1x-xcdp-test/cmd"

func main() {
	cmd.Execute()
}
