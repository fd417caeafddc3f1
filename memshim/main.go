package main

import "github.com/sarchlab/memshim/memshim/cmd"

func main() {
	cmd.Execute()
}
