package main

import "github.com/ianlopshire/go-fixcol/cmd/fixcol/cmd"

func main() {
	cmd.Execute()
}
