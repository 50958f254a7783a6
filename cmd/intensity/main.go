package main

import "github.com/edp1096/intensity/cmd/intensity/cmd"

func main() {
	cmd.Execute()
}
