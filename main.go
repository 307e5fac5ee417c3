package main

import "github.com/algorzen/insight-reporter/cmd"

func main() {
	cmd.Execute()
}
