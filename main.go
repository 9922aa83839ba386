/*
Copyright © 2022 Daniils Petrovs <thedanpetrov@gmail.com>

*/
package main

import "github.com/DaniruKun/boostmeter-overlay/cmd"

func main() {
	cmd.Execute()
}
