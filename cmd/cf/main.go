package main

import "chronoforge/cmd/cf/root"

func main() {
	root.Execute()
}
