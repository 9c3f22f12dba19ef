package main

import "github.com/kamusis/assetmap/cmd"

func main() {
	cmd.Execute()
}
