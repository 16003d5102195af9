package main

import "github.com/discoveraniket/ration-card-processor/cmd"

func main() {
	cmd.Execute()
}
