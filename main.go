package main

import "github.com/avaldivia/document-routing/cmd"

func main() {
	cmd.Execute()
}
