package main

import "github.com/oshokin/git-revision/cmd/git-revision/cmd"

func main() {
	cmd.Execute()
}
