package main

import "github.com/Ulysses-Xu/ydbf/cmd/ydbf/cmd"

func main() {
	cmd.Execute()
}
