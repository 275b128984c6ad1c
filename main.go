package main

import "github.com/ByLCY/quill/cmd"

func main() {
	cmd.Execute()
}
