package main

import "github.com/pfrederiksen/uoft-courses/internal/cli"

func main() {
	cli.Execute()
}
