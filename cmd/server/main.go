package main

import "github.com/eleven-am/pathsense/internal/bootstrap"

func main() {
	bootstrap.Run()
}
