package main

import "os"

func main() {
	defer func() {
		os.Exit(2)
	}()
	os.Exit(1) // want "avoid direct os.Exit call in main function of main package"
}

func run() {
	os.Exit(3)
}
