package main

import "github.com/KaramelBytes/cramerplot/cmd"

func main() {
	cmd.Execute()
}
