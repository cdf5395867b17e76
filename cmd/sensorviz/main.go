package main

import "github.com/sensorviz/sensorviz/cmd/sensorviz/commands"

func main() {
	commands.Execute()
}
