package main

import "github.com/CodingBot000/miracle3day-sub001/cmd"

func main() {
	cmd.Execute()
}
