package main

import (
	"github.com/ValentinKolb/tcpIO/cmd"
)

func main() {
	cmd.Execute()
}
