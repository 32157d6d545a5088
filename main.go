package main

import (
	_ "time/tzdata"

	"github.com/kozaktomas/attendance-kiosk/cmd"
)

func main() {
	cmd.Execute()
}
