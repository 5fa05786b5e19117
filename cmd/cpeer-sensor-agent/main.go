package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/sensoragent/cmd/cpeer-sensor-agent/app"
)

func main() {
	app.NewApp().Run()
}
