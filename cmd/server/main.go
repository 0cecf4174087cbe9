// entry point to app :)
package main

import (
	"github.com/sirupsen/logrus"

	"face-enhancer/config"
	"face-enhancer/internal/appServer"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	appServer.NewServer(cfg)
}
