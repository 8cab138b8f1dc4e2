package main

import (
	"fxetl/internal/cli"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := cli.Execute(); err != nil {
		logrus.WithError(err).Error("Pipeline failed")
		os.Exit(1)
	}
}
