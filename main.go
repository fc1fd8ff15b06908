package main

import (
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/cmd"
)

// init configures the initial logging level before flags are parsed.
func init() {
	logrus.SetLevel(logrus.InfoLevel)
}

// main is the entry point of the stevedore CLI.
func main() {
	cmd.Execute()
}
