// Command otmqtt bridges the frames of an OpenTherm gateway monitor to
// Home Assistant over MQTT.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
