package main

import (
	"log"
)

// Build details injected with -ldflags at compile time.
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("book list api failed to initialize: ", err)
	}
	if err = app.Run(); err != nil {
		log.Fatal("book list api exited. check logs for more details: ", err)
	}
}
