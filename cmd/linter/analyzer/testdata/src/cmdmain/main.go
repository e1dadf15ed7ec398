package main

import (
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
)

func main() {
	log.Fatal("allowed in main")
	zlog.Fatal().Msg("allowed in main")
	os.Exit(0)

	func() {
		os.Exit(1)
	}()
}

func init() {
	panic("panic forbidden even in init") // want "panic is forbidden"
	log.Fatal("forbidden in init")        // want "log.Fatal is forbidden outside main function"
	os.Exit(1)                            // want "os.Exit is forbidden outside main function"
}

func run() {
	zlog.Fatal().Msg("not main") // want "zerolog log.Fatal is forbidden outside main function"
}
