package forbiddencalls

import (
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
)

func SomePanicFunction() {
	panic("this is forbidden") // want "panic is forbidden"
}

func SomeLogFatalFunction() {
	log.Fatal("this is forbidden") // want "log.Fatal is forbidden outside main function"
}

func SomeOsExitFunction() {
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}

func SomeStdPrintFunction(shortURL string) {
	log.Printf("resolved %s", shortURL) // want "log.Printf is forbidden, use zerolog"
	log.Println("done")                 // want "log.Println is forbidden, use zerolog"
}

func SomeZerologFunction(shortURL string) {
	zlog.Info().Str("shortUrl", shortURL).Msg("resolved")
	zlog.Fatal().Msg("storage unavailable") // want "zerolog log.Fatal is forbidden outside main function"
}

func main() {
	os.Exit(0) // want "os.Exit is forbidden outside main function"
}

func MultipleCallsFunction() {
	panic("panic 1")   // want "panic is forbidden"
	log.Fatal("fatal") // want "log.Fatal is forbidden outside main function"
	os.Exit(0)         // want "os.Exit is forbidden outside main function"
}
