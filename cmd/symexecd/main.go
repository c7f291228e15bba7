// Command symexecd serves the symbolic execution engine over HTTP.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"

	"github.com/swvm/symexec/pkg/server"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	flag.Parse()

	cw := zerolog.ConsoleWriter{Out: colorable.NewColorableStdout()}
	logger := zerolog.New(cw).With().Timestamp().Logger()

	srv, err := server.New(logger)
	if err != nil {
		log.Fatalf("symexecd: creating server: %v", err)
	}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info().Str("addr", addr).Msg("starting symexecd")
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("symexecd: server error: %v", err)
	}
}
