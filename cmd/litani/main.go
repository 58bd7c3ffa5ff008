package main

import (
	"log"
	"os"

	"github.com/litani-build/litani/internal/cli"
)

func main() {
	app := cli.New()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
