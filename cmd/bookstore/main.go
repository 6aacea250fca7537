package main

import (
	"log"

	"library-services/internal/app"
	"library-services/internal/config"
)

func main() {
	application, err := app.New(config.ServiceBookStore)
	if err != nil {
		log.Fatal(err)
	}

	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
