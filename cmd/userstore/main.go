package main

import (
	"log"

	"library-services/internal/app"
	"library-services/internal/config"
)

func main() {
	application, err := app.New(config.ServiceUserStore)
	if err != nil {
		log.Fatal(err)
	}

	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
