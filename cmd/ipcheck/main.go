package main

import (
	"github.com/charmbracelet/log"

	"github.com/matsu1213/ipcheck/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal("application terminated", "error", err)
	}
}
