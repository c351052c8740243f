package main

import (
	"os"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
