package main

import "handwerk-crm/go_backend/internal/app"

func main() {
	app.Run()
}
