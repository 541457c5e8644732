package main

import "tradematch_backend/internal/app"

func main() {
	app.Run()
}
