package main

import "greenjobs_backend/internal/app"

func main() {
	app.Run()
}
