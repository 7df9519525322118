package main

import "stagegate/internal/app"

// @title           Stage-Gate Research Portfolio API
// @version         1.0
// @description     Stage-gate management for research projects: gate reviews, decisions, red flags and portfolio reporting.
// @BasePath        /
func main() {
	app.Run()
}
