package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	_ = godotenv.Load()
	Execute()
}
