package main

import (
	"fmt"
	"log"

	"github.com/christpg03/mine-bot/internal/crypto"
)

// Genera una clave nueva para ENCRYPTION_KEY.
func main() {
	key, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("generating key: %v", err)
	}
	fmt.Println(key)
}
