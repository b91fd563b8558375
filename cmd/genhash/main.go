// cmd/genhash/main.go: Imprime el hash bcrypt de una clave, para cargar
// usuarios a mano. Uso: go run ./cmd/genhash <clave>
package main

import (
	"fmt"
	"os"

	"bazarpos/internal/config"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <clave>")
		os.Exit(2)
	}
	cost := bcrypt.DefaultCost
	if cfg, err := config.Load(); err == nil && cfg.BcryptCost > 0 {
		cost = cfg.BcryptCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), cost)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(h))
}
