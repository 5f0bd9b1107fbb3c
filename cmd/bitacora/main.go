// bitacora es la herramienta de operación: reproduce el libro persistido y prueba el roster.
//
// Uso: go run ./cmd/bitacora replay --driver memory --snapshot data/bitacora.json
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/bitacora/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
