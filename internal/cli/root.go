// Package cli implementa la herramienta de operación bitacora (cobra).
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// RootOptions flags globales de todos los comandos.
type RootOptions struct {
	Format string // "text" | "json"
}

// ValidFormats formatos de salida permitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand crea el comando raíz.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bitacora",
		Short: "Herramientas de operación del libro y del roster",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("formato %q inválido: debe ser uno de %v", opts.Format, ValidFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (text|json)")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewRosterCommand(opts))
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
