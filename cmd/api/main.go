package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title       MediSync Hub API
// @version     1.0
// @description Solicitudes de acceso de médicos a documentos de pacientes, con ventana de 24h.
// @BasePath    /
func main() {
	rootCmd := &cobra.Command{
		Use:          "medisync",
		Short:        "MediSync Hub document access registry",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
