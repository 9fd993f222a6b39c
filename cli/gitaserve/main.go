package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	servecmder "github.com/papercomputeco/gita/cmd/gita/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "gitaserve"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .gita/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
