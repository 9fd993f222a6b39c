package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	gitacmder "github.com/papercomputeco/gita/cmd/gita"
)

func main() {
	cmd := gitacmder.NewGitaCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
