package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "lumina"}

	root.AddCommand(serveCMD(), migrateCMD(), ingestCMD(), leadsCMD(), indexCMD())
	_ = root.Execute()
}
