package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/nlquery/mysql-ai/cmd"
)

// version is set during build via ldflags
var version = "dev"

func main() {
	// A .env in the working directory fills MYSQL_AI_* variables; absence is
	// not an error.
	_ = godotenv.Load()

	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
