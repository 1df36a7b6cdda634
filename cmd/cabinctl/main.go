package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/cabin-booking/internal/cli"
	"github.com/iliyamo/cabin-booking/internal/config"
)

func main() {
	_ = godotenv.Load()

	if err := cli.RootCmd(cli.NewEnv(config.LoadDB())).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
