package main

import (
	"fmt"
	"os"
	"os/exec"

	"pairbot/src/config"
	"pairbot/src/database"
)

// Applies the atlas migrations to the database named in the backtest config
// given as the first argument (or CONFIG_PATH).

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	appConfig, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if appConfig.Database == nil {
		fmt.Println("config has no postgres section")
		os.Exit(1)
	}

	uri := database.MakeConnectionString(appConfig.Database)

	fmt.Printf("Executing migrations against db at: %s:%d/%s\n",
		appConfig.Database.Host, appConfig.Database.Port, appConfig.Database.Database)

	cmd := exec.Command("atlas", "migrate", "apply",
		"--url", uri,
		"--dir", "file://atlas/migrations",
	)
	output, err := cmd.CombinedOutput()

	fmt.Print(string(output))

	if err != nil {
		fmt.Printf("failed to run Atlas migrations: %v\n", err)
		os.Exit(1)
	}
}
