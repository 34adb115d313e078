package main

import (
	"fmt"
	"io"
	"os"

	_ "ariga.io/atlas-go-sdk/recordriver" // import used by the CLI tool
	"ariga.io/atlas-provider-gorm/gormschema"

	"pairbot/src/database"
)

// Prints the DDL of the backtest_runs and backtest_periods tables for
// `atlas migrate diff`. The dialect is the first argument, postgres by default.
func main() {
	dialect := "postgres"
	if len(os.Args) > 1 {
		dialect = os.Args[1]
	}

	statements, err := loadSchema(dialect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load GORM schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, statements) //nolint:errcheck
}

func loadSchema(dialect string) (string, error) {
	statements, err := gormschema.New(dialect).Load(database.DbTables...)
	if err != nil {
		return "", err
	}
	// run ids default to gen_random_uuid()
	if dialect == "postgres" {
		statements = "CREATE EXTENSION IF NOT EXISTS pgcrypto;\n" + statements
	}
	return statements, nil
}
