package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbType string
	flag.StringVar(&dbType, "db", "", "database type: postgres, mysql or mariadb (default DB_TYPE)")
	flag.Parse()

	usage := `
Run a storefront database in a testcontainer and print the settings that reach it.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-db DB_TYPE]

ENV_FILE_PATH: path to the .env file
DB_TYPE: postgres, mysql or mariadb. DB_IMAGE overrides the image,
DB_HOST_PORT binds the database to a fixed local port.

example
  testcontainers -f /path/to/something/.env -db postgres
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	if dbType == "" {
		dbType = os.Getenv("DB_TYPE")
	}
	if dbType == "" || dbType == "sqlite" || dbType == "sqlite-purego" {
		dbType = "mariadb"
	}

	container, err := testutil.StartDatabase(nil, dbType, &config.Config{DBLogLevel: "warn"})
	if err != nil {
		log.Fatalf("Failed to create test container: %v\n", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test container...\n", sig)
	container.Terminate(nil)
}
