// Command migrate initializes the local store and runs pending migrations,
// then exits. Useful for provisioning a data directory ahead of first run.
package main

import (
	"flag"
	"log"

	"fieldform/backend/config"
	"fieldform/backend/database"
)

func main() {
	dataDir := flag.String("data-dir", "", "data directory (defaults to configured DATA_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	dir := cfg.Store.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	if err := database.InitDB(dir); err != nil {
		log.Fatal(err)
	}
	defer database.DB.Close()

	if !database.Persistent {
		log.Fatal("store fell back to memory; refusing to migrate a non-persistent database")
	}

	log.Println("Migrations completed successfully")
}
