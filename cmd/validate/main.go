package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gnemet/dyntable"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: dyntable-validate <schema_path> <catalog_path1> [catalog_path2] ...")
		os.Exit(1)
	}

	schemaPath := os.Args[1]
	if _, err := os.Stat(schemaPath); err != nil {
		log.Fatalf("Invalid schema path: %v", err)
	}

	allValid := true
	for _, catalogPath := range os.Args[2:] {
		name := filepath.Base(catalogPath)

		if err := dyntable.ValidateCatalog(schemaPath, catalogPath); err != nil {
			fmt.Printf("❌ %v\n", err)
			allValid = false
			continue
		}

		cat, err := dyntable.LoadCatalog(catalogPath)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", name, err)
			allValid = false
			continue
		}

		fmt.Printf("✅ %s is valid (%d objects).\n", name, len(cat.Objects))
		for _, obj := range cat.Objects {
			fmt.Printf("   - %s: %d columns\n", obj.Name, len(obj.Columns))
		}
	}

	if !allValid {
		os.Exit(1)
	}
}
