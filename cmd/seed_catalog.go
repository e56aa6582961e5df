package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"listbuilder/internal/catalog"
)

// seed_catalog writes a YAML fixture into a SQLite piece catalog, or dumps a
// catalog back out as a fixture. Handy for local runs without the full
// catalog built from the engine module.
func main() {
	var (
		fixture = flag.String("fixture", "", "YAML fixture to load (required unless -dump)")
		dbFile  = flag.String("db", "vlb_pieces.vlo", "SQLite catalog to create or update")
		dump    = flag.Bool("dump", false, "print the catalog as a YAML fixture instead of seeding it")
	)
	flag.Parse()

	if *dump {
		if err := dumpCatalog(*dbFile); err != nil {
			fmt.Printf("Error dumping catalog: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *fixture == "" {
		fmt.Println("Error: -fixture is required")
		flag.Usage()
		os.Exit(2)
	}

	n, err := seedCatalog(*fixture, *dbFile)
	if err != nil {
		fmt.Printf("Error seeding catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d pieces into %s\n", n, *dbFile)
}

func seedCatalog(fixture, dbFile string) (int, error) {
	templates, err := catalog.LoadFixture(fixture)
	if err != nil {
		return 0, err
	}
	store, err := catalog.Create(dbFile)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return catalog.Seed(store, templates)
}

func dumpCatalog(dbFile string) error {
	store, err := catalog.Open(dbFile)
	if err != nil {
		return err
	}
	defer store.Close()

	// Preloading orders the dump by type then name.
	mem, err := catalog.Preload(store)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Dumping %d pieces from %s\n", mem.Len(), store.Filename())
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(catalog.Fixture{Pieces: mem.Templates()}); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return enc.Close()
}
