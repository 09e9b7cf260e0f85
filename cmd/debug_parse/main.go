package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"var-manager/core/catalog"

	"go.uber.org/zap"
)

// Standalone debugging tool: parse one package archive and dump the
// resulting record as JSON.
//
// Usage: go run ./cmd/debug_parse /path/to/Creator.Name.1.var
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_parse <package.var>")
	}
	path := os.Args[1]

	logg, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}

	parser := catalog.NewParser(nil, nil, logg)
	meta, hash := parser.Parse(context.Background(), path)
	if meta == nil {
		log.Fatal("file skipped: read access denied")
	}

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
	fmt.Printf("contentHash: %d\n", hash)

	stats := parser.Stats()
	fmt.Printf("parsed=%d corrupted=%d\n", stats.Parsed, stats.Corrupted)
}
