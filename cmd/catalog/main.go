// Command catalog prints the derived series catalog: every
// definition in evaluation order with its components and unit.
// Useful for checking what a pipeline run will try to build.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"bristolgate/internal/catalog"
)

func main() {
	asJSON := flag.Bool("json", false, "emit the catalog as JSON")
	flag.Parse()

	defs := catalog.Definitions()

	if *asJSON {
		type entry struct {
			Name        string   `json:"name"`
			Components  []string `json:"components"`
			Description string   `json:"description,omitempty"`
			Unit        string   `json:"unit,omitempty"`
		}
		entries := make([]entry, 0, len(defs))
		for _, def := range defs {
			entries = append(entries, entry{
				Name:        def.Name,
				Components:  def.Components,
				Description: def.Description,
				Unit:        def.Unit,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			slog.Error("Failed to encode catalog", "error", err)
			os.Exit(1)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOMPONENTS\tUNIT")
	for _, def := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, strings.Join(def.Components, ", "), def.Unit)
	}
	if err := w.Flush(); err != nil {
		slog.Error("Failed to write catalog", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\n%d definitions\n", len(defs))
}
