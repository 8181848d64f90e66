// Command docgen writes the discogs-alert CLI reference as markdown pages
// or man pages.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/discogs-alert/cmd/discogs-alert/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory")
	format := flag.String("format", "markdown", "markdown or man")
	flag.Parse()

	if err := generate(*output, *format); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("CLI docs (%s) generated in %s/\n", *format, *output)
}

func generate(dir, format string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	switch format {
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	case "man":
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "DISCOGS-ALERT",
			Section: "1",
			Source:  "discogs-alert " + cmd.Version,
		}, dir)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
