// Command weftdump opens a weft document and prints its root value as
// JSON. It exists to give weft/docio and the public API an executable
// entry point, not as a product surface in its own right, so it exposes
// a single flag set rather than a subcommand tree.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arnelofgren/weft"
	"github.com/arnelofgren/weft/docio"
)

func main() {
	json5 := flag.Bool("json5", false, "render as JSON5 (identifier-like keys unquoted)")
	trusted := flag.Bool("trusted", false, "skip structural validation on load")
	extern := flag.String("extern", "", "path to the base document this file amends")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0), *extern, *json5, *trusted); err != nil {
		fmt.Fprintln(os.Stderr, "weftdump:", err)
		os.Exit(1)
	}
}

func run(path, externPath string, json5, trusted bool) error {
	opts := docio.Options{Trust: weft.Untrusted}
	if trusted {
		opts.Trust = weft.Trusted
	}

	var doc *docio.Doc
	var err error
	if externPath != "" {
		doc, err = docio.OpenFileWithExtern(path, externPath, opts)
	} else {
		doc, err = docio.OpenFile(path, opts)
	}
	if err != nil {
		return err
	}
	defer doc.Close()

	if json5 {
		fmt.Println(doc.Root().ToJSON5())
	} else {
		fmt.Println(doc.Root().ToJSON())
	}
	return nil
}
