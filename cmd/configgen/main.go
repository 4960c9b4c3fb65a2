package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/danmuck/armwire/internal/config"
)

const defaultPath = "cmd/armlinkd/config.toml"

func main() {
	kind := flag.String("kind", "daemon", "config kind: daemon")
	output := flag.String("output", defaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	printCfg := flag.Bool("print", false, "print an existing config file with defaults applied")
	input := flag.String("input", defaultPath, "config path for validation or printing")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *printCfg {
		if err := printResolved(os.Stdout, *input); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *validate {
		if _, err := config.LoadDaemonConfig(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, *input)
		return
	}

	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, *output)
}

// printResolved loads path, applies defaults and writes it back as TOML.
func printResolved(w io.Writer, path string) error {
	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		return err
	}
	out, err := config.Render(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
