package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kyaoi/pdfview/internal/app"
	"github.com/kyaoi/pdfview/internal/config"
)

func main() {
	var opts app.Options
	var noAltScreen bool
	flag.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "config file (TOML)")
	flag.StringVar(&opts.PrefsPath, "prefs", "", "preference file, overrides prefs_path from the config")
	flag.StringVar(&opts.LogPath, "log", "", "write debug log to this file")
	flag.BoolVar(&noAltScreen, "no-alt-screen", false, "render inline instead of in the alternate screen")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pdfview [flags] [directory | file.pdf ...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.AltScreen = !noAltScreen

	targets := make([]string, 0, flag.NArg())
	for _, arg := range flag.Args() {
		targets = append(targets, filepath.Clean(arg))
	}

	if err := app.Run(targets, opts); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}
