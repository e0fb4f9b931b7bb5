package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/zurustar/notebank/pkg/app"
)

// Bundled soundfonts ("<instrument>-ogg.js", "<instrument>-mp3.js" or
// GeneralUser-GS.sf2) placed in soundfonts/ are compiled into the binary.
//
//go:embed soundfonts
var embeddedSoundfonts embed.FS

func main() {
	application := app.New(embeddedSoundfonts)
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
