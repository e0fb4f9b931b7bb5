package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/cli"
	"github.com/zurustar/notebank/pkg/fileutil"
)

// ErrNoSampleSource is returned when no sample source could be located.
var ErrNoSampleSource = errors.New("no sample source found")

// EmbeddedSoundfontDir is the directory of the embedded file system that
// holds bundled soundfonts.
const EmbeddedSoundfontDir = "soundfonts"

// DefaultSoundFontName is the default SoundFont filename to search for.
const DefaultSoundFontName = "GeneralUser-GS.sf2"

// SoundFontLocation represents the location of a SoundFont file.
type SoundFontLocation struct {
	// Path is the path to the SoundFont file
	Path string
	// FileSystem is the FileSystem to use for loading (nil for external files)
	FileSystem fileutil.FileSystem
	// IsEmbedded indicates whether the SoundFont is embedded
	IsEmbedded bool
}

// SampleSource is one place a bank can be loaded from.
type SampleSource struct {
	// Name describes the source in logs.
	Name string
	// Loader builds banks from this source.
	Loader bank.Loader
}

// findSoundFont searches for a SoundFont file in the following order:
// 1. Embedded soundfonts directory
// 2. Current directory (external)
// 3. Soundfont directory (external)
//
// Returns nil if not found.
func findSoundFont(embedFS fs.FS, soundfontDir string) *SoundFontLocation {
	// 1. 埋め込みの soundfonts ディレクトリ
	if embedFS != nil {
		embedded := fileutil.NewEmbedFS(embedFS, EmbeddedSoundfontDir)
		if data, err := embedded.ReadFile(DefaultSoundFontName); err == nil && len(data) > 0 {
			return &SoundFontLocation{
				Path:       DefaultSoundFontName, // FileSystemのベースパスが"soundfonts"なので、ファイル名だけ
				FileSystem: embedded,
				IsEmbedded: true,
			}
		}
	}

	// 2. カレントディレクトリ
	if _, err := os.Stat(DefaultSoundFontName); err == nil {
		return &SoundFontLocation{
			Path:       DefaultSoundFontName,
			FileSystem: nil,
			IsEmbedded: false,
		}
	}

	// 3. サウンドフォントディレクトリ
	if soundfontDir != "" {
		if path, err := fileutil.FindFileCaseInsensitive(soundfontDir, DefaultSoundFontName); err == nil {
			return &SoundFontLocation{
				Path:       path,
				FileSystem: nil,
				IsEmbedded: false,
			}
		}
	}

	return nil
}

// hasBundle reports whether fsys holds a soundfont bundle for instrument in
// any compressed format.
func hasBundle(fsys fileutil.FileSystem, instrument string) bool {
	for _, f := range []bank.Format{bank.FormatOgg, bank.FormatMP3} {
		if fileutil.Exists(fsys, bank.SoundfontJSPath(instrument, f)) {
			return true
		}
	}
	return false
}

// findSampleSources lists the sources a bank is loaded from, in order:
// 1. Embedded soundfont bundles
// 2. External soundfont directory (bundles, then per-note WAV files)
// 3. Soundfont base URL
// 4. SoundFont (.sf2) file: explicit path, else the default file found by findSoundFont
func findSampleSources(embedFS fs.FS, config *cli.Config) ([]SampleSource, error) {
	var sources []SampleSource

	if embedFS != nil {
		embedded := fileutil.NewEmbedFS(embedFS, EmbeddedSoundfontDir)
		if hasBundle(embedded, config.Instrument) {
			sources = append(sources, SampleSource{
				Name:   fileutil.Describe(embedded),
				Loader: &bank.SoundfontJSLoader{FS: embedded, SampleRate: config.SampleRate},
			})
		}
	}

	if config.SoundfontDir != "" {
		info, err := os.Stat(config.SoundfontDir)
		if err != nil || !info.IsDir() {
			return nil, &os.PathError{Op: "open", Path: config.SoundfontDir, Err: fs.ErrNotExist}
		}
		dir := fileutil.NewRealFS(config.SoundfontDir)
		sources = append(sources,
			SampleSource{
				Name:   dir.BasePath(),
				Loader: &bank.SoundfontJSLoader{FS: dir, SampleRate: config.SampleRate},
			},
			SampleSource{
				Name:   filepath.Join(dir.BasePath(), "<instrument>"),
				Loader: &bank.WAVDirLoader{FS: dir, SampleRate: config.SampleRate},
			},
		)
	}

	if config.SoundfontURL != "" {
		remote := fileutil.NewHTTPFS(config.SoundfontURL, nil)
		sources = append(sources, SampleSource{
			Name:   fileutil.Describe(remote),
			Loader: &bank.SoundfontJSLoader{FS: remote, SampleRate: config.SampleRate},
		})
	}

	if config.SF2Path != "" {
		sources = append(sources, SampleSource{
			Name:   config.SF2Path,
			Loader: &bank.SF2Loader{Path: config.SF2Path, SampleRate: config.SampleRate},
		})
	} else if loc := findSoundFont(embedFS, config.SoundfontDir); loc != nil {
		name := loc.Path
		if loc.IsEmbedded {
			name = fileutil.Describe(loc.FileSystem) + "/" + loc.Path
		}
		sources = append(sources, SampleSource{
			Name:   name,
			Loader: &bank.SF2Loader{FS: loc.FileSystem, Path: loc.Path, SampleRate: config.SampleRate},
		})
	}

	if len(sources) == 0 {
		return nil, ErrNoSampleSource
	}
	return sources, nil
}
