package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/notebank/pkg/bank"
	"gopkg.in/yaml.v3"
)

// デフォルト値
const (
	DefaultInstrument = "acoustic_grand_piano"
	DefaultNote       = "C4"
)

// ErrInvalidConfig は設定値が不正な場合に返される
var ErrInvalidConfig = errors.New("invalid configuration")

// Config はコマンドライン引数・環境変数・設定ファイルから解析された設定を保持する
type Config struct {
	Instrument   string        `yaml:"instrument"`    // 楽器名（例: acoustic_grand_piano）
	Format       string        `yaml:"format"`        // サンプル形式（ogg, mp3, wav, sf2）。空なら Hint から決定
	Hint         string        `yaml:"hint"`          // 形式ヒント（auto, primary, fallback）
	SoundfontDir string        `yaml:"soundfonts"`    // MIDI.js サウンドフォントのディレクトリ
	SoundfontURL string        `yaml:"soundfont_url"` // MIDI.js サウンドフォントのベースURL
	SF2Path      string        `yaml:"sf2"`           // SoundFont (.sf2) ファイルのパス
	SampleRate   int           `yaml:"sample_rate"`   // 出力サンプルレート
	BufferSize   time.Duration `yaml:"buffer"`        // オーディオプレイヤーのバッファ長
	ScorePath    string        `yaml:"score"`         // 再生するスコア（.yaml / .mid）
	Note         string        `yaml:"note"`          // スコア未指定時に鳴らすノート
	Gain         float64       `yaml:"gain"`          // 単音再生時のゲイン
	Timeout      time.Duration `yaml:"timeout"`       // タイムアウト時間（0は無制限）
	LogLevel     string        `yaml:"log_level"`     // ログレベル（debug, info, warn, error）
	LogFormat    string        `yaml:"log_format"`    // ログ形式（text, json）
	Headless     bool          `yaml:"headless"`      // ヘッドレスモード（音声出力なし）
	ConfigPath   string        `yaml:"-"`             // 設定ファイルのパス
	ShowHelp     bool          `yaml:"-"`             // ヘルプ表示フラグ
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Instrument: DefaultInstrument,
		Hint:       "auto",
		SampleRate: bank.DefaultSampleRate,
		BufferSize: 50 * time.Millisecond,
		Note:       DefaultNote,
		Gain:       1,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// boolFlags は値を取らないフラグ（reorderArgs で使用）
var boolFlags = map[string]bool{
	"h": true, "help": true, "headless": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// 優先順位: コマンドラインフラグ > 環境変数 > 設定ファイル > デフォルト値
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("notebank", flag.ContinueOnError)

	flags := Default()
	var timeoutSec int
	var bufferMs int
	fs.StringVar(&flags.Instrument, "instrument", flags.Instrument, "楽器名")
	fs.StringVar(&flags.Instrument, "i", flags.Instrument, "楽器名（短縮形）")
	fs.StringVar(&flags.Format, "format", "", "サンプル形式（ogg, mp3, wav, sf2）")
	fs.StringVar(&flags.Hint, "hint", flags.Hint, "形式ヒント（auto, primary, fallback）")
	fs.StringVar(&flags.SoundfontDir, "soundfonts", "", "サウンドフォントのディレクトリ")
	fs.StringVar(&flags.SoundfontURL, "url", "", "サウンドフォントのベースURL")
	fs.StringVar(&flags.SF2Path, "sf2", "", "SoundFont (.sf2) ファイル")
	fs.IntVar(&flags.SampleRate, "rate", flags.SampleRate, "サンプルレート（Hz）")
	fs.IntVar(&bufferMs, "buffer", int(flags.BufferSize/time.Millisecond), "バッファ長（ミリ秒）")
	fs.StringVar(&flags.ScorePath, "score", "", "スコアファイル（.yaml, .mid）")
	fs.StringVar(&flags.Note, "note", flags.Note, "単音再生するノート")
	fs.StringVar(&flags.Note, "n", flags.Note, "単音再生するノート（短縮形）")
	fs.Float64Var(&flags.Gain, "gain", flags.Gain, "単音再生のゲイン")
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "ログレベル（debug, info, warn, error）")
	fs.StringVar(&flags.LogLevel, "l", flags.LogLevel, "ログレベル（短縮形）")
	fs.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "ログ形式（text, json）")
	fs.BoolVar(&flags.Headless, "headless", false, "ヘッドレスモード")
	fs.StringVar(&flags.ConfigPath, "config", "", "設定ファイル（YAML）")
	fs.StringVar(&flags.ConfigPath, "c", "", "設定ファイル（短縮形）")
	fs.BoolVar(&flags.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&flags.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 明示的に指定されたフラグ
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	config := Default()
	config.ConfigPath = flags.ConfigPath
	config.ShowHelp = flags.ShowHelp

	// 設定ファイル
	if config.ConfigPath != "" {
		if err := loadFile(config.ConfigPath, config); err != nil {
			return nil, err
		}
	}

	// 環境変数
	if err := applyEnv(config); err != nil {
		return nil, err
	}

	// コマンドラインフラグ
	if set["instrument"] || set["i"] {
		config.Instrument = flags.Instrument
	}
	if set["format"] {
		config.Format = flags.Format
	}
	if set["hint"] {
		config.Hint = flags.Hint
	}
	if set["soundfonts"] {
		config.SoundfontDir = flags.SoundfontDir
	}
	if set["url"] {
		config.SoundfontURL = flags.SoundfontURL
	}
	if set["sf2"] {
		config.SF2Path = flags.SF2Path
	}
	if set["rate"] {
		config.SampleRate = flags.SampleRate
	}
	if set["buffer"] {
		config.BufferSize = time.Duration(bufferMs) * time.Millisecond
	}
	if set["score"] {
		config.ScorePath = flags.ScorePath
	}
	if set["note"] || set["n"] {
		config.Note = flags.Note
	}
	if set["gain"] {
		config.Gain = flags.Gain
	}
	if set["timeout"] || set["t"] {
		if timeoutSec < 0 {
			return nil, fmt.Errorf("%w: timeout must be non-negative, got %d", ErrInvalidConfig, timeoutSec)
		}
		config.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if set["log-level"] || set["l"] {
		config.LogLevel = strings.ToLower(flags.LogLevel)
	}
	if set["log-format"] {
		config.LogFormat = strings.ToLower(flags.LogFormat)
	}
	if set["headless"] {
		config.Headless = flags.Headless
	}

	// 位置引数（楽器名）
	if fs.NArg() > 0 {
		config.Instrument = strings.Join(fs.Args(), " ")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadFile YAML 設定ファイルを読み込んで config に上書きする
func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// applyEnv 環境変数からの設定を反映する
func applyEnv(config *Config) error {
	str := map[string]*string{
		"NOTEBANK_INSTRUMENT":    &config.Instrument,
		"NOTEBANK_FORMAT":        &config.Format,
		"NOTEBANK_HINT":          &config.Hint,
		"NOTEBANK_SOUNDFONTS":    &config.SoundfontDir,
		"NOTEBANK_SOUNDFONT_URL": &config.SoundfontURL,
		"NOTEBANK_SF2":           &config.SF2Path,
		"NOTEBANK_LOG_FORMAT":    &config.LogFormat,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("HEADLESS"); v != "" {
		config.Headless = v == "1" || strings.ToLower(v) == "true"
	}

	if v := os.Getenv("TIMEOUT"); v != "" {
		if t, err := strconv.Atoi(v); err == nil && t > 0 {
			config.Timeout = time.Duration(t) * time.Second
		}
	}

	if v := os.Getenv("NOTEBANK_SAMPLE_RATE"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: NOTEBANK_SAMPLE_RATE=%q", ErrInvalidConfig, v)
		}
		config.SampleRate = rate
	}
	return nil
}

// Validate 設定値を検証する
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: invalid log level: %s (must be debug, info, warn, or error)", ErrInvalidConfig, c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: invalid log format: %s (must be text or json)", ErrInvalidConfig, c.LogFormat)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative, got %v", ErrInvalidConfig, c.Timeout)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: buffer size must be non-negative, got %v", ErrInvalidConfig, c.BufferSize)
	}
	if c.Gain < 0 {
		return fmt.Errorf("%w: gain must be non-negative, got %v", ErrInvalidConfig, c.Gain)
	}
	if c.Format != "" {
		f, err := bank.ParseFormat(c.Format)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Format = string(f)
	}
	if c.Hint != "auto" {
		if _, err := bank.ParseFormatHint(c.Hint); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if strings.TrimSpace(c.Instrument) == "" {
		return fmt.Errorf("%w: instrument name is empty", ErrInvalidConfig)
	}
	return nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -name=value 形式、またはブール型フラグは次の引数を取らない
			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") || boolFlags[name] {
				continue
			}
			// 次の引数が値（-t 5 や --timeout -10 のような場合）
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `notebank - sampled instrument note player

Usage:
  notebank [options] [instrument]

Arguments:
  instrument    楽器名（例: acoustic_grand_piano, "Electric Piano 1"）
                省略時は %s

Options:
  -i, --instrument <name>     楽器名
  --format <fmt>              サンプル形式: ogg, mp3, wav, sf2（省略時は --hint で決定）
  --hint <hint>               形式ヒント: auto, primary (ogg), fallback (mp3)（デフォルト: auto）
  --soundfonts <dir>          MIDI.js サウンドフォント（<name>-ogg.js）のディレクトリ
  --url <base-url>            MIDI.js サウンドフォントのベースURL
  --sf2 <file>                SoundFont (.sf2) ファイルから音色を生成
  --rate <hz>                 サンプルレート（デフォルト: %d）
  --buffer <ms>               オーディオバッファ長（ミリ秒、デフォルト: 50）
  --score <file>              再生するスコア（.yaml, .yml, .mid）
  -n, --note <id>             スコア未指定時に鳴らすノート（デフォルト: %s）
  --gain <value>              単音再生のゲイン（デフォルト: 1）
  -t, --timeout <seconds>     指定秒数後にプログラムを終了（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --log-format <format>       ログ形式: text, json（デフォルト: text）
  --headless                  ヘッドレスモード（音声出力なし）
  -c, --config <file>         YAML 設定ファイル
  -h, --help                  このヘルプを表示

Environment Variables:
  NOTEBANK_INSTRUMENT         楽器名
  NOTEBANK_FORMAT             サンプル形式
  NOTEBANK_HINT               形式ヒント
  NOTEBANK_SOUNDFONTS         サウンドフォントのディレクトリ
  NOTEBANK_SOUNDFONT_URL      サウンドフォントのベースURL
  NOTEBANK_SF2                SoundFont ファイル
  NOTEBANK_SAMPLE_RATE        サンプルレート
  NOTEBANK_LOG_FORMAT         ログ形式
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル

Examples:
  notebank                                  ピアノの C4 を鳴らす
  notebank -n A4 --gain 0.5 violin          バイオリンの A4 をゲイン 0.5 で鳴らす
  notebank --score song.yaml                スコアを再生
  notebank --sf2 GeneralUser.sf2 --score song.mid
  notebank --url https://example.com/soundfonts/ marimba
  HEADLESS=1 notebank --score song.yaml     ヘッドレスモードで実行
`, DefaultInstrument, bank.DefaultSampleRate, DefaultNote)
}
