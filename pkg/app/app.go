package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/cli"
	"github.com/zurustar/notebank/pkg/engine"
	"github.com/zurustar/notebank/pkg/events"
	"github.com/zurustar/notebank/pkg/logger"
	"github.com/zurustar/notebank/pkg/mixer"
	"github.com/zurustar/notebank/pkg/score"
)

// ErrNothingScheduled is returned when no note of the request could be scheduled.
var ErrNothingScheduled = errors.New("no notes scheduled")

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config  *cli.Config
	log     *slog.Logger
	embedFS fs.FS
	out     io.Writer

	queue   *events.Queue
	mixer   *mixer.Mixer
	output  *mixer.Output
	pump    *mixer.Pump
	session *engine.Session
}

// New Applicationを作成
func New(embedFS fs.FS) *Application {
	return &Application{
		embedFS: embedFS,
		out:     os.Stdout,
		queue:   events.NewQueue(),
	}
}

// SetOutput ログの出力先を変更する
func (app *Application) SetOutput(w io.Writer) {
	app.out = w
}

// Events 送出された通知キューを返す
func (app *Application) Events() *events.Queue {
	return app.queue
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Info("Application started", "instrument", app.config.Instrument)

	ctx := context.Background()
	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}

	// 3. 再生する内容の決定
	sequence, err := app.loadSequence()
	if err != nil {
		return fmt.Errorf("failed to load score: %w", err)
	}

	// 4. サンプルソースの検索
	sources, err := findSampleSources(app.embedFS, app.config)
	if err != nil {
		return fmt.Errorf("failed to locate samples: %w", err)
	}
	chain := make(bank.ChainLoader, 0, len(sources))
	for _, s := range sources {
		app.log.Info("Sample source", "source", s.Name)
		chain = append(chain, s.Loader)
	}

	// 5. オーディオ出力の開始
	if err := app.startAudio(); err != nil {
		return fmt.Errorf("failed to start audio: %w", err)
	}
	defer app.stopAudio()

	app.session = engine.NewSession(chain, app.mixer, app.mixer,
		engine.WithEvents(app.queue),
		engine.WithLogger(logger.With("engine")),
	)

	// 6. 楽器バンクの読み込み
	format := app.resolveFormat()
	b, err := app.session.Load(app.config.Instrument, format).Wait(ctx)
	if err != nil {
		app.logEvents()
		return fmt.Errorf("failed to load instrument: %w", err)
	}
	app.log.Info("Instrument ready", "instrument", b.Instrument(), "format", b.Format(), "notes", b.Len())

	// 7. 再生
	armed, err := app.session.PlaySequence(sequence)
	if len(armed) == 0 {
		app.logEvents()
		if err == nil {
			err = ErrNothingScheduled
		}
		return fmt.Errorf("failed to play: %w", err)
	}
	if err != nil {
		app.log.Warn("Some notes were skipped", "error", err)
	}

	// 8. 再生終了（またはタイムアウト）まで待機
	app.wait(ctx, armed)
	app.logEvents()

	app.log.Info("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.Init(app.config.LogLevel, app.config.LogFormat, app.out); err != nil {
		return err
	}
	app.log = logger.With("app")
	return nil
}

// loadSequence スコアファイル、または単音のイベント列を返す
func (app *Application) loadSequence() ([]engine.NoteEvent, error) {
	if app.config.ScorePath == "" {
		return []engine.NoteEvent{{
			ID:   bank.Normalize(bank.NoteID(app.config.Note)),
			Gain: app.config.Gain,
		}}, nil
	}

	s, err := score.ReadFile(app.config.ScorePath)
	if err != nil {
		return nil, err
	}
	if s.Instrument != "" && app.config.Instrument == cli.DefaultInstrument {
		app.config.Instrument = s.Instrument
	}
	for i := range s.Events {
		s.Events[i].ID = bank.Normalize(s.Events[i].ID)
	}
	app.log.Info("Score loaded", "path", app.config.ScorePath, "events", len(s.Events), "duration", s.Duration())
	return s.Events, nil
}

// resolveFormat 形式ヒントを具体的な形式に変換する
// auto の場合はデコーダの対応状況を通知してから決定する
func (app *Application) resolveFormat() bank.Format {
	if app.config.Format != "" {
		return bank.Format(app.config.Format)
	}

	var hint bank.FormatHint
	if app.config.Hint == "auto" {
		supported := bank.Decodable(bank.FormatOgg)
		app.session.ReportCodecSupport(bank.FormatOgg, supported)
		hint = bank.HintFor(supported)
	} else {
		// cli で検証済み
		hint, _ = bank.ParseFormatHint(app.config.Hint)
	}

	format := bank.ResolveFormat(hint)
	app.log.Debug("Format resolved", "hint", hint, "format", format)
	return format
}

// startAudio ミキサーを作成し、出力またはポンプで駆動する
func (app *Application) startAudio() error {
	app.mixer = mixer.New(app.config.SampleRate)

	// ヘッドレスモードの場合はミュートしてポンプで駆動
	if app.config.Headless {
		app.log.Info("Headless mode: audio output muted")
		app.mixer.SetMuted(true)
		app.pump = mixer.NewPump(app.mixer, 0)
		app.pump.Start()
		return nil
	}

	output, err := mixer.NewOutput(app.mixer, nil, app.config.BufferSize)
	if err != nil {
		return err
	}
	app.output = output
	return nil
}

// stopAudio 出力を停止してミキサーを閉じる
func (app *Application) stopAudio() {
	if app.pump != nil {
		app.pump.Stop()
	}
	if app.output != nil {
		if err := app.output.Close(); err != nil {
			app.log.Warn("Failed to close audio output", "error", err)
		}
	}
	if app.mixer != nil {
		app.mixer.Close()
	}
}

// wait 全ての再生が終わるか、タイムアウトするまで待つ
func (app *Application) wait(ctx context.Context, armed []*engine.Playback) {
	last := armed[0]
	for _, p := range armed[1:] {
		if p.End() > last.End() {
			last = p
		}
	}
	app.log.Info("Playing", "notes", len(armed), "until", last.End())

	for _, p := range armed {
		select {
		case <-p.Done():
		case <-ctx.Done():
			app.log.Info("Timeout reached, terminating", "now", app.mixer.Now())
			return
		}
	}
}

// logEvents 送出された通知をログに出力する
func (app *Application) logEvents() {
	for _, e := range app.queue.Snapshot() {
		attrs := []any{"type", string(e.Type)}
		for k, v := range e.Params {
			attrs = append(attrs, k, v)
		}
		app.log.Debug("Notification", attrs...)
	}
}
