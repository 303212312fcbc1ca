package main

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"github.com/user/bimmer_log_analyzer_go/internal/config"
	"github.com/user/bimmer_log_analyzer_go/internal/pipeline"
)

const appTitle = "BMW/Mini BimmerLink, Log Analyzer v1.0"

// FormState is what the window displays. RunEnabled is only set by SelectLog.
type FormState struct {
	SourcePath     string `json:"sourcePath"`
	ReportPath     string `json:"reportPath"`
	SensorListPath string `json:"sensorListPath"`
	WorkbookPath   string `json:"workbookPath"`
	RunEnabled     bool   `json:"runEnabled"`
	InfoURL        string `json:"infoURL"`
}

// RunOutcome is returned to the window after a run.
type RunOutcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// dialogs abstracts the native dialogs so the form logic can be tested without a window.
type dialogs interface {
	OpenFile(title string) (string, error)
	Info(title, message string)
	Warning(title, message string)
	Error(title, message string)
	OpenURL(url string)
	Status(message string)
}

// App struct
type App struct {
	ctx     context.Context
	cfg     *config.Config
	runner  *pipeline.Runner
	log     *zap.Logger
	dialogs dialogs

	// Wails calls bound methods from separate goroutines.
	mu    sync.Mutex
	state FormState
	paths pipeline.Paths
}

// NewApp creates a new App application struct
func NewApp(cfg *config.Config, runner *pipeline.Runner, log *zap.Logger) *App {
	a := &App{
		cfg:    cfg,
		runner: runner,
		log:    log,
		state:  FormState{InfoURL: cfg.InfoURL},
	}
	a.dialogs = &wailsDialogs{app: a}
	runner.OnStatus(func(msg string) { a.dialogs.Status(msg) })
	return a
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowSetTitle(a.ctx, appTitle)
}

// State returns the current form state.
func (a *App) State() FormState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// SelectLog asks for an exported log and derives the output paths from it.
// A file without the .csv extension is rejected and leaves the form unchanged.
func (a *App) SelectLog() FormState {
	path, err := a.dialogs.OpenFile("Select exported log (.csv)")
	if err != nil {
		a.log.Error("file dialog failed", zap.Error(err))
		a.dialogs.Error("Error", err.Error())
		return a.State()
	}
	if path == "" {
		return a.State()
	}
	return a.selectSource(path)
}

func (a *App) selectSource(path string) FormState {
	paths, err := a.runner.DerivePaths(path)
	if err != nil {
		a.log.Warn("rejected source", zap.String("path", path), zap.Error(err))
		a.dialogs.Error("Invalid file", "Please select CSV file.")
		return a.State()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.paths = paths
	a.state.SourcePath = paths.Source
	a.state.ReportPath = paths.Report
	a.state.SensorListPath = paths.SensorList
	a.state.WorkbookPath = paths.Workbook
	a.state.RunEnabled = true
	a.log.Info("source selected", zap.String("path", path))
	return a.state
}

// Run writes the sensor list and the report for the selected log and shows
// one dialog describing the outcome. It blocks until both are written.
func (a *App) Run() RunOutcome {
	a.mu.Lock()
	enabled, paths := a.state.RunEnabled, a.paths
	a.mu.Unlock()

	if !enabled {
		msg := "Please select a CSV file first."
		a.dialogs.Warning("Warning", msg)
		return RunOutcome{OK: false, Message: msg}
	}

	res := a.runner.Run(paths)
	if res.OK() {
		a.dialogs.Info("Success", res.Message())
	} else {
		a.dialogs.Error("Error", res.Message())
	}
	return RunOutcome{OK: res.OK(), Message: res.Message()}
}

// OpenInfoLink opens the project page in the default browser.
func (a *App) OpenInfoLink() {
	if a.cfg.InfoURL != "" {
		a.dialogs.OpenURL(a.cfg.InfoURL)
	}
}

// wailsDialogs shows native dialogs through the Wails runtime.
type wailsDialogs struct {
	app *App
}

func (d *wailsDialogs) OpenFile(title string) (string, error) {
	return runtime.OpenFileDialog(d.app.ctx, runtime.OpenDialogOptions{
		Title: title,
		Filters: []runtime.FileFilter{
			{DisplayName: "CSV files (*.csv)", Pattern: "*.csv"},
			{DisplayName: "All files (*.*)", Pattern: "*.*"},
		},
	})
}

func (d *wailsDialogs) message(kind runtime.DialogType, title, message string) {
	if _, err := runtime.MessageDialog(d.app.ctx, runtime.MessageDialogOptions{
		Type:    kind,
		Title:   title,
		Message: message,
	}); err != nil {
		d.app.log.Error("message dialog failed", zap.Error(err))
	}
}

func (d *wailsDialogs) Info(title, message string)    { d.message(runtime.InfoDialog, title, message) }
func (d *wailsDialogs) Warning(title, message string) { d.message(runtime.WarningDialog, title, message) }
func (d *wailsDialogs) Error(title, message string)   { d.message(runtime.ErrorDialog, title, message) }

func (d *wailsDialogs) OpenURL(url string) {
	runtime.BrowserOpenURL(d.app.ctx, url)
}

func (d *wailsDialogs) Status(message string) {
	if d.app.ctx != nil {
		runtime.EventsEmit(d.app.ctx, "statusUpdate", message)
	}
}
