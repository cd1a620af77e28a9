package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-novel/audio"
	"github.com/lixenwraith/vi-novel/config"
	"github.com/lixenwraith/vi-novel/content"
	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/input"
	"github.com/lixenwraith/vi-novel/script"
	"github.com/lixenwraith/vi-novel/web"
)

var (
	scriptFlag = flag.String("script", "", "Chapter script: file path or chapter name (default: embedded chapter)")
	configFlag = flag.String("config", "", "Path to YAML config file")
	branchFlag = flag.String("branch", "", "Entry branch (default: script start)")
	assetsFlag = flag.String("assets", content.DefaultAssetsDir, "Directory scanned for chapter scripts")
	webFlag    = flag.String("web", "", "Serve the reader over HTTP on this address instead of the terminal")
	muteFlag   = flag.Bool("mute", false, "Start with sound muted")
	debugFlag  = flag.Bool("debug", false, "Write debug log to the log directory")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		c, err := config.LoadFile(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = c
	}

	logFile := setupLogging(*debugFlag, cfg.Log.Dir, cfg.Log.MaxSize)
	if logFile != nil {
		defer logFile.Close()
	}

	s, err := loadScript(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load script: %v\n", err)
		os.Exit(1)
	}

	opts := cfg.EngineOptions()
	if *branchFlag != "" {
		opts.Branch = *branchFlag
	}
	if opts.Branch != "" && !s.HasBranch(opts.Branch) {
		fmt.Fprintf(os.Stderr, "Unknown branch %q (have %v)\n", opts.Branch, s.Branches())
		os.Exit(1)
	}
	opts.Logger = log.Default()

	if *webFlag != "" {
		if err := serveWeb(s, opts, cfg, *webFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Web host failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runTerminal(s, opts, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func loadScript(cfg *config.Config) (*script.Script, error) {
	ref := *scriptFlag
	if ref == "" {
		ref = cfg.Script.Path
	}

	mgr := content.NewManager(*assetsFlag)
	if err := mgr.Discover(); err != nil {
		log.Printf("Chapter discovery failed: %v", err)
	}
	return mgr.Load(ref)
}

func serveWeb(s *script.Script, opts engine.Options, cfg *config.Config, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(s, opts, web.Config{
		WriteTimeout:   cfg.Web.WriteTimeout,
		PingInterval:   cfg.Web.PingInterval,
		AllowedOrigins: cfg.Web.AllowedOrigins,
	}, log.Default())

	fmt.Fprintf(os.Stderr, "vi-novel reader on http://%s\n", addr)
	return srv.ListenAndServe(ctx, addr)
}

func runTerminal(s *script.Script, opts engine.Options, cfg *config.Config) error {
	keys := input.DefaultKeyTable()
	if len(cfg.Input.Keys) > 0 {
		override, err := input.LoadKeyConfig(cfg.Input.Keys)
		if err != nil {
			return fmt.Errorf("key config: %w", err)
		}
		keys = input.MergeKeyTable(keys, override)
	}
	machine := input.NewMachine(cfg.Input.LongPressHold, cfg.Input.RepeatWindow)
	machine.SetKeyTable(keys)

	ac := audio.DefaultAudioConfig()
	ac.Enabled = cfg.Audio.Enabled
	ac.MasterVolume = cfg.Audio.Volume
	sound := audio.NewSoundManager(ac)
	if err := sound.Initialize(); err != nil {
		log.Printf("Audio initialization failed: %v (continuing without audio)", err)
	}
	defer sound.Cleanup()
	sound.SetMuted(*muteFlag)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.EnableMouse()

	// Panic recovery: restore the terminal before reporting
	defer func() {
		if rec := recover(); rec != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mVI-NOVEL CRASHED: %v\x1b[0m\n", rec)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	r, err := newReader(screen, s, opts, machine, sound, cfg.Audio.ClickEvery)
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.start(); err != nil {
		return err
	}

	events := make(chan tcell.Event, 256)
	go pollEvents(screen, events)

	r.run(events)
	return nil
}

// pollEvents forwards terminal events until the screen is finalized
func pollEvents(screen tcell.Screen, events chan<- tcell.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", rec)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer close(events)

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		events <- ev
	}
}
