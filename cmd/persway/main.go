// Command persway is a companion daemon for the sway compositor. Run with
// the daemon subcommand it enforces per-workspace layout policies; any other
// subcommand is forwarded as-is to a running daemon's control socket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/saylesss88/persway/internal/config"
	"github.com/saylesss88/persway/internal/control"
	"github.com/saylesss88/persway/internal/control/client"
	"github.com/saylesss88/persway/internal/engine"
	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/util"
)

func main() {
	fs := flag.NewFlagSet("persway", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socketPath := fs.String("socket-path", "", "path to the persway control socket")
	fs.StringVar(socketPath, "s", "", "path to the persway control socket (shorthand)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <command> [args]\n", fs.Name())
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Commands:")
		fmt.Fprintln(fs.Output(), "  daemon [flags]\t\t\t\trun the layout daemon")
		fmt.Fprintln(fs.Output(), "  change-layout <layout> [flags]\tswitch the focused workspace's layout")
		fmt.Fprintln(fs.Output(), "  stack-focus-next|stack-focus-prev\tcycle focus through the stack")
		fmt.Fprintln(fs.Output(), "  stack-main-rotate-next|-prev\t\trotate all windows including main")
		fmt.Fprintln(fs.Output(), "  stack-swap-main\t\t\tswap main with the current stack window")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		exitErr(fmt.Errorf("missing subcommand"))
	}

	if args[0] == control.CmdDaemon {
		if err := runDaemon(args[1:], *socketPath); err != nil {
			exitErr(err)
		}
		return
	}
	if err := runClient(args, *socketPath); err != nil {
		exitErr(err)
	}
}

// runClient forwards one command line to the daemon and prints its reply.
func runClient(args []string, socketPath string) error {
	line := strings.Join(args, " ")
	if _, err := control.ParseCommand(line); err != nil {
		return fmt.Errorf("invalid command %q", line)
	}
	reply, err := client.New(socketPath).Send(context.Background(), line)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	if reply != "success" {
		os.Exit(1)
	}
	return nil
}

func runDaemon(args []string, socketPath string) error {
	home, _ := os.UserHomeDir()
	defaultConfig := filepath.Join(home, ".config", "persway", "config.yaml")

	fs := flag.NewFlagSet("persway daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := fs.String("config", defaultConfig, "path to YAML config")
	logLevel := fs.String("log-level", "", "log level (debug|info|warn|error)")
	defaultLayout := fs.String("default-layout", "", "layout for unconfigured workspaces (spiral|stack-main|manual)")
	stackSize := fs.Int("stack-main-default-size", 0, "stack-main default main size in percent")
	stackArrangement := fs.String("stack-main-default-stack-layout", "", "stack-main default stack arrangement (tabbed|stacked|tiled)")
	renaming := fs.Bool("workspace-renaming", false, "rename workspaces after the apps they hold")
	onFocus := fs.String("on-window-focus", "", "command run when a window gains focus")
	onLeave := fs.String("on-window-focus-leave", "", "command run against the window losing focus")
	onExit := fs.String("on-exit", "", "command run once when the daemon exits")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	loadConfig := func() (config.Config, error) {
		cfg, err := config.Load(*cfgPath)
		if errors.Is(err, os.ErrNotExist) {
			// No config file is fine; flags and defaults carry the day.
			cfg, err = config.Default(), nil
		}
		if err != nil {
			return config.Config{}, err
		}
		applyFlagOverrides(&cfg, fs, *logLevel, *defaultLayout, *stackSize, *stackArrangement, *renaming, *onFocus, *onLeave, *onExit)
		return cfg, cfg.Validate()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := util.NewLogger(util.ParseLogLevel(cfg.LogLevel))

	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}

	conn, err := ipc.Dial()
	if err != nil {
		return fmt.Errorf("connect to compositor: %w", err)
	}
	defer conn.Close()

	eng := engine.New(conn, logger, opts)

	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	srv := control.NewServer(eng, logger, socketPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloadRequests := make(chan string, 1)
	if watcher, err := watchConfig(logger, *cfgPath, reloadRequests); err != nil {
		logger.Warnf("config watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	exitHook := cfg.OnExit
	reload := func(reason string) error {
		logger.Infof("%s, reloading config", reason)
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := engineOptions(cfg)
		if err != nil {
			return err
		}
		logger.SetLevel(util.ParseLogLevel(cfg.LogLevel))
		eng.Reconfigure(opts)
		exitHook = cfg.OnExit
		return nil
	}

	hups := make(chan os.Signal, 1)
	signal.Notify(hups, syscall.SIGHUP)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	errs := make(chan error, 2)
	go func() {
		errs <- eng.Run(ctx)
	}()
	go func() {
		errs <- srv.Serve(ctx)
	}()

	for {
		select {
		case err := <-errs:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Infof("daemon stopped")
			return nil
		case reason := <-reloadRequests:
			if err := reload(reason); err != nil {
				logger.Errorf("reload failed: %v", err)
			}
		case <-hups:
			if err := reload("received SIGHUP"); err != nil {
				logger.Errorf("reload failed: %v", err)
			}
		case sig := <-sigs:
			logger.Infof("received %s, exiting", sig)
			runExitHook(conn, logger, exitHook)
			os.Exit(0)
		}
	}
}

// runExitHook best-effort executes the configured exit command; the process
// terminates right after regardless of the outcome.
func runExitHook(conn *ipc.Client, logger *util.Logger, hook string) {
	if hook == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	logger.Debugf("running exit command: %s", hook)
	if _, err := conn.RunCommand(ctx, hook); err != nil {
		logger.Warnf("exit command failed: %v", err)
	}
}

func applyFlagOverrides(cfg *config.Config, fs *flag.FlagSet, logLevel, defaultLayout string, stackSize int, stackArrangement string, renaming bool, onFocus, onLeave, onExit string) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["log-level"] {
		cfg.LogLevel = logLevel
	}
	if set["default-layout"] {
		cfg.DefaultLayout.Kind = defaultLayout
	}
	if set["stack-main-default-size"] {
		cfg.DefaultLayout.Size = stackSize
	}
	if set["stack-main-default-stack-layout"] {
		cfg.DefaultLayout.StackLayout = stackArrangement
	}
	if set["workspace-renaming"] {
		cfg.WorkspaceRenaming = renaming
	}
	if set["on-window-focus"] {
		cfg.OnWindowFocus = onFocus
	}
	if set["on-window-focus-leave"] {
		cfg.OnWindowFocusLeave = onLeave
	}
	if set["on-exit"] {
		cfg.OnExit = onExit
	}
}

func engineOptions(cfg config.Config) (engine.Options, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		DefaultPolicy:      policy,
		WorkspaceRenaming:  cfg.WorkspaceRenaming,
		OnWindowFocus:      cfg.OnWindowFocus,
		OnWindowFocusLeave: cfg.OnWindowFocusLeave,
		Settle:             time.Duration(cfg.Timing.SettleMs) * time.Millisecond,
		MoveDelay:          time.Duration(cfg.Timing.MoveDelayMs) * time.Millisecond,
		RenameDebounce:     time.Duration(cfg.Timing.RenameDebounceMs) * time.Millisecond,
	}, nil
}

// watchConfig installs a debounced fsnotify watcher on the config file and
// its directory (editors often replace the file rather than write it).
func watchConfig(logger *util.Logger, cfgPath string, reloadRequests chan<- string) (*fsnotify.Watcher, error) {
	target, err := filepath.Abs(cfgPath)
	if err != nil {
		return nil, err
	}
	target = filepath.Clean(target)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(target); err != nil {
		logger.Debugf("unable to watch config file directly: %v", err)
	}

	go func() {
		const debounceWindow = 250 * time.Millisecond
		var (
			timer   *time.Timer
			timerCh <-chan time.Time
		)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounceWindow)
					timerCh = timer.C
				} else {
					if !timer.Stop() {
						<-timerCh
					}
					timer.Reset(debounceWindow)
				}
			case <-timerCh:
				timer = nil
				timerCh = nil
				select {
				case reloadRequests <- "config file updated":
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("config watcher error: %v", err)
			}
		}
	}()
	return watcher, nil
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
