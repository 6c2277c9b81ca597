// Package main is the docchat CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/backend"
	"github.com/hyperjump/docchat/internal/cli"
	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/mockserver"
	"github.com/hyperjump/docchat/internal/session"
	"github.com/hyperjump/docchat/internal/tui"
	"github.com/hyperjump/docchat/internal/validate"
	"github.com/hyperjump/docchat/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docchat/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if neither
// exists, built-in defaults are used. An explicitly given path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				return config.Load(fallback)
			}
		}
		if _, statErr := os.Stat(path); statErr != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "chat":
		runChat()
	case "upload":
		runUpload()
	case "ask":
		runAsk()
	case "mock":
		runMock()
	case "version", "--version", "-v":
		fmt.Printf("docchat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func newClient(cfg *config.Config, serverOverride string) *backend.Client {
	baseURL := cfg.Backend.BaseURL
	if serverOverride != "" {
		baseURL = serverOverride
	}
	return backend.NewClient(baseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
}

// candidateFromFile builds an upload candidate from a file on disk. The
// declared media type comes from the extension; unknown extensions yield an
// empty type, which the validator rejects with the accepted-formats message.
func candidateFromFile(path string) (*session.Candidate, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return &session.Candidate{
		Name:      filepath.Base(path),
		MediaType: validate.MediaTypeForPath(path),
		Size:      info.Size(),
		Data:      f,
	}, f, nil
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "backend base URL (overrides config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	watch := fs.Bool("watch", false, "re-upload the document when it changes on disk")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: docchat chat [flags] <document>")
		os.Exit(1)
	}
	docPath := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sess := session.New(newClient(cfg, *serverURL))
	if err := submitFile(sess, docPath); err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info("document uploaded", zap.String("path", docPath))

	p := tea.NewProgram(tui.New(sess), tea.WithAltScreen())

	if *watch {
		w := newReloadWatcher(docPath, sess, p, logger)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := w.Start(watchCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start watcher: %v\n", err)
			os.Exit(1)
		}
		defer w.Stop()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI failed: %v\n", err)
		os.Exit(1)
	}
}

// submitFile uploads the file at path through the session and surfaces the
// session's error string as an error when the file was not adopted.
func submitFile(sess *session.Session, path string) error {
	candidate, f, err := candidateFromFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sess.SubmitUpload(context.Background(), candidate)
	if sess.File() == nil {
		return fmt.Errorf("%s", sess.Err())
	}
	return nil
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "backend base URL (overrides config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: docchat upload [flags] <document>")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	sess := session.New(newClient(cfg, *serverURL))
	if err := submitFile(sess, fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteUploadAck(os.Stdout, sess.File(), outputFormatOf(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "backend base URL (overrides config)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	_ = fs.Parse(askArgs)

	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: docchat ask [flags] <question>")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	client := newClient(cfg, *serverURL)
	answer, err := client.Ask(context.Background(), question, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, question, answer, outputFormatOf(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runMock() {
	fs := flag.NewFlagSet("mock", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv := mockserver.NewServer(&cfg.Mock, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Mock backend failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func outputFormatOf(name string) cli.OutputFormat {
	if name == "json" {
		return cli.OutputJSON
	}
	return cli.OutputText
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// askArgsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument.
func askArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printUsage() {
	fmt.Println(`docchat - chat with a document through a remote QA service

Usage:
  docchat chat [flags] <document>     Upload a document and chat about it
  docchat upload [flags] <document>   Upload a document (one-shot)
  docchat ask [flags] <question>      Ask one question (one-shot)
  docchat mock [flags]                Run a local stub backend
  docchat version                     Show version
  docchat help                        Show this help

Chat Flags:
  --config string    Config file path (default: /usr/local/etc/docchat/config.yaml)
  --server string    Backend base URL (default from config: http://localhost:8000)
  --debug            Enable debug logging
  --watch            Re-upload the document when it changes on disk

Upload/Ask Flags:
  --config string    Config file path
  --server string    Backend base URL (overrides config)
  --output string    Output format: text or json (default: text)

Accepted document formats: PDF, DOCX, TXT, CSV (up to 10MB).

Examples:
  docchat chat contract.pdf
  docchat chat --watch --server http://localhost:8000 notes.txt
  docchat upload contract.pdf
  docchat ask "What is the termination clause?"
  docchat ask --output json what does section 9 say
  docchat mock --debug`)
}
