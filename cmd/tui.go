package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/jlcastillov/crm-console/internal/api"
	"github.com/jlcastillov/crm-console/internal/auth"
	"github.com/jlcastillov/crm-console/internal/bus"
	"github.com/jlcastillov/crm-console/internal/ingest"
	"github.com/jlcastillov/crm-console/internal/store"
	"github.com/jlcastillov/crm-console/internal/ui"
)

var (
	watchImports bool
	loginUser    string
	loginPass    string
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the sales console",
	Long: `Start the CRM Console: a login screen followed by the full sales
console (search, agenda, dashboards, pending lists, supervisor
monitoring, closed sales and production).

Activity on companies and follow-ups is published to Redis Streams when
Redis is reachable; without Redis the console runs standalone.

Examples:
  # Start the console
  crm-console tui

  # Start while watching the import folder for company files
  crm-console tui --watch-imports`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().BoolVar(&watchImports, "watch-imports", false, "Watch the import directory for company files while the console runs")
	tuiCmd.Flags().StringVar(&loginUser, "user", "", "Login name (skips the login screen when --password is also set)")
	tuiCmd.Flags().StringVar(&loginPass, "password", "", "Password for --user")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	// Logs go to a file so they never corrupt the screen
	logFile := setupFileLogger("crm-console-tui.log")
	var logger *log.Logger
	if logFile != nil {
		logger = log.New(logFile, "[tui] ", log.LstdFlags)
		defer logFile.Close()
	} else {
		logger = log.New(io.Discard, "[tui] ", log.LstdFlags)
	}

	if !canInitializeTUI() {
		fmt.Fprintln(os.Stderr, "The console cannot run in this terminal.")
		fmt.Fprintf(os.Stderr, "Terminal info: %s\n", getTerminalInfo())
		return errors.New("terminal does not support the console")
	}
	if w, h := getTerminalSize(); w > 0 && w < 100 {
		fmt.Fprintf(os.Stderr, "Warning: terminal is %dx%d; the console works best at 100 columns or more.\n", w, h)
	}

	logger.Printf("Starting CRM Console (terminal: %s)", getTerminalInfo())

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	activityBus := bus.NewBus(config.Redis.URL, logger)
	defer activityBus.Close()

	client := api.NewLocalClient(st, activityBus, logger)

	var session *auth.Session
	if loginUser != "" && loginPass != "" {
		session, err = auth.Login(ctx, st, loginUser, loginPass)
		if err != nil {
			return fmt.Errorf("login failed for %s: %w", loginUser, err)
		}
	} else {
		session, err = ui.RunLogin(ctx, client, logger)
		if err != nil {
			if errors.Is(err, ui.ErrLoginAborted) {
				return nil
			}
			return err
		}
	}
	logger.Printf("Session started for %s (role %d)", session.LoginName(), session.Role())

	if watchImports {
		if err := os.MkdirAll(config.Import.Dir, 0755); err != nil {
			logger.Printf("Warning: could not create import directory %s: %v", config.Import.Dir, err)
		}
		importer := ingest.NewFolderImporter(st, activityBus, ingest.FolderOptions{
			Dir:         config.Import.Dir,
			Watch:       true,
			UserID:      session.UserID(),
			Logger:      logger,
			TailFromEnd: true,
		})
		go func() {
			if err := importer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Printf("Folder import error: %v", err)
			}
		}()
	}

	console := ui.NewUI(ctx, client, session, logger)
	if err := console.Start(ctx); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Println("CRM Console stopped")
	return nil
}

// canInitializeTUI tests if tcell can actually be initialized
func canInitializeTUI() bool {
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}
	if err := screen.Init(); err != nil {
		return false
	}
	screen.Fini()
	return true
}

// getTerminalInfo returns detailed terminal information
func getTerminalInfo() string {
	var info []string

	term := os.Getenv("TERM")
	if term == "" {
		info = append(info, "TERM=<not set>")
	} else {
		info = append(info, fmt.Sprintf("TERM=%s", term))
	}

	if width, height := getTerminalSize(); width > 0 && height > 0 {
		info = append(info, fmt.Sprintf("Size=%dx%d", width, height))
	}

	if isTerminal() {
		info = append(info, "TTY=yes")
	} else {
		info = append(info, "TTY=no")
	}

	return strings.Join(info, ", ")
}

// sizeFromEnv honors explicit COLUMNS/LINES overrides before asking the OS.
func sizeFromEnv() (int, int, bool) {
	cols, rows := os.Getenv("COLUMNS"), os.Getenv("LINES")
	if cols == "" || rows == "" {
		return 0, 0, false
	}
	c, err1 := strconv.Atoi(cols)
	r, err2 := strconv.Atoi(rows)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return c, r, true
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// setupFileLogger creates a log file under ./logs
func setupFileLogger(name string) *os.File {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil
	}
	logPath := filepath.Join(logDir, name)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return logFile
}
