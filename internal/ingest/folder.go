// Package ingest bulk-loads company records from JSON/JSONL drop folders,
// either as a one-shot pass or by watching the folder for new files.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/jlcastillov/crm-console/internal/bus"
	"github.com/jlcastillov/crm-console/internal/store"
)

// FolderOptions controls import-folder behavior.
type FolderOptions struct {
	Dir      string
	Watch    bool
	Patterns []string // e.g. []string{"*.jsonl", "*.json"}
	UserID   int64    // recorded as created_by on imported companies
	Logger   *log.Logger
	// When true and in Watch mode, start JSONL files at EOF on startup to
	// avoid re-importing existing lines each time the app starts.
	TailFromEnd bool
}

// FolderImporter imports company records from a directory (one-shot or
// watch mode).
type FolderImporter struct {
	store *store.Store
	bus   bus.Bus
	opts  FolderOptions

	offsets map[string]int64 // per-file tail offset for jsonl
	mu      sync.Mutex

	imported int
	errors   int
}

// NewFolderImporter constructs a folder importer.
func NewFolderImporter(st *store.Store, b bus.Bus, opts FolderOptions) *FolderImporter {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[import-folder] ", log.LstdFlags)
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"*.jsonl", "*.json"}
	}
	return &FolderImporter{
		store:   st,
		bus:     b,
		opts:    opts,
		offsets: make(map[string]int64),
	}
}

// Run executes the import per options (one-shot or watch).
func (fi *FolderImporter) Run(ctx context.Context) error {
	if err := fi.scanOnce(ctx); err != nil {
		return err
	}

	if !fi.opts.Watch {
		fi.publishBatch(ctx)
		fi.opts.Logger.Printf("Completed one-shot import: imported=%d errors=%d", fi.imported, fi.errors)
		return nil
	}

	return fi.watchLoop(ctx)
}

func (fi *FolderImporter) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range fi.opts.Patterns {
		p := strings.TrimSpace(strings.ToLower(pat))
		ok, _ := filepath.Match(p, lower)
		if ok {
			return true
		}
	}
	return false
}

func (fi *FolderImporter) scanOnce(ctx context.Context) error {
	entries, err := os.ReadDir(fi.opts.Dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !fi.matches(e.Name()) {
			continue
		}
		path := filepath.Join(fi.opts.Dir, e.Name())
		if strings.HasSuffix(strings.ToLower(e.Name()), ".jsonl") {
			if fi.opts.Watch && fi.opts.TailFromEnd {
				if st, err := os.Stat(path); err == nil {
					fi.mu.Lock()
					fi.offsets[path] = st.Size()
					fi.mu.Unlock()
				}
				// Existing content is skipped; watchLoop tails new lines.
				continue
			}
			if _, err := fi.processJSONL(ctx, path, 0); err != nil {
				fi.opts.Logger.Printf("error processing %s: %v", path, err)
				fi.errors++
			}
		} else if strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			if err := fi.processJSONFile(ctx, path); err != nil {
				fi.opts.Logger.Printf("error processing %s: %v", path, err)
				fi.errors++
			}
		}
	}
	return nil
}

func (fi *FolderImporter) watchLoop(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()

	if err := w.Add(fi.opts.Dir); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}

	fi.opts.Logger.Printf("Watching directory: %s (patterns: %s)", fi.opts.Dir, strings.Join(fi.opts.Patterns, ","))
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fi.publishBatch(context.Background())
			fi.opts.Logger.Printf("Watch stopping: imported=%d errors=%d", fi.imported, fi.errors)
			return ctx.Err()
		case ev := <-w.Events:
			name := filepath.Base(ev.Name)
			if !fi.matches(name) {
				continue
			}
			lower := strings.ToLower(name)

			if (ev.Op&fsnotify.Create) != 0 || (ev.Op&fsnotify.Write) != 0 {
				switch {
				case strings.HasSuffix(lower, ".jsonl"):
					fi.mu.Lock()
					offset := fi.offsets[ev.Name]
					fi.mu.Unlock()

					newOffset, err := fi.processJSONL(ctx, ev.Name, offset)
					if err != nil {
						fi.opts.Logger.Printf("error tailing %s: %v", ev.Name, err)
						fi.errors++
						continue
					}
					fi.mu.Lock()
					fi.offsets[ev.Name] = newOffset
					fi.mu.Unlock()
				case strings.HasSuffix(lower, ".json"):
					if err := fi.processJSONFile(ctx, ev.Name); err != nil {
						fi.opts.Logger.Printf("error processing %s: %v", ev.Name, err)
						fi.errors++
					}
				}
			}
			if (ev.Op&fsnotify.Remove) != 0 || (ev.Op&fsnotify.Rename) != 0 {
				fi.mu.Lock()
				delete(fi.offsets, ev.Name)
				fi.mu.Unlock()
			}
		case err := <-w.Errors:
			if err != nil {
				fi.opts.Logger.Printf("watch error: %v", err)
			}
		case <-ticker.C:
			fi.publishBatch(ctx)
		}
	}
}

func (fi *FolderImporter) processJSONL(ctx context.Context, path string, startOffset int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		// File might be transiently missing (rename/rotate)
		return startOffset, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err == nil {
		// Handle truncation: if shrunk, reset offset
		if st.Size() < startOffset {
			startOffset = 0
		}
	}
	if startOffset > 0 {
		if _, err := f.Seek(startOffset, io.SeekStart); err != nil {
			return startOffset, err
		}
	}

	// Offsets advance by the exact bytes consumed, delimiter included, so
	// CRLF-terminated files tail correctly too.
	br := bufio.NewReaderSize(f, 64*1024)
	offset := startOffset
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return offset, err
		}
		if err == io.EOF && fi.opts.Watch && line != "" {
			// Partial trailing line: leave it unconsumed until its
			// newline arrives with a later write event.
			return offset, nil
		}
		if rec := strings.TrimSpace(line); rec != "" {
			if perr := fi.processCompanyJSON(ctx, []byte(rec)); perr != nil {
				fi.opts.Logger.Printf("parse error in %s: %v", path, perr)
				fi.errors++
			} else {
				fi.imported++
			}
		}
		offset += int64(len(line))
		if err == io.EOF {
			return offset, nil
		}
	}
}

func (fi *FolderImporter) processJSONFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	trim := strings.TrimSpace(string(data))
	if trim == "" {
		return nil
	}

	// If array, iterate; else parse single
	if strings.HasPrefix(trim, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(trim), &arr); err != nil {
			return err
		}
		for _, raw := range arr {
			if err := fi.processCompanyJSON(ctx, raw); err != nil {
				fi.opts.Logger.Printf("parse error in %s: %v", path, err)
				fi.errors++
				continue
			}
			fi.imported++
		}
		return nil
	}

	if err := fi.processCompanyJSON(ctx, []byte(trim)); err != nil {
		return err
	}
	fi.imported++
	return nil
}

func (fi *FolderImporter) processCompanyJSON(ctx context.Context, raw []byte) error {
	var c store.Company
	if err := json.Unmarshal(raw, &c); err != nil {
		return err
	}
	if strings.TrimSpace(c.CommercialName) == "" {
		return fmt.Errorf("company record missing commercial_name")
	}
	c.CreatedBy = fi.opts.UserID

	if _, err := fi.store.CreateCompany(ctx, &c); err != nil {
		return err
	}
	return nil
}

// publishBatch emits one import.batch activity summarizing progress so far.
// Best-effort; a NullBus makes it a no-op.
func (fi *FolderImporter) publishBatch(ctx context.Context) {
	if fi.imported == 0 && fi.errors == 0 {
		return
	}
	_ = fi.bus.PublishActivity(ctx, bus.ActivityMessage{
		ID:        uuid.New().String(),
		Kind:      "import.batch",
		UserID:    fi.opts.UserID,
		Detail:    fmt.Sprintf("imported=%d errors=%d dir=%s", fi.imported, fi.errors, fi.opts.Dir),
		Timestamp: time.Now().Unix(),
	})
}
