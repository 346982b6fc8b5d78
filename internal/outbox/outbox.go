// Package outbox sends message files dropped into a directory through the
// send endpoint.
//
// Each eligible file's content is posted verbatim as the message body with
// the configured header set. Delivered files move to sent/ next to a
// <name>.response file holding the raw reply; files that exhaust their
// attempts, or are rejected with a non-retryable status, move to failed/
// next to a <name>.error file. Retries are this package's policy; the
// endpoint itself never retries.
//
// Producers should write a message under a dot-prefixed or non-message
// name and rename it into place. A file is read once its write events have
// been quiet for the debounce period; if it changes while it is being sent,
// it stays in the outbox and is sent again, but a writer that pauses longer
// than the debounce period can still have a partial message sent.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/alyoongchat/msgsend/pkg/endpoint"
	"github.com/alyoongchat/msgsend/pkg/headers"
	"github.com/alyoongchat/msgsend/pkg/log"
)

// Subdirectories of the outbox.
const (
	SentDir   = "sent"
	FailedDir = "failed"
)

var messageExts = map[string]bool{
	".json": true,
	".txt":  true,
	".msg":  true,
}

// Sender issues one message send. *endpoint.Endpoint satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, hdrs map[string]string, body string) *endpoint.Call
}

// Config controls a Dispatcher.
type Config struct {
	Dir            string
	Headers        map[string]string
	Workers        int
	Rate           float64 // messages per second, 0 = unlimited
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Debounce       time.Duration
}

// Dispatcher watches an outbox directory and sends the files it finds.
type Dispatcher struct {
	cfg     Config
	sender  Sender
	logger  log.Logger
	limiter *rate.Limiter
	store   *StatusStore
	queue   chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
	queued map[string]bool
	dirty  map[string]bool
	status Status
}

// New creates a Dispatcher and the sent/ and failed/ directories.
func New(cfg Config, sender Sender, logger log.Logger) (*Dispatcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("outbox: directory is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 500 * time.Millisecond
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		cfg.BackoffMax = cfg.BackoffInitial
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	cfg.Headers = headers.Clone(cfg.Headers)

	for _, sub := range []string{SentDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", sub, err)
		}
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}

	store := NewStatusStore(cfg.Dir)
	st, err := store.Load()
	if err != nil {
		logger.Warn("outbox: ignoring unreadable status file", log.String("path", store.Path()), log.Err(err))
		st = Status{}
	}

	return &Dispatcher{
		cfg:     cfg,
		sender:  sender,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
		store:   store,
		queue:   make(chan string, cfg.Workers*4),
		timers:  make(map[string]*time.Timer),
		queued:  make(map[string]bool),
		dirty:   make(map[string]bool),
		status:  st,
	}, nil
}

// Status returns a snapshot of the dispatch counters.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Run sends files already in the outbox, then watches it for new ones until
// ctx is cancelled. Files still unsent at shutdown stay in place.
func (d *Dispatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(d.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", d.cfg.Dir, err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer d.stopTimers()

	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}

	pending, err := d.pending()
	if err != nil {
		return err
	}
	d.logger.Info("outbox: watching", log.String("dir", d.cfg.Dir), log.Int("pending", len(pending)))
	for _, name := range pending {
		d.enqueue(ctx, name)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Dir(event.Name) != filepath.Clean(d.cfg.Dir) {
				continue
			}
			name := filepath.Base(event.Name)
			if !eligible(name) {
				continue
			}
			d.debounce(ctx, name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("outbox: watcher error", log.Err(err))
		}
	}
}

// Drain sends every file currently in the outbox and returns once all of
// them have been handled.
func (d *Dispatcher) Drain(ctx context.Context) error {
	pending, err := d.pending()
	if err != nil {
		return err
	}

	sem := make(chan struct{}, d.cfg.Workers)
	var wg sync.WaitGroup
	for _, name := range pending {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()
			if !d.dispatch(ctx, name) {
				d.logger.Warn("outbox: message changed while sending, left in place", log.String("file", name))
			}
		}(name)
	}
	wg.Wait()
	return ctx.Err()
}

// pending lists eligible files in the outbox, oldest name first.
func (d *Dispatcher) pending() ([]string, error) {
	entries, err := os.ReadDir(d.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("read outbox: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && eligible(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func eligible(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return messageExts[strings.ToLower(filepath.Ext(name))]
}

// debounce collapses bursts of write events for one file.
func (d *Dispatcher) debounce(ctx context.Context, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[name]; ok {
		t.Stop()
	}
	d.timers[name] = time.AfterFunc(d.cfg.Debounce, func() {
		d.mu.Lock()
		delete(d.timers, name)
		d.mu.Unlock()
		d.enqueue(ctx, name)
	})
}

func (d *Dispatcher) stopTimers() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, t := range d.timers {
		t.Stop()
		delete(d.timers, name)
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, name string) {
	d.mu.Lock()
	if d.queued[name] {
		// picked up again once the current dispatch finishes
		d.dirty[name] = true
		d.mu.Unlock()
		return
	}
	d.queued[name] = true
	d.mu.Unlock()

	select {
	case d.queue <- name:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case name := <-d.queue:
			settled := d.dispatch(ctx, name)
			d.mu.Lock()
			again := d.dirty[name] || !settled
			delete(d.dirty, name)
			delete(d.queued, name)
			d.mu.Unlock()
			if again && ctx.Err() == nil {
				d.debounce(ctx, name)
			}
		}
	}
}

// dispatch sends one file, retrying retryable failures with backoff. It
// returns false when the file changed between reading and archiving; the
// file is then left in the outbox for another pass.
func (d *Dispatcher) dispatch(ctx context.Context, name string) bool {
	path := filepath.Join(d.cfg.Dir, name)
	before, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn("outbox: stat message", log.String("file", name), log.Err(err))
		}
		return true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn("outbox: read message", log.String("file", name), log.Err(err))
		}
		return true
	}
	if changed(path, before) {
		return false
	}

	b := newBackoff(d.cfg.BackoffInitial, d.cfg.BackoffMax)
	var (
		resp    string
		sendErr error
	)
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if err := d.limiter.Wait(ctx); err != nil {
			return true
		}

		call := d.sender.SendMessage(ctx, d.cfg.Headers, string(data))
		resp, sendErr = call.Result()
		if sendErr == nil {
			if changed(path, before) {
				d.logger.Warn("outbox: message changed while sending",
					log.String("file", name),
					log.String("call_id", call.ID()),
				)
				return false
			}
			d.succeed(name, resp, attempt)
			return true
		}
		if ctx.Err() != nil {
			// shutting down; leave the file for the next run
			return true
		}
		if !retryable(sendErr) || attempt == d.cfg.MaxAttempts {
			break
		}

		d.logger.Warn("outbox: send failed, retrying",
			log.String("file", name),
			log.String("call_id", call.ID()),
			log.Int("attempt", attempt),
			log.Duration("backoff", b.Current()),
			log.Err(sendErr),
		)
		if err := b.Wait(ctx); err != nil {
			return true
		}
	}

	if changed(path, before) {
		return false
	}
	d.fail(name, resp, sendErr)
	return true
}

// changed reports whether the file at path no longer matches before.
func changed(path string, before os.FileInfo) bool {
	now, err := os.Stat(path)
	if err != nil {
		return true
	}
	return now.Size() != before.Size() || !now.ModTime().Equal(before.ModTime())
}

// retryable reports whether another attempt could succeed: transport
// failures, 429 and 5xx statuses.
func retryable(err error) bool {
	var serr *endpoint.StatusError
	if errors.As(err, &serr) {
		return serr.StatusCode == http.StatusTooManyRequests || serr.StatusCode >= 500
	}
	return errors.Is(err, endpoint.ErrTransport)
}

func (d *Dispatcher) succeed(name, resp string, attempts int) {
	if err := d.archive(name, SentDir, ".response", resp); err != nil {
		d.logger.Error("outbox: archive sent message", log.String("file", name), log.Err(err))
	}
	d.logger.Info("outbox: message sent", log.String("file", name), log.Int("attempts", attempts))
	d.record(func(st *Status) {
		st.Sent++
		st.LastFile = name
	})
}

func (d *Dispatcher) fail(name, resp string, sendErr error) {
	detail := sendErr.Error()
	if resp != "" && !strings.Contains(detail, resp) {
		detail += "\n" + resp
	}
	if err := d.archive(name, FailedDir, ".error", detail); err != nil {
		d.logger.Error("outbox: archive failed message", log.String("file", name), log.Err(err))
	}
	d.logger.Error("outbox: message failed", log.String("file", name), log.Err(sendErr))
	d.record(func(st *Status) {
		st.Failed++
		st.LastFile = name
		st.LastError = sendErr.Error()
	})
}

// archive moves the message into sub and writes its companion file.
func (d *Dispatcher) archive(name, sub, suffix, content string) error {
	dst := filepath.Join(d.cfg.Dir, sub, name)
	if err := os.Rename(filepath.Join(d.cfg.Dir, name), dst); err != nil {
		return fmt.Errorf("move to %s: %w", sub, err)
	}
	if err := os.WriteFile(dst+suffix, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", suffix, err)
	}
	return nil
}

func (d *Dispatcher) record(update func(*Status)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	update(&d.status)
	d.status.UpdatedAt = time.Now().UTC()

	if err := d.store.Save(d.status); err != nil {
		d.logger.Warn("outbox: save status", log.String("path", d.store.Path()), log.Err(err))
		return
	}
	d.logger.Debug("outbox: status saved",
		log.Int64("sent", d.status.Sent),
		log.Int64("failed", d.status.Failed),
	)
}
