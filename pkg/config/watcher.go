package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"alias-heaven-calculator/internal/roles"
	"alias-heaven-calculator/pkg/metrics"
)

// Change describes a roles reload. On failure Err is set and New is the zero
// value; the previous configuration stays in effect.
type Change struct {
	Path string
	Old  roles.Config
	New  roles.Config
	Err  error
}

// Subscriber channel buffer size; small to apply back-pressure if receivers are slow.
const subBuf = 4

// Watcher watches the roles file (fsnotify plus a polling fallback) and
// republishes it when its mtime moves.
// If CONFIG_FILE names a .env file, that file is re-applied to the process
// environment first, so ROLES_FILE itself can be repointed at runtime.
type Watcher struct {
	mu        sync.RWMutex
	cur       roles.Config
	closed    bool
	intv      time.Duration
	subs      []chan Change
	cancel    context.CancelFunc
	rolesPath string
	rolesMT   time.Time
	missing   bool // roles file failed to stat on the last check
	envPath   string
	envMT     time.Time

	mReloads  *metrics.Counter
	mFailures *metrics.Counter
}

// NewWatcher starts from the already-loaded configuration cur.
func NewWatcher(rolesPath string, interval time.Duration, cur roles.Config) *Watcher {
	w := &Watcher{
		cur:       cur,
		intv:      interval,
		rolesPath: rolesPath,
		envPath:   strings.TrimSpace(os.Getenv("CONFIG_FILE")),
		mReloads:  metrics.Default.Counter("roles_reload_total", "Total number of successful roles reloads"),
		mFailures: metrics.Default.Counter("roles_reload_failures_total", "Total number of failed roles reloads"),
	}
	if fi, err := os.Stat(rolesPath); rolesPath != "" && err == nil {
		w.rolesMT = fi.ModTime()
	}
	if fi, err := os.Stat(w.envPath); w.envPath != "" && err == nil {
		w.envMT = fi.ModTime()
	}
	return w
}

// Current returns the last configuration that loaded successfully.
func (w *Watcher) Current() roles.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Subscribe returns a channel of reload events. It is closed by Close.
func (w *Watcher) Subscribe() <-chan Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Change, subBuf)
	if w.closed {
		close(ch)
		return ch
	}
	w.subs = append(w.subs, ch)
	return ch
}

// Close stops the watcher and closes subscriber channels.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	for _, s := range w.subs {
		close(s)
	}
	w.subs = nil
}

// Start begins watching in a goroutine. A zero interval disables polling
// only; file events still trigger reloads.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.cancel != nil || w.closed {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mu.Unlock()

	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	var tick <-chan time.Time
	if w.intv > 0 {
		t := time.NewTicker(w.intv)
		defer t.Stop()
		tick = t.C
	}

	// fsnotify gives near-immediate reloads; the ticker still catches files it
	// cannot see, e.g. ROLES_FILE repointed into an unwatched directory.
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if fw, err := fsnotify.NewWatcher(); err == nil {
		defer fw.Close()
		for _, dir := range w.watchDirs() {
			_ = fw.Add(dir)
		}
		events, errs = fw.Events, fw.Errors
	}
	if tick == nil && events == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			w.CheckNow()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) && w.watched(ev.Name) {
				w.CheckNow()
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		}
	}
}

// watchDirs returns the directories holding the roles and .env files. Watching
// the directory survives editors that replace a file by rename.
func (w *Watcher) watchDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	for _, p := range []string{w.rolesPath, w.envPath} {
		if p == "" {
			continue
		}
		if d := filepath.Dir(p); !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func (w *Watcher) watched(name string) bool {
	name = filepath.Clean(name)
	return (w.rolesPath != "" && name == filepath.Clean(w.rolesPath)) ||
		(w.envPath != "" && name == filepath.Clean(w.envPath))
}

// CheckNow runs one poll synchronously and reports whether a change event was
// published (success or failure).
func (w *Watcher) CheckNow() bool {
	forced := false
	if w.envPath != "" {
		if fi, err := os.Stat(w.envPath); err == nil && fi.ModTime().After(w.envMT) {
			w.envMT = fi.ModTime()
			if err := godotenv.Overload(w.envPath); err == nil {
				if p := strings.TrimSpace(os.Getenv("ROLES_FILE")); p != w.rolesPath {
					w.rolesPath = p
					w.rolesMT = time.Time{}
					forced = true
				}
			}
		}
	}

	if w.rolesPath == "" {
		if !forced {
			return false
		}
	} else {
		fi, err := os.Stat(w.rolesPath)
		if err != nil {
			// report a missing file once, not on every tick
			if w.missing && !forced {
				return false
			}
			w.missing = true
			w.rolesMT = time.Time{}
			w.fail(err)
			return true
		}
		if w.missing {
			w.missing = false
			forced = true
		}
		if !forced && !fi.ModTime().After(w.rolesMT) {
			return false
		}
		w.rolesMT = fi.ModTime()
	}

	next, err := LoadRoles(w.rolesPath)
	if err != nil {
		w.fail(err)
		return true
	}

	w.mu.Lock()
	old := w.cur
	w.cur = next
	w.mu.Unlock()
	w.mReloads.Inc(1)
	w.notify(Change{Path: w.rolesPath, Old: old, New: next})
	return true
}

func (w *Watcher) fail(err error) {
	w.mFailures.Inc(1)
	w.notify(Change{Path: w.rolesPath, Old: w.Current(), Err: err})
}

func (w *Watcher) notify(chg Change) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.subs {
		select {
		case s <- chg:
		default:
			// drop if slow; keep system moving
		}
	}
}
