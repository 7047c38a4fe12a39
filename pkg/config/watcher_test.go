package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"alias-heaven-calculator/internal/roles"
)

func touch(t *testing.T, path, body string, mt time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, mt, mt); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	p := filepath.Join(t.TempDir(), "roles.toml")
	base := time.Now().Add(-time.Hour)
	touch(t, p, tomlRoles, base)

	initial, err := LoadRoles(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := NewWatcher(p, time.Second, initial)
	defer w.Close()
	ch := w.Subscribe()

	if w.CheckNow() {
		t.Fatalf("unchanged file should not publish")
	}

	touch(t, p, `
general_legacies = [10]
counting_legacies = []
secret_area_cost = 1
quacker_roles = []
quacker_roles_names = ["Only"]
`, base.Add(time.Minute))
	if !w.CheckNow() {
		t.Fatalf("expected change to be published")
	}
	chg := <-ch
	if chg.Err != nil || chg.New.SecretAreaCost != 1 || chg.Old.SecretAreaCost != 5 {
		t.Fatalf("unexpected change: %+v", chg)
	}
	if w.Current().SecretAreaCost != 1 {
		t.Fatalf("watcher did not keep new config")
	}
}

func TestWatcher_InvalidFileKeepsPrevious(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	p := filepath.Join(t.TempDir(), "roles.yaml")
	base := time.Now().Add(-time.Hour)
	touch(t, p, yamlRoles, base)

	initial, err := LoadRoles(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := NewWatcher(p, time.Second, initial)
	defer w.Close()
	ch := w.Subscribe()

	touch(t, p, "quacker_roles: [3, 1]\nquacker_roles_names: [a, b, c]\n", base.Add(time.Minute))
	w.CheckNow()
	chg := <-ch
	if chg.Err == nil {
		t.Fatalf("expected reload failure")
	}
	if w.Current().SecretAreaCost != 5 {
		t.Fatalf("previous config should stay in effect")
	}
}

func TestWatcher_EnvFileRepointsRoles(t *testing.T) {
	dir := t.TempDir()
	rolesPath := filepath.Join(dir, "custom.toml")
	touch(t, rolesPath, tomlRoles, time.Now())
	envPath := filepath.Join(dir, ".env")
	touch(t, envPath, "ROLES_FILE="+rolesPath+"\n", time.Now())

	t.Setenv("CONFIG_FILE", envPath)
	t.Setenv("ROLES_FILE", "")
	w := NewWatcher("", time.Second, roles.DefaultConfig())
	defer w.Close()
	// pretend the env file was seen before its latest write
	w.envMT = time.Time{}
	ch := w.Subscribe()

	if !w.CheckNow() {
		t.Fatalf("expected env change to trigger reload")
	}
	chg := <-ch
	if chg.Err != nil || chg.Path != rolesPath || chg.New.SecretAreaCost != 5 {
		t.Fatalf("unexpected change: %+v", chg)
	}
}

func TestWatcher_CloseClosesSubscribers(t *testing.T) {
	w := NewWatcher("", time.Second, roles.DefaultConfig())
	ch := w.Subscribe()
	w.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	w.Close()
}

// replaceUntilReload swaps the roles file by rename until the watcher
// publishes the new configuration. The watch may not be registered for the
// first rename, so it keeps retrying until the deadline.
func replaceUntilReload(t *testing.T, interval time.Duration) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	dir := t.TempDir()
	p := filepath.Join(dir, "roles.toml")
	touch(t, p, tomlRoles, time.Now().Add(-time.Hour))

	initial, err := LoadRoles(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := NewWatcher(p, interval, initial)
	defer w.Close()
	ch := w.Subscribe()
	w.Start()

	replace := func() {
		tmp := filepath.Join(dir, "roles.toml.tmp")
		if err := os.WriteFile(tmp, []byte(`
general_legacies = []
counting_legacies = []
secret_area_cost = 9
quacker_roles = []
quacker_roles_names = ["Only"]
`), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.Rename(tmp, p); err != nil {
			t.Fatalf("rename: %v", err)
		}
	}

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	replace()
	for {
		select {
		case chg := <-ch:
			if chg.Err != nil {
				continue
			}
			if chg.New.SecretAreaCost != 9 {
				t.Fatalf("unexpected change: %+v", chg)
			}
			return
		case <-tick.C:
			replace()
		case <-deadline:
			t.Fatal("no reload after file replacement")
		}
	}
}

func TestWatcher_FileEventTriggersReload(t *testing.T) {
	// the ticker never fires within the test, so only file events can reload
	replaceUntilReload(t, time.Hour)
}

func TestWatcher_ZeroIntervalStillReactsToFileEvents(t *testing.T) {
	replaceUntilReload(t, 0)
}

func TestWatcher_MissingFileReportedOnce(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	p := filepath.Join(t.TempDir(), "roles.toml")
	base := time.Now().Add(-time.Hour)
	touch(t, p, tomlRoles, base)

	initial, err := LoadRoles(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := NewWatcher(p, time.Second, initial)
	defer w.Close()
	ch := w.Subscribe()

	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !w.CheckNow() {
		t.Fatalf("expected the missing file to be reported")
	}
	if chg := <-ch; chg.Err == nil {
		t.Fatalf("expected a failure event, got %+v", chg)
	}
	for i := 0; i < 3; i++ {
		if w.CheckNow() {
			t.Fatalf("missing file reported again on check %d", i+2)
		}
	}

	// an older mtime than before the delete must still be picked up
	touch(t, p, tomlRoles, base.Add(-time.Hour))
	if !w.CheckNow() {
		t.Fatalf("expected reload once the file is back")
	}
	if chg := <-ch; chg.Err != nil {
		t.Fatalf("unexpected failure after restore: %v", chg.Err)
	}
	if w.CheckNow() {
		t.Fatalf("unchanged restored file should not publish")
	}
}
