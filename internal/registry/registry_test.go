// internal/registry/registry_test.go
//
// Unit-tests for the reloadable registry.
//
// Each test writes templates into t.TempDir() and moves modification times
// with os.Chtimes rather than sleeping, so results do not depend on the
// filesystem's timestamp resolution.

package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yanizio/stencil/internal/engine"
)

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func newRegistry(reload bool) *Registry {
	return New(engine.NewHandlebars(), WithReload(reload), WithLogger(zap.NewNop().Sugar()))
}

var (
	base   = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	noData = map[string]any{}
)

func TestRegisterFile_RenderAndPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "greet.hbs")
	writeFile(t, p, "Hello, {{name}}!", base)

	r := newRegistry(true)
	if err := r.RegisterFile("greet", p); err != nil {
		t.Fatalf("RegisterFile: %v", err)
	}
	got, err := r.Render("greet", map[string]any{"name": "World"})
	if err != nil || got != "Hello, World!" {
		t.Fatalf("Render = %q, %v", got, err)
	}
	if path, ok := r.Path("greet"); !ok || path != p {
		t.Fatalf("Path = %q, %v", path, ok)
	}
	if v := r.Version("greet"); v != 1 {
		t.Fatalf("Version = %d, want 1", v)
	}
}

func TestRegisterFile_FailureLeavesNoState(t *testing.T) {
	dir := t.TempDir()
	r := newRegistry(true)

	err := r.RegisterFile("missing", filepath.Join(dir, "nope.hbs"))
	var re *RegistrationError
	if !errors.As(err, &re) || re.Name != "missing" {
		t.Fatalf("err = %v, want *RegistrationError", err)
	}

	bad := filepath.Join(dir, "bad.hbs")
	writeFile(t, bad, "{{#if x}}", base)
	if err := r.RegisterFile("bad", bad); err == nil {
		t.Fatalf("syntax error accepted")
	}

	if r.Len() != 0 || r.Version("bad") != 0 {
		t.Fatalf("failed registrations left state: %v", r.Names())
	}
}

func TestReloadIfNeeded_PicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "greet.hbs")
	writeFile(t, p, "Hello, {{name}}!", base)

	r := newRegistry(true)
	if err := r.RegisterFile("greet", p); err != nil {
		t.Fatalf("RegisterFile: %v", err)
	}

	// Untouched file: no recompile.
	if err := r.ReloadIfNeeded(); err != nil {
		t.Fatalf("ReloadIfNeeded: %v", err)
	}
	if v := r.Version("greet"); v != 1 {
		t.Fatalf("untouched template recompiled, version %d", v)
	}

	writeFile(t, p, "Howdy, {{name}}!", base.Add(time.Minute))
	if err := r.ReloadIfNeeded(); err != nil {
		t.Fatalf("ReloadIfNeeded: %v", err)
	}
	if v := r.Version("greet"); v != 2 {
		t.Fatalf("Version = %d, want 2", v)
	}
	got, _ := r.Render("greet", map[string]any{"name": "World"})
	if got != "Howdy, World!" {
		t.Fatalf("Render after reload = %q", got)
	}
}

func TestReloadIfNeeded_OlderMtimeIgnored(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "t.hbs")
	writeFile(t, p, "one", base)

	r := newRegistry(true)
	_ = r.RegisterFile("t", p)

	writeFile(t, p, "two", base.Add(-time.Hour))
	_ = r.ReloadIfNeeded()
	if got, _ := r.Render("t", noData); got != "one" {
		t.Fatalf("older mtime triggered reload: %q", got)
	}
}

func TestReloadIfNeeded_Disabled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "t.hbs")
	writeFile(t, p, "one", base)

	r := newRegistry(false)
	_ = r.RegisterFile("t", p)
	writeFile(t, p, "two", base.Add(time.Hour))

	if err := r.ReloadIfNeeded(); err != nil {
		t.Fatalf("ReloadIfNeeded: %v", err)
	}
	if got, _ := r.Render("t", noData); got != "one" {
		t.Fatalf("reload ran while disabled: %q", got)
	}
}

func TestReloadIfNeeded_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.hbs")
	b := filepath.Join(dir, "b.hbs")
	c := filepath.Join(dir, "c.hbs")
	writeFile(t, a, "A1", base)
	writeFile(t, b, "B1", base)
	writeFile(t, c, "C1", base)

	r := newRegistry(true)
	for name, p := range map[string]string{"a": a, "b": b, "c": c} {
		if err := r.RegisterFile(name, p); err != nil {
			t.Fatalf("RegisterFile %s: %v", name, err)
		}
	}

	later := base.Add(time.Minute)
	writeFile(t, a, "{{#if broken}}", later) // compile error
	if err := os.Remove(b); err != nil {      // stat error
		t.Fatalf("remove: %v", err)
	}
	writeFile(t, c, "C2", later) // good change

	err := r.ReloadIfNeeded()
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("combined errors = %d (%v), want 2", got, err)
	}

	if got, _ := r.Render("a", noData); got != "A1" {
		t.Errorf("a lost its previous template: %q", got)
	}
	if got, _ := r.Render("b", noData); got != "B1" {
		t.Errorf("b lost its previous template: %q", got)
	}
	if got, _ := r.Render("c", noData); got != "C2" {
		t.Errorf("c was not reloaded past the failures: %q", got)
	}

	// The failed template is retried on the next pass.
	writeFile(t, a, "A2", later)
	if err := r.ReloadIfNeeded(); len(multierr.Errors(err)) != 1 {
		t.Fatalf("second pass errors = %v, want only b", err)
	}
	if got, _ := r.Render("a", noData); got != "A2" {
		t.Errorf("a not retried: %q", got)
	}
}

func TestUnregister(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "t.hbs")
	writeFile(t, p, "x", base)

	r := newRegistry(true)
	_ = r.RegisterFile("t", p)

	path, ok := r.Unregister("t")
	if !ok || path != p {
		t.Fatalf("Unregister = %q, %v", path, ok)
	}
	if _, ok := r.Unregister("t"); ok {
		t.Fatalf("second Unregister reported success")
	}
	_, err := r.Render("t", noData)
	var re *RenderError
	if !errors.As(err, &re) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("Render err = %v, want RenderError wrapping ErrNotFound", err)
	}
}

func TestRegisterString_NotReloaded(t *testing.T) {
	r := newRegistry(true)
	if err := r.RegisterString("inline", "Hi {{who}}"); err != nil {
		t.Fatalf("RegisterString: %v", err)
	}
	if err := r.ReloadIfNeeded(); err != nil {
		t.Fatalf("ReloadIfNeeded: %v", err)
	}
	if v := r.Version("inline"); v != 1 {
		t.Fatalf("in-memory template recompiled: version %d", v)
	}
	if path, ok := r.Path("inline"); !ok || path != "" {
		t.Fatalf("Path = %q, %v", path, ok)
	}
}

func TestSeal(t *testing.T) {
	r := newRegistry(true)
	_ = r.RegisterString("t", "x")
	r.Seal()

	if err := r.RegisterString("u", "y"); !errors.Is(err, ErrSealed) {
		t.Fatalf("RegisterString after Seal err = %v", err)
	}
	if _, ok := r.Unregister("t"); ok {
		t.Fatalf("Unregister succeeded after Seal")
	}
	if r.Reloadable() {
		t.Fatalf("sealed registry reports reloadable")
	}
	if got, err := r.Render("t", noData); err != nil || got != "x" {
		t.Fatalf("Render after Seal = %q, %v", got, err)
	}
}

func TestRegisterDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.hbs"), "home", base)
	writeFile(t, filepath.Join(dir, "blog", "post.hbs"), "post {{n}}", base)
	writeFile(t, filepath.Join(dir, "blog", "post.html"), "shadowed", base)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored", base)

	r := newRegistry(true)
	n, err := r.RegisterDir(dir, ".hbs", ".html")
	if err != nil {
		t.Fatalf("RegisterDir: %v", err)
	}
	if n != 2 {
		t.Fatalf("registered %d, want 2 (%v)", n, r.Names())
	}
	if got, _ := r.Render("blog/post", map[string]any{"n": 1}); got != "post 1" {
		t.Fatalf("blog/post = %q", got)
	}
	if _, ok := r.Path("notes"); ok {
		t.Fatalf("non-template file registered")
	}
}

func TestRender_ConcurrentWithReload(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "t.hbs")
	writeFile(t, p, "v{{n}}", base)

	r := newRegistry(true)
	_ = r.RegisterFile("t", p)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if _, err := r.Render("t", map[string]any{"n": i}); err != nil {
					t.Errorf("Render: %v", err)
					return
				}
			}
		}()
	}
	for i := 1; i <= 20; i++ {
		writeFile(t, p, "w{{n}}", base.Add(time.Duration(i)*time.Second))
		_ = r.ReloadIfNeeded()
	}
	wg.Wait()
}

func TestReloadChanged_CountsRecompiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.hbs")
	b := filepath.Join(dir, "b.hbs")
	writeFile(t, a, "A1", base)
	writeFile(t, b, "B1", base)

	r := newRegistry(true)
	_ = r.RegisterFile("a", a)
	_ = r.RegisterFile("b", b)

	if n, err := r.ReloadChanged(); n != 0 || err != nil {
		t.Fatalf("untouched pass = %d, %v", n, err)
	}
	writeFile(t, a, "A2", base.Add(time.Minute))
	if n, err := r.ReloadChanged(); n != 1 || err != nil {
		t.Fatalf("one edit = %d, %v", n, err)
	}
	writeFile(t, a, "{{#if broken}}", base.Add(2*time.Minute))
	if n, err := r.ReloadChanged(); n != 0 || err == nil {
		t.Fatalf("failed recompile counted: %d, %v", n, err)
	}
}

func TestSeal_RacingRegistrationsStopAtSeal(t *testing.T) {
	for round := 0; round < 50; round++ {
		r := newRegistry(true)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for i := 0; i < 20; i++ {
					err := r.RegisterString(fmt.Sprintf("g%d-%d", g, i), "x")
					if err != nil && !errors.Is(err, ErrSealed) {
						t.Errorf("RegisterString: %v", err)
					}
				}
			}()
		}
		close(start)
		r.Seal()
		sealedAt := r.Len()
		wg.Wait()

		if got := r.Len(); got != sealedAt {
			t.Fatalf("round %d: %d templates installed after Seal", round, got-sealedAt)
		}
	}
}
