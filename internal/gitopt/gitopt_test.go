package gitopt

import (
	"context"
	"os/exec"
	"testing"
)

func TestDisabled_NeverSkips(t *testing.T) {
	g := Disabled()
	touched, err := g.Touched(context.Background(), "x")
	if err != nil {
		t.Fatalf("touched: %v", err)
	}
	if !touched {
		t.Fatalf("disabled git should report every path as touched")
	}
	if g.SkipUnchanged(context.Background(), "x") {
		t.Fatalf("disabled git should never skip")
	}
}

func TestNew_FailsOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	if _, err := New(context.Background(), dir); err == nil {
		t.Fatalf("expected error outside a git work tree")
	}
}

func TestSkipUnchanged_CleanFileAfterCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	if testing.Short() {
		t.Skip("short mode")
	}
	dir := t.TempDir()
	run := func(name string, args ...string) {
		cmd := exec.Command(name, args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("%s %v: %v: %s", name, args, err, string(out))
		}
	}
	run("git", "init", "-b", "main")
	run("git", "config", "user.email", "you@example.com")
	run("git", "config", "user.name", "Your Name")
	run("bash", "-c", "printf 'x = 1\\n' > a.py")
	run("git", "add", "a.py")
	run("git", "-c", "commit.gpgsign=false", "commit", "-m", "init")

	g, err := New(context.Background(), dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !g.SkipUnchanged(context.Background(), dir+"/a.py") {
		t.Fatalf("expected clean committed file to be skippable")
	}

	run("bash", "-c", "printf 'x = 2\\n' > a.py")
	if g.SkipUnchanged(context.Background(), dir+"/a.py") {
		t.Fatalf("expected dirty file to not be skippable")
	}
}
