package automation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sara-labs/sara/internal/automation"
	"github.com/sara-labs/sara/pkg/provider/search"
	searchmock "github.com/sara-labs/sara/pkg/provider/search/mock"
)

// fakeProcess implements automation.Process.
type fakeProcess struct {
	name       string
	terminated bool
}

func (p *fakeProcess) Name() string { return p.name }

func (p *fakeProcess) Terminate(ctx context.Context) error {
	p.terminated = true
	return nil
}

// fakeLister implements automation.ProcessLister.
type fakeLister struct {
	procs  []automation.Process
	err    error
	called bool
}

func (l *fakeLister) Processes(ctx context.Context) ([]automation.Process, error) {
	l.called = true
	return l.procs, l.err
}

// fakeResolver implements automation.AppResolver.
type fakeResolver struct {
	app automation.App
	ok  bool
}

func (r *fakeResolver) Resolve(name string) (automation.App, bool) { return r.app, r.ok }

// capture records commands and URLs instead of executing them.
type capture struct {
	urls []string
	cmds [][]string
}

func (c *capture) openURL(ctx context.Context, u string) error {
	c.urls = append(c.urls, u)
	return nil
}

func (c *capture) runCmd(ctx context.Context, name string, args ...string) error {
	c.cmds = append(c.cmds, append([]string{name}, args...))
	return nil
}

func newDesktop(t *testing.T, sp search.Provider, resolver automation.AppResolver, lister automation.ProcessLister) (*automation.Desktop, *capture) {
	t.Helper()
	c := &capture{}
	opts := []automation.Option{
		automation.WithURLOpener(c.openURL),
		automation.WithCommandRunner(c.runCmd),
	}
	if resolver != nil {
		opts = append(opts, automation.WithAppResolver(resolver))
	} else {
		opts = append(opts, automation.WithAppResolver(&fakeResolver{}))
	}
	if lister != nil {
		opts = append(opts, automation.WithProcessLister(lister))
	} else {
		opts = append(opts, automation.WithProcessLister(&fakeLister{}))
	}
	return automation.New(sp, opts...), c
}

func TestCloseApp_RefusesChrome(t *testing.T) {
	lister := &fakeLister{procs: []automation.Process{&fakeProcess{name: "chrome"}}}
	d, _ := newDesktop(t, nil, nil, lister)

	for _, arg := range []string{"chrome", "Google Chrome", "CHROME browser"} {
		err := d.CloseApp(context.Background(), arg)
		if !errors.Is(err, automation.ErrProtectedProcess) {
			t.Errorf("CloseApp(%q): got %v, want ErrProtectedProcess", arg, err)
		}
	}
	if lister.called {
		t.Error("process table must not be consulted for protected names")
	}
}

func TestCloseApp_TerminatesSubstringMatch(t *testing.T) {
	spotify := &fakeProcess{name: "Spotify.exe"}
	lister := &fakeLister{procs: []automation.Process{
		&fakeProcess{name: "systemd"},
		spotify,
	}}
	d, _ := newDesktop(t, nil, nil, lister)

	if err := d.CloseApp(context.Background(), "spotify"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spotify.terminated {
		t.Error("matching process was not terminated")
	}
}

func TestCloseApp_NoMatch(t *testing.T) {
	lister := &fakeLister{procs: []automation.Process{&fakeProcess{name: "systemd"}}}
	d, _ := newDesktop(t, nil, nil, lister)

	if err := d.CloseApp(context.Background(), "spotify"); !errors.Is(err, automation.ErrNoMatch) {
		t.Errorf("got %v, want ErrNoMatch", err)
	}
}

func TestOpenApp_LaunchesResolvedApp(t *testing.T) {
	resolver := &fakeResolver{app: automation.App{Name: "Spotify", Exec: "spotify"}, ok: true}
	d, c := newDesktop(t, nil, resolver, nil)

	if err := d.OpenApp(context.Background(), "spotify"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.cmds) != 1 || c.cmds[0][0] != "spotify" {
		t.Errorf("commands: got %v", c.cmds)
	}
	if len(c.urls) != 0 {
		t.Errorf("no URL should be opened when the app resolves: %v", c.urls)
	}
}

func TestOpenApp_FallsBackToBrandURL(t *testing.T) {
	d, c := newDesktop(t, nil, nil, nil)

	if err := d.OpenApp(context.Background(), "Instagram"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.urls) != 1 || c.urls[0] != "https://www.instagram.com" {
		t.Errorf("urls: got %v", c.urls)
	}
}

func TestOpenApp_FallsBackToSearch(t *testing.T) {
	sp := &searchmock.Provider{Results: []search.Result{
		{Title: "Obscurify", URL: "https://obscurify.example.com"},
	}}
	d, c := newDesktop(t, sp, nil, nil)

	if err := d.OpenApp(context.Background(), "obscurify"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.urls) != 1 || c.urls[0] != "https://obscurify.example.com" {
		t.Errorf("urls: got %v", c.urls)
	}
}

func TestOpenApp_SearchEmptyNeverFails(t *testing.T) {
	sp := &searchmock.Provider{}
	d, c := newDesktop(t, sp, nil, nil)

	if err := d.OpenApp(context.Background(), "nonexistentapp"); err != nil {
		t.Fatalf("final fallback must not fail outright: %v", err)
	}
	if len(c.urls) != 0 {
		t.Errorf("urls: got %v", c.urls)
	}
}

func TestSystemAction(t *testing.T) {
	d, c := newDesktop(t, nil, nil, nil)

	for _, action := range []string{"mute", "unmute", "volume up", "volume down"} {
		if err := d.SystemAction(context.Background(), action); err != nil {
			t.Errorf("SystemAction(%q): %v", action, err)
		}
	}
	if len(c.cmds) != 4 {
		t.Fatalf("got %d commands, want 4", len(c.cmds))
	}

	if err := d.SystemAction(context.Background(), "reboot"); !errors.Is(err, automation.ErrUnknownAction) {
		t.Errorf("got %v, want ErrUnknownAction", err)
	}
}

func TestSearchURLs(t *testing.T) {
	d, c := newDesktop(t, nil, nil, nil)

	if err := d.GoogleSearch(context.Background(), "nightwing comics"); err != nil {
		t.Fatal(err)
	}
	if err := d.YouTubeSearch(context.Background(), "joji"); err != nil {
		t.Fatal(err)
	}
	if err := d.Play(context.Background(), "lo-fi beats"); err != nil {
		t.Fatal(err)
	}

	if len(c.urls) != 3 {
		t.Fatalf("got %d urls, want 3", len(c.urls))
	}
	if !strings.Contains(c.urls[0], "google.com/search?q=nightwing+comics") {
		t.Errorf("google url: %q", c.urls[0])
	}
	if !strings.Contains(c.urls[1], "youtube.com/results?search_query=joji") {
		t.Errorf("youtube url: %q", c.urls[1])
	}
}
