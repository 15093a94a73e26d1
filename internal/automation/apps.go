package automation

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
)

// fuzzyThreshold is the minimum Jaro-Winkler similarity for an installed
// application to count as a match for a spoken name.
const fuzzyThreshold = 0.85

// App is a launchable desktop application.
type App struct {
	// Name is the display name from the desktop entry.
	Name string

	// Exec is the binary to start.
	Exec string

	// Args are the static arguments from the Exec line.
	Args []string
}

// AppResolver resolves a (possibly misheard) application name to an
// installed application.
type AppResolver interface {
	// Resolve returns the closest installed application for name, if any
	// candidate is close enough.
	Resolve(name string) (App, bool)
}

// DesktopEntryResolver resolves names against the freedesktop.org desktop
// entries installed on the host. Entries are scanned once, on first use.
type DesktopEntryResolver struct {
	dirs []string

	once sync.Once
	apps []App
}

// NewDesktopEntryResolver scans the standard application directories.
func NewDesktopEntryResolver() *DesktopEntryResolver {
	dirs := []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}
	return &DesktopEntryResolver{dirs: dirs}
}

// Resolve implements AppResolver. Matching is exact-substring first, then
// Jaro-Winkler fuzzy, so "spot if i" still finds Spotify.
func (r *DesktopEntryResolver) Resolve(name string) (App, bool) {
	r.once.Do(r.scan)

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return App{}, false
	}

	var (
		best      App
		bestScore float64
	)
	for _, app := range r.apps {
		candidate := strings.ToLower(app.Name)
		if candidate == name || strings.Contains(candidate, name) {
			return app, true
		}
		if score := matchr.JaroWinkler(name, candidate, false); score > bestScore {
			best, bestScore = app, score
		}
	}

	if bestScore >= fuzzyThreshold {
		return best, true
	}
	return App{}, false
}

// scan parses every *.desktop file under the configured directories.
func (r *DesktopEntryResolver) scan() {
	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".desktop") {
				continue
			}
			if app, ok := parseDesktopEntry(filepath.Join(dir, e.Name())); ok {
				r.apps = append(r.apps, app)
			}
		}
	}
}

// parseDesktopEntry extracts Name and Exec from a desktop entry file.
func parseDesktopEntry(path string) (App, bool) {
	f, err := os.Open(path)
	if err != nil {
		return App{}, false
	}
	defer f.Close()

	var app App
	sc := bufio.NewScanner(f)
	inDesktopSection := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "["):
			inDesktopSection = line == "[Desktop Entry]"
		case !inDesktopSection:
			// Only the main section carries the fields we want.
		case strings.HasPrefix(line, "Name=") && app.Name == "":
			app.Name = strings.TrimPrefix(line, "Name=")
		case strings.HasPrefix(line, "Exec=") && app.Exec == "":
			fields := strings.Fields(strings.TrimPrefix(line, "Exec="))
			if len(fields) == 0 {
				continue
			}
			app.Exec = fields[0]
			for _, arg := range fields[1:] {
				// Field codes (%u, %f, ...) are launch-time placeholders.
				if strings.HasPrefix(arg, "%") {
					continue
				}
				app.Args = append(app.Args, arg)
			}
		}
	}
	if app.Name == "" || app.Exec == "" {
		return App{}, false
	}
	return app, true
}
