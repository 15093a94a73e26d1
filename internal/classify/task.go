// Package classify turns a raw user utterance into an ordered list of tagged
// tasks drawn from a fixed verb grammar.
//
// The grammar is closed: every task is a [Verb] from the table below plus a
// free-text argument. Classification itself may be backed by a generative
// model (see [LLMClassifier]), but the shape of its output is validated with
// [ParseTask] before anything is dispatched; malformed lines are dropped,
// never executed.
package classify

import "strings"

// Verb is one of the fixed task verbs the assistant understands.
type Verb string

const (
	VerbGeneral       Verb = "general"
	VerbRealtime      Verb = "realtime"
	VerbContent       Verb = "content"
	VerbGenerateImage Verb = "generate image"
	VerbOpen          Verb = "open"
	VerbClose         Verb = "close"
	VerbPlay          Verb = "play"
	VerbGoogleSearch  Verb = "google search"
	VerbYouTubeSearch Verb = "youtube search"
	VerbSystem        Verb = "system"
)

// verbs lists all known verbs ordered longest prefix first, so that
// "generate image" wins over a hypothetical "generate" and "google search"
// is never misread as an argument to some shorter verb.
var verbs = []Verb{
	VerbGenerateImage,
	VerbYouTubeSearch,
	VerbGoogleSearch,
	VerbRealtime,
	VerbGeneral,
	VerbContent,
	VerbSystem,
	VerbClose,
	VerbOpen,
	VerbPlay,
}

// Verbs returns the closed set of known verbs, longest prefix first.
// The returned slice is a copy; callers may not mutate the grammar.
func Verbs() []Verb {
	out := make([]Verb, len(verbs))
	copy(out, verbs)
	return out
}

// IsValid reports whether v is part of the fixed grammar.
func (v Verb) IsValid() bool {
	for _, known := range verbs {
		if v == known {
			return true
		}
	}
	return false
}

// Task is a single classified instruction: a verb from the fixed grammar and
// its free-text argument. Tasks are immutable once classified.
type Task struct {
	Verb Verb
	Arg  string
}

// String renders the task back into its wire form, e.g. "open spotify".
func (t Task) String() string {
	if t.Arg == "" {
		return string(t.Verb)
	}
	return string(t.Verb) + " " + t.Arg
}

// ParseTask matches line against the verb table, longest prefix first, and
// returns the parsed task. The boolean is false when the line does not start
// with a known verb or carries an empty argument; such lines must be dropped
// by the caller, not dispatched.
func ParseTask(line string) (Task, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Task{}, false
	}

	lower := strings.ToLower(line)
	for _, v := range verbs {
		prefix := string(v)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := line[len(prefix):]
		// Require a word boundary: "opening" must not parse as "open ing".
		if rest != "" && rest[0] != ' ' {
			continue
		}
		arg := strings.TrimSpace(rest)
		if arg == "" {
			return Task{}, false
		}
		return Task{Verb: v, Arg: arg}, true
	}
	return Task{}, false
}

// ParseTasks parses one task per line from raw classifier output, dropping
// malformed lines. The order of valid lines is preserved. A fully malformed
// input yields an empty slice, never an error.
func ParseTasks(raw string) []Task {
	var tasks []Task
	for _, line := range strings.Split(raw, "\n") {
		// Some models emit comma-separated tasks on a single line.
		for _, part := range strings.Split(line, ",") {
			if t, ok := ParseTask(part); ok {
				tasks = append(tasks, t)
			}
		}
	}
	return tasks
}
