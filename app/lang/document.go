package lang

import (
	"sort"
	"strings"
	"time"
)

// DefaultDebounce is how long after the last keystroke error results stay
// hidden in the live projection.
const DefaultDebounce = 500 * time.Millisecond

// Document is the reactive calculator engine. It owns the source lines, the
// variable environment, and two index-aligned result projections: debounced
// (always complete, including errors) and live (errors blanked while the
// user is still typing). Edits mark lines dirty; Evaluate recomputes dirty
// lines plus any line referencing a variable that changed.
type Document struct {
	lines     []string
	live      []string
	debounced []string

	vars     Env
	dirty    map[int]struct{}
	snapshot Env
	rates    *Rates

	lastKeystroke time.Time
	debounce      time.Duration
}

// NewDocument builds a document with a single blank line.
func NewDocument(rates *Rates) *Document {
	return &Document{
		lines:         []string{""},
		live:          []string{""},
		debounced:     []string{""},
		vars:          make(Env),
		dirty:         make(map[int]struct{}),
		snapshot:      make(Env),
		rates:         rates,
		lastKeystroke: time.Now(),
		debounce:      DefaultDebounce,
	}
}

// SetDebounce overrides the error-hiding window. Zero disables hiding.
func (d *Document) SetDebounce(w time.Duration) {
	d.debounce = w
}

// LineCount returns the number of source lines. Always at least 1.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns the source text of line i, or "" when out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// Result returns the live projection for line i: errors are blanked while
// the debounce window since the last keystroke is still open.
func (d *Document) Result(i int) string {
	if i < 0 || i >= len(d.live) {
		return ""
	}
	return d.live[i]
}

// DebouncedResult returns the complete projection for line i, errors included.
func (d *Document) DebouncedResult(i int) string {
	if i < 0 || i >= len(d.debounced) {
		return ""
	}
	return d.debounced[i]
}

// InsertRune inserts r into line row at rune position col.
func (d *Document) InsertRune(row, col int, r rune) {
	if row < 0 || row >= len(d.lines) {
		return
	}
	runes := []rune(d.lines[row])
	if col < 0 {
		col = 0
	}
	if col > len(runes) {
		col = len(runes)
	}
	runes = append(runes[:col], append([]rune{r}, runes[col:]...)...)
	d.lines[row] = string(runes)
	d.touch(row)
}

// DeleteBefore removes the rune before col in line row (backspace).
func (d *Document) DeleteBefore(row, col int) {
	if row < 0 || row >= len(d.lines) || col <= 0 {
		return
	}
	runes := []rune(d.lines[row])
	if col > len(runes) {
		col = len(runes)
	}
	d.lines[row] = string(append(runes[:col-1], runes[col:]...))
	d.touch(row)
}

// DeleteAt removes the rune at col in line row (forward delete).
func (d *Document) DeleteAt(row, col int) {
	if row < 0 || row >= len(d.lines) {
		return
	}
	runes := []rune(d.lines[row])
	if col < 0 || col >= len(runes) {
		return
	}
	d.lines[row] = string(append(runes[:col], runes[col+1:]...))
	d.touch(row)
}

// SplitLine breaks line row at rune position col, pushing the tail onto a
// new following line.
func (d *Document) SplitLine(row, col int) {
	if row < 0 || row >= len(d.lines) {
		return
	}
	runes := []rune(d.lines[row])
	if col < 0 {
		col = 0
	}
	if col > len(runes) {
		col = len(runes)
	}
	head, tail := string(runes[:col]), string(runes[col:])

	d.lines[row] = head
	d.lines = insertAt(d.lines, row+1, tail)
	d.live = insertAt(d.live, row+1, "")
	d.debounced = insertAt(d.debounced, row+1, "")

	d.shiftDirty(row+1, 1)
	d.touch(row)
	d.markDirty(row + 1)
}

// JoinLines appends line row+1 onto line row and removes it.
func (d *Document) JoinLines(row int) {
	if row < 0 || row+1 >= len(d.lines) {
		return
	}
	d.lines[row] += d.lines[row+1]
	d.lines = removeAt(d.lines, row+1)
	d.live = removeAt(d.live, row+1)
	d.debounced = removeAt(d.debounced, row+1)

	delete(d.dirty, row+1)
	d.shiftDirty(row+2, -1)
	d.touch(row)
}

// Load replaces the whole document, clears the variable environment, and
// runs one full evaluation pass.
func (d *Document) Load(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	d.lines = append([]string(nil), lines...)
	d.live = make([]string, len(d.lines))
	d.debounced = make([]string, len(d.lines))
	d.vars = make(Env)
	d.snapshot = make(Env)
	d.dirty = make(map[int]struct{})
	for i := range d.lines {
		d.dirty[i] = struct{}{}
	}
	d.Evaluate()
}

// Save returns the source joined with newlines.
func (d *Document) Save() string {
	return strings.Join(d.lines, "\n")
}

// SetRate installs a manual exchange rate override.
func (d *Document) SetRate(from, to string, rate float64) bool {
	return d.rates.Set(from, to, rate)
}

// Evaluate runs one pass: dirty lines are re-parsed and re-evaluated in
// ascending order with assignments committed immediately, then every other
// line whose text mentions a changed variable name is re-evaluated. Blank
// and comment-only lines are skipped and keep their previous result. A pass
// with no dirty lines is a no-op.
func (d *Document) Evaluate() {
	if len(d.dirty) == 0 {
		return
	}

	idxs := make([]int, 0, len(d.dirty))
	for i := range d.dirty {
		if i >= 0 && i < len(d.lines) {
			idxs = append(idxs, i)
		}
	}
	sort.Ints(idxs)
	for _, i := range idxs {
		if skippable(d.lines[i]) {
			continue
		}
		d.evalLine(i)
	}

	// Dependency detection is a raw substring scan over the line text. It
	// over-approximates (a changed "x" recomputes lines mentioning "max"),
	// which is harmless: recomputing an unaffected line yields the same value.
	// Dirty lines are scanned again too, so a line evaluated before a later
	// line in the same pass redefined its variable picks up the new value.
	changed := d.changedVars()
	if len(changed) > 0 {
		for i, line := range d.lines {
			if skippable(line) {
				continue
			}
			if mentionsAny(line, changed) {
				d.evalLine(i)
			}
		}
	}

	d.dirty = make(map[int]struct{})
	d.snapshot = copyEnv(d.vars)
	d.refreshLive()
}

// Tick promotes the debounced projection to the live one once the debounce
// window since the last keystroke has elapsed.
func (d *Document) Tick() {
	if time.Since(d.lastKeystroke) >= d.debounce {
		copy(d.live, d.debounced)
	}
}

func (d *Document) evalLine(i int) {
	expr := ParseLine(d.lines[i], d.vars, d.rates)
	val := Evaluate(expr, d.vars, d.rates)
	if a, ok := val.(Assignment); ok {
		d.vars[a.Name] = a.Value
	}
	d.debounced[i] = val.String()
}

// changedVars compares the environment against the pre-pass snapshot and
// returns the names whose values differ, were added, or were removed.
func (d *Document) changedVars() []string {
	var changed []string
	for name, val := range d.vars {
		old, ok := d.snapshot[name]
		if !ok || !valueEqual(old, val) {
			changed = append(changed, name)
		}
	}
	for name := range d.snapshot {
		if _, ok := d.vars[name]; !ok {
			changed = append(changed, name)
		}
	}
	return changed
}

func (d *Document) refreshLive() {
	hideErrors := time.Since(d.lastKeystroke) < d.debounce
	for i, res := range d.debounced {
		if hideErrors && strings.HasPrefix(res, "Error:") {
			d.live[i] = ""
		} else {
			d.live[i] = res
		}
	}
}

func (d *Document) touch(row int) {
	d.lastKeystroke = time.Now()
	d.markDirty(row)
}

func (d *Document) markDirty(row int) {
	d.dirty[row] = struct{}{}
}

// shiftDirty reindexes dirty entries at or above from by delta after a line
// insert or removal.
func (d *Document) shiftDirty(from, delta int) {
	if len(d.dirty) == 0 {
		return
	}
	shifted := make(map[int]struct{}, len(d.dirty))
	for i := range d.dirty {
		if i >= from {
			shifted[i+delta] = struct{}{}
		} else {
			shifted[i] = struct{}{}
		}
	}
	d.dirty = shifted
}

// skippable reports whether a line is blank or comment-only. Such lines are
// never evaluated and their result cells are left untouched.
func skippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

func mentionsAny(line string, names []string) bool {
	for _, name := range names {
		if name != "" && strings.Contains(line, name) {
			return true
		}
	}
	return false
}

func copyEnv(env Env) Env {
	out := make(Env, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

func insertAt(s []string, i int, v string) []string {
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt(s []string, i int) []string {
	return append(s[:i], s[i+1:]...)
}
