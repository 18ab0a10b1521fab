package build

import (
	"fmt"
	"strconv"
	"strings"
)

// PatchResult is the typed outcome of patch application: either the
// patched text or the reason the diff was rejected. Rejection is an
// expected outcome, not an error; the controller falls back to full
// regeneration.
type PatchResult struct {
	Applied bool
	Text    string
	Reason  string
}

// Applied wraps successfully patched text.
func Applied(text string) PatchResult { return PatchResult{Applied: true, Text: text} }

// Rejected reports why a diff could not be applied.
func Rejected(reason string) PatchResult { return PatchResult{Reason: reason} }

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []string // with ' ', '-' or '+' prefix
}

// ApplyPatch applies a unified-diff style patch to current. The
// grammar is deliberately small: a "--- " header token, one or more
// "@@ -a,b +c,d @@" hunks, and body lines prefixed with ' ', '-' or
// '+'. Anything else rejects the patch; context that does not match
// the current text rejects it too.
func ApplyPatch(current, diff string) PatchResult {
	hunks, err := parsePatch(diff)
	if err != nil {
		return Rejected(err.Error())
	}

	lines := strings.Split(current, "\n")
	var out []string
	cursor := 0 // index into lines, 0-based

	for i, h := range hunks {
		start := h.oldStart - 1
		if start < cursor || start > len(lines) {
			return Rejected(fmt.Sprintf("hunk %d out of order or out of range", i+1))
		}
		out = append(out, lines[cursor:start]...)
		cursor = start

		for _, l := range h.lines {
			op, body := l[0], l[1:]
			switch op {
			case ' ':
				if cursor >= len(lines) || lines[cursor] != body {
					return Rejected(fmt.Sprintf("hunk %d context mismatch at line %d", i+1, cursor+1))
				}
				out = append(out, body)
				cursor++
			case '-':
				if cursor >= len(lines) || lines[cursor] != body {
					return Rejected(fmt.Sprintf("hunk %d deletion mismatch at line %d", i+1, cursor+1))
				}
				cursor++
			case '+':
				out = append(out, body)
			}
		}
	}

	out = append(out, lines[cursor:]...)
	patched := strings.Join(out, "\n")
	if patched == current {
		return Rejected("patch produced no change")
	}
	return Applied(patched)
}

// parsePatch validates the diff grammar and extracts hunks.
func parsePatch(diff string) ([]hunk, error) {
	lines := strings.Split(strings.ReplaceAll(diff, "\r\n", "\n"), "\n")

	idx := 0
	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		idx++
	}
	if idx >= len(lines) || !strings.HasPrefix(lines[idx], "--- ") {
		return nil, fmt.Errorf("missing '--- ' header token")
	}
	idx++
	if idx < len(lines) && strings.HasPrefix(lines[idx], "+++ ") {
		idx++
	}

	var hunks []hunk
	for idx < len(lines) {
		line := lines[idx]
		if strings.TrimSpace(line) == "" {
			idx++
			continue
		}
		if !strings.HasPrefix(line, "@@ ") {
			return nil, fmt.Errorf("expected hunk header, got %q", line)
		}
		h, err := parseHunkHeader(line)
		if err != nil {
			return nil, err
		}
		idx++

		oldSeen, newSeen := 0, 0
		for idx < len(lines) && (oldSeen < h.oldCount || newSeen < h.newCount) {
			l := lines[idx]
			if l == "" {
				l = " " // blank context line
			}
			switch l[0] {
			case ' ':
				oldSeen++
				newSeen++
			case '-':
				oldSeen++
			case '+':
				newSeen++
			default:
				return nil, fmt.Errorf("invalid hunk line prefix %q", l[0])
			}
			h.lines = append(h.lines, l)
			idx++
		}
		if oldSeen != h.oldCount || newSeen != h.newCount {
			return nil, fmt.Errorf("hunk body does not match declared ranges")
		}
		hunks = append(hunks, h)
	}

	if len(hunks) == 0 {
		return nil, fmt.Errorf("no hunks found")
	}
	return hunks, nil
}

// parseHunkHeader parses "@@ -a,b +c,d @@" (counts optional,
// defaulting to 1).
func parseHunkHeader(line string) (hunk, error) {
	var h hunk
	rest := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(rest, " @@")
	if end < 0 {
		return h, fmt.Errorf("malformed hunk header %q", line)
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") || !strings.HasPrefix(fields[1], "+") {
		return h, fmt.Errorf("malformed hunk header %q", line)
	}

	var err error
	h.oldStart, h.oldCount, err = parseRange(fields[0][1:])
	if err != nil {
		return h, fmt.Errorf("malformed hunk header %q: %w", line, err)
	}
	h.newStart, h.newCount, err = parseRange(fields[1][1:])
	if err != nil {
		return h, fmt.Errorf("malformed hunk header %q: %w", line, err)
	}
	return h, nil
}

func parseRange(s string) (start, count int, err error) {
	count = 1
	if comma := strings.Index(s, ","); comma >= 0 {
		count, err = strconv.Atoi(s[comma+1:])
		if err != nil {
			return 0, 0, err
		}
		s = s[:comma]
	}
	start, err = strconv.Atoi(s)
	if err != nil {
		return 0, 0, err
	}
	return start, count, nil
}
