// Package slug derives URL path segments from theme titles and
// allocates collision-free output paths.
package slug

import (
	"strconv"
	"strings"
)

// Fallback is used when a title reduces to nothing.
const Fallback = "tool"

// Derive builds a base slug: lowercase, URL schemes stripped,
// non-alphanumeric runs collapsed to single hyphens, trimmed to maxLen.
func Derive(title string, maxLen int) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, "https://", "")
	s = strings.ReplaceAll(s, "http://", "")

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	out := strings.Trim(b.String(), "-")
	if maxLen > 0 && len(out) > maxLen {
		out = strings.Trim(out[:maxLen], "-")
	}
	if out == "" {
		return Fallback
	}
	return out
}

// Namespace answers whether an output path is already occupied.
// Implementations must reflect everything ever published; once a path
// is taken it stays taken forever.
type Namespace interface {
	Exists(slug string) (bool, error)
}

// Allocator reserves collision-free slugs against a namespace. It also
// remembers its own reservations so two themes in one run cannot race
// for the same path.
type Allocator struct {
	ns       Namespace
	reserved map[string]struct{}
}

// NewAllocator creates an allocator over the given namespace.
func NewAllocator(ns Namespace) *Allocator {
	return &Allocator{ns: ns, reserved: map[string]struct{}{}}
}

// Allocate returns the base slug if free, otherwise the first free
// base-2, base-3, ... variant. The returned path is guaranteed
// unoccupied at call time and is reserved against this allocator.
func (a *Allocator) Allocate(base string) (string, error) {
	if base == "" {
		base = Fallback
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := a.taken(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			a.reserved[candidate] = struct{}{}
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

// Release frees an in-run reservation after a failed build so the name
// is not silently consumed. Published paths are never released.
func (a *Allocator) Release(slug string) {
	delete(a.reserved, slug)
}

func (a *Allocator) taken(slug string) (bool, error) {
	if _, ok := a.reserved[slug]; ok {
		return true, nil
	}
	return a.ns.Exists(slug)
}
