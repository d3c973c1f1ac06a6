package mw

import (
	"path"
	"strings"
)

// PathMatcher — allow-list публичных путей в стиле Ant:
// "**" означает любое число сегментов, остальные сегменты сравниваются через path.Match.
type PathMatcher struct {
	patterns [][]string
}

func NewPathMatcher(patterns []string) *PathMatcher {
	m := &PathMatcher{}
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			m.patterns = append(m.patterns, splitSegments(p))
		}
	}
	return m
}

// Match нормализует путь (path.Clean), так что "/api/v1/auth/../users/me" не считается публичным.
func (m *PathMatcher) Match(p string) bool {
	segs := splitSegments(path.Clean("/" + p))
	for _, pat := range m.patterns {
		if matchSegments(pat, segs) {
			return true
		}
	}
	return false
}

func splitSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pat[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if ok, err := path.Match(pat[0], segs[0]); err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}
