package models

import (
	"fmt"
	"strings"
)

// Layout selects how a document's text runs: horizontal rows or vertical columns.
type Layout string

const (
	LayoutHorizontal Layout = "horizontal"
	LayoutVertical   Layout = "vertical"
)

// ParseLayout maps a user-supplied name onto a Layout. An empty name selects horizontal.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "horizontal", "h":
		return LayoutHorizontal, nil
	case "vertical", "v":
		return LayoutVertical, nil
	}
	return "", fmt.Errorf("unknown layout %q: want horizontal or vertical", s)
}
