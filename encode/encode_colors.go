package encode

import (
	"fmt"

	"github.com/fatih/color"
)

type colorAttr int

const (
	fieldColor colorAttr = iota
	stringColor
	numberColor
	boolColor
	nullColor
	refColor
)

// Colors maps output elements to sprintf-style colorizers.
type Colors struct {
	m map[colorAttr]func(string, ...any) string
}

// NewColors returns the default palette.
func NewColors() *Colors {
	return &Colors{m: map[colorAttr]func(string, ...any) string{
		fieldColor:  color.RGB(196, 96, 16).SprintfFunc(),
		stringColor: color.GreenString,
		numberColor: color.RGB(128, 216, 236).SprintfFunc(),
		boolColor:   color.YellowString,
		nullColor:   color.New(color.FgHiBlack).SprintfFunc(),
		refColor:    color.MagentaString,
	}}
}

func (c *Colors) sprintf(attr colorAttr, format string, args ...any) string {
	f := c.m[attr]
	if f == nil {
		return fmt.Sprintf(format, args...)
	}
	return f(format, args...)
}
