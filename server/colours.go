package server

import "github.com/fatih/color"

var (
	gray = color.New(color.FgHiBlack)
	red  = color.New(color.FgRed)
)

var methodColors = map[string]*color.Color{
	"GET":    color.New(color.FgGreen),
	"POST":   color.New(color.FgBlue),
	"PUT":    color.New(color.FgCyan),
	"DELETE": color.New(color.FgYellow),
	"PATCH":  color.New(color.FgMagenta),
}
