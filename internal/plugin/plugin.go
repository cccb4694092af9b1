// Package plugin holds the macro handler registry and the built-in handlers.
// A handler turns one `{{Name[param]}}` token into a markup fragment.
package plugin

import (
	"github.com/rs/zerolog"

	"github.com/calepin/calepin/internal/config"
	"github.com/calepin/calepin/internal/model"
)

var pluginLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	pluginLogger = l
}

// Context is what a handler may consult while rendering: the raw text being
// scanned, the active configuration and the owning post (for handlers that
// derive output from the whole document, like a table of contents).
type Context struct {
	Source string
	Config *config.Config
	Post   *model.Post
}

// Renderer is the handler capability. Render receives the token's parameter
// (empty string when the token had no `[...]` part) and must return a markup
// fragment. A returned error leaves the token untouched in the output.
type Renderer interface {
	Name() string
	Render(param string, ctx *Context) (string, error)
}

type renderFunc struct {
	name string
	fn   func(param string, ctx *Context) (string, error)
}

func (r renderFunc) Name() string { return r.name }

func (r renderFunc) Render(param string, ctx *Context) (string, error) {
	return r.fn(param, ctx)
}

// Func adapts a plain function into a Renderer.
func Func(name string, fn func(param string, ctx *Context) (string, error)) Renderer {
	return renderFunc{name: name, fn: fn}
}
