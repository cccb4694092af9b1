// Package macro expands `{{Plugin}}` / `{{Plugin[param]}}` tokens embedded in
// content text. The token syntax is a persisted-content format written by end
// users in the source documents, so the grammar here is a compatibility
// contract.
//
// Expansion is a single pass over the original input: tokens are found by an
// explicit delimiter scan, resolved against a registry, and substituted into
// the working output. Handler output is never rescanned. Replacement is by
// literal token text, so repeated identical tokens all receive the output of
// one render; since the parameter is part of the token text, identical tokens
// are identical invocations and the result is deterministic.
package macro

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/calepin/calepin/internal/config"
	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/plugin"
)

var macroLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	macroLogger = l
}

type Expander struct {
	registry *plugin.Registry
}

func NewExpander(registry *plugin.Registry) *Expander {
	return &Expander{registry: registry}
}

// token is one syntactically valid macro occurrence.
type token struct {
	literal string // the full matched text, braces included
	name    string
	param   string
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// scanToken tries to read one token starting at input[start] (which must be
// '{'). It returns the token and the index just past it.
func scanToken(input string, start int) (token, int, bool) {
	i := start + 2 // past "{{"

	nameStart := i
	for i < len(input) && isIdentChar(input[i]) {
		i++
	}
	if i == nameStart {
		return token{}, 0, false
	}
	name := input[nameStart:i]

	param := ""
	if i < len(input) && input[i] == '[' {
		end := strings.IndexByte(input[i+1:], ']')
		if end < 0 {
			return token{}, 0, false
		}
		param = input[i+1 : i+1+end]
		i += end + 2 // past "]"
	}

	if !strings.HasPrefix(input[i:], "}}") {
		return token{}, 0, false
	}
	return token{literal: input[start : i+2], name: name, param: param}, i + 2, true
}

// scan finds the non-overlapping tokens of input, left to right.
func scan(input string) []token {
	var tokens []token
	i := 0
	for {
		open := strings.Index(input[i:], "{{")
		if open < 0 {
			return tokens
		}
		start := i + open

		tok, next, ok := scanToken(input, start)
		if !ok {
			// Advance a single byte: "{{{Name}}" holds a valid token one
			// position further in.
			i = start + 1
			continue
		}
		tokens = append(tokens, tok)
		i = next
	}
}

// Expand returns text with every recognized token replaced by its handler's
// output and every unknown token replaced by an inline warning naming it. A
// handler error leaves that token verbatim and is logged. Text without any
// token comes back unchanged.
func (e *Expander) Expand(text string, ctx *plugin.Context) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	out := text
	seen := make(map[string]bool)
	for _, tok := range scan(text) {
		if seen[tok.literal] {
			continue
		}
		seen[tok.literal] = true

		handler, ok := e.registry.Resolve(tok.name)
		if !ok {
			macroLogger.Warn().Str("plugin", tok.name).Msg("Unknown plugin")
			warning := fmt.Sprintf(`<div class="plugin-warning">⚠️ Unknown plugin: %s</div>`, tok.name)
			out = strings.ReplaceAll(out, tok.literal, warning)
			continue
		}

		rendered, err := handler.Render(tok.param, ctx)
		if err != nil {
			macroLogger.Error().Err(err).Str("plugin", tok.name).Msg("Plugin failed to render")
			continue
		}
		out = strings.ReplaceAll(out, tok.literal, rendered)
	}
	return out
}

// ExpandPost rewrites every text-bearing block of post in place.
func (e *Expander) ExpandPost(post *model.Post, cfg *config.Config) {
	for i := range post.Blocks {
		if post.Blocks[i].Text == "" {
			continue
		}
		ctx := &plugin.Context{
			Source: post.Blocks[i].Text,
			Config: cfg,
			Post:   post,
		}
		post.Blocks[i].Text = e.Expand(post.Blocks[i].Text, ctx)
	}
}
