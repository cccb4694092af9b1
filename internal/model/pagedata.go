package model

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/calepin/calepin/internal/config"
	"github.com/calepin/calepin/internal/theme"
)

type PageData struct {
	SiteName string
	Tagline  string

	PageURL string

	Theme     string
	ThemeIcon template.HTML

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string
}

func NewPageData(r *http.Request) *PageData {
	syntaxTheme := theme.GetSyntaxThemeFromRequest(r)
	currentTheme := theme.GetThemeFromRequest(r)
	pd := &PageData{
		PageURL:      r.URL.Path,
		Theme:        currentTheme,
		ThemeIcon:    template.HTML(theme.GetThemeIcon(currentTheme)),
		SyntaxTheme:  syntaxTheme,
		SyntaxThemes: theme.GetSyntaxThemes(),
		SyntaxCSS:    theme.GenerateSyntaxCSS(syntaxTheme),
	}
	if config.AppConfig != nil {
		pd.SiteName = config.AppConfig.Site.Name
		pd.Tagline = config.AppConfig.Site.Tagline
	}
	return pd
}

func (pd *PageData) IsPost() bool {
	if config.AppConfig == nil {
		return false
	}
	return strings.HasPrefix(pd.PageURL, config.AppConfig.Content.RouteBasePath+"/")
}
