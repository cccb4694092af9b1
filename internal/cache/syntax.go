package cache

import "html/template"

// Generated syntax stylesheets, keyed by syntax theme name.
var syntaxCache = NewCache[string, template.CSS]()

func GetSyntaxCSS(syntaxTheme string) (template.CSS, bool) {
	return syntaxCache.Get(syntaxTheme)
}

func SetSyntaxCSS(syntaxTheme string, css template.CSS) {
	syntaxCache.Set(syntaxTheme, css)
}
