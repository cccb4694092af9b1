package cache

// RenderedContent is cached rendered HTML for one post body under one syntax
// theme.
type RenderedContent struct {
	HTML []byte
}

var renderedCache = NewCache[string, *RenderedContent]()

func GetRenderedHTML(contentHash, syntaxTheme string) (*RenderedContent, bool) {
	return renderedCache.Get(contentHash + ":" + syntaxTheme)
}

func SetRenderedHTML(contentHash, syntaxTheme string, html []byte) {
	renderedCache.Set(contentHash+":"+syntaxTheme, &RenderedContent{HTML: html})
}

func ClearRenderedHTMLCache() {
	renderedCache.Clear()
}
