package plugin

import (
	"fmt"
	"net/url"
	"strings"
)

// Builtins returns fresh instances of every built-in handler.
func Builtins() []Renderer {
	return []Renderer{
		Func("CodePen", renderCodePen),
		Func("Tweet", renderTweet),
		Func("YouTube", renderYouTube),
		Func("Gallery", renderGallery),
		Func("CommentSection", renderCommentSection),
		Func("TableOfContents", renderTableOfContents),
		Func("ReadingTime", renderReadingTime),
		Func("Share", renderShare),
	}
}

func renderCodePen(param string, _ *Context) (string, error) {
	return fmt.Sprintf(`<iframe height="300" style="width: 100%%;" scrolling="no" title="CodePen Embed" src="https://codepen.io/embed/%s?height=300&theme-id=dark&default-tab=result" frameborder="no" loading="lazy" allowtransparency="true" allowfullscreen="true"></iframe>`, param), nil
}

func renderTweet(param string, _ *Context) (string, error) {
	return fmt.Sprintf(`<div class="tweet-embed" data-tweet-id="%s"><blockquote class="twitter-tweet"><a href="https://twitter.com/twitter/status/%s"></a></blockquote></div>`, param, param), nil
}

func renderYouTube(param string, _ *Context) (string, error) {
	return fmt.Sprintf(`<div class="video-embed"><iframe src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe></div>`, param), nil
}

func renderGallery(param string, _ *Context) (string, error) {
	return fmt.Sprintf(`<div class="image-gallery" data-folder="%s"><p>Image Gallery: %s</p></div>`, param, param), nil
}

func renderCommentSection(param string, _ *Context) (string, error) {
	// The parameter is opaque configuration for whatever comment system the
	// site wires up client-side.
	return fmt.Sprintf(`<div class="comment-section" data-config="%s"><h3>Comments</h3><div id="comments-container"></div></div>`, param), nil
}

func renderTableOfContents(_ string, ctx *Context) (string, error) {
	headings := ctx.Post.Headings()
	if len(headings) == 0 {
		return `<div class="toc-empty">No headings found for table of contents</div>`, nil
	}

	var items strings.Builder
	for i, h := range headings {
		// Anchor ids are synthetic, assigned by position in the heading list.
		fmt.Fprintf(&items, `<li class="toc-level-%d"><a href="#heading-%d">%s</a></li>`,
			h.Kind.HeadingLevel(), i, h.Text)
	}

	return fmt.Sprintf(`<div class="table-of-contents"><h4>Table of Contents</h4><ul class="toc-list">%s</ul></div>`, items.String()), nil
}

const wordsPerMinute = 200

func renderReadingTime(_ string, ctx *Context) (string, error) {
	var texts []string
	for _, b := range ctx.Post.Blocks {
		if b.Text != "" {
			texts = append(texts, b.Text)
		}
	}

	wordCount := len(strings.Fields(strings.Join(texts, " ")))
	minutes := (wordCount + wordsPerMinute - 1) / wordsPerMinute

	return fmt.Sprintf(`<div class="reading-time"><span class="reading-time-icon">&#128214;</span><span>%d min read</span></div>`, minutes), nil
}

var defaultSharePlatforms = []string{"twitter", "linkedin", "facebook"}

func renderShare(param string, ctx *Context) (string, error) {
	platforms := defaultSharePlatforms
	if param != "" {
		platforms = strings.Split(param, ",")
	}

	basePath := "/blog"
	if ctx.Config != nil && ctx.Config.Content.RouteBasePath != "" {
		basePath = ctx.Config.Content.RouteBasePath
	}
	title := url.QueryEscape(ctx.Post.Title)
	postURL := url.QueryEscape(basePath + "/" + ctx.Post.Slug)

	var buttons strings.Builder
	for _, platform := range platforms {
		switch strings.TrimSpace(platform) {
		case "twitter":
			fmt.Fprintf(&buttons, `<a href="https://twitter.com/intent/tweet?text=%s&url=%s" target="_blank" class="share-button twitter">Twitter</a>`, title, postURL)
		case "linkedin":
			fmt.Fprintf(&buttons, `<a href="https://www.linkedin.com/sharing/share-offsite/?url=%s" target="_blank" class="share-button linkedin">LinkedIn</a>`, postURL)
		case "facebook":
			fmt.Fprintf(&buttons, `<a href="https://www.facebook.com/sharer/sharer.php?u=%s" target="_blank" class="share-button facebook">Facebook</a>`, postURL)
		default:
			// Unrecognized platforms contribute nothing.
		}
	}

	return fmt.Sprintf(`<div class="share-section"><h4>Share this post</h4><div class="share-buttons">%s</div></div>`, buttons.String()), nil
}
