package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/calepin/calepin/internal/assets"
	"github.com/calepin/calepin/internal/cache"
	"github.com/calepin/calepin/internal/config"
	"github.com/calepin/calepin/internal/db"
	"github.com/calepin/calepin/internal/logger"
	"github.com/calepin/calepin/internal/macro"
	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/normalize"
	"github.com/calepin/calepin/internal/notion"
	"github.com/calepin/calepin/internal/plugin"
	"github.com/calepin/calepin/internal/render"
	"github.com/calepin/calepin/internal/repository"
	"github.com/calepin/calepin/internal/routes"
	"github.com/calepin/calepin/internal/sse"
	"github.com/calepin/calepin/internal/theme"
	"github.com/calepin/calepin/internal/util"
)

//go:embed static/* templates/*
var content embed.FS

var l zerolog.Logger

var clients = sse.NewSSEClients()

var postRepository repository.PostRepository

var postsBasePath = "/blog"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	configPath := os.Getenv("CALEPIN_CONFIG")
	if configPath == "" {
		configPath = "calepin.yaml"
	}

	l = logger.New("info")
	config.SetLogger(l)
	if err := config.LoadConfig(configPath); err != nil {
		l.Fatal().Err(err).Msg("Error loading config")
	}
	cfg := config.AppConfig

	l = logger.New(cfg.Logging.Level)
	setLoggers(l)

	token := os.Getenv(cfg.Source.TokenEnv)
	databaseID := os.Getenv(cfg.Source.DatabaseIDEnv)
	if token == "" || databaseID == "" {
		l.Fatal().
			Str("token_env", cfg.Source.TokenEnv).
			Str("database_id_env", cfg.Source.DatabaseIDEnv).
			Msg("Source token and database id are required")
	}

	client := notion.NewClient(token, databaseID)
	notionRepo := repository.NewNotionPostRepository(client, cfg)

	if cfg.Assets.Mirror.Enabled {
		mirror, err := assets.NewMirror(context.Background(), cfg.Assets.Mirror,
			os.Getenv(cfg.Assets.Mirror.AccessKeyEnv), os.Getenv(cfg.Assets.Mirror.SecretKeyEnv))
		if err != nil {
			l.Error().Err(err).Msg("Error initializing image mirror, continuing without it")
		} else {
			notionRepo.SetMirror(mirror)
		}
	}

	postRepository = notionRepo
	if cfg.Caching.Enabled {
		database := db.NewSQLite(cfg.Caching.Path)
		if err := database.InitDB(); err != nil {
			l.Fatal().Err(err).Msg("Error initializing post cache")
		}

		caching := repository.NewCachingPostRepository(notionRepo, database, time.Duration(cfg.Caching.TTL)*time.Second)
		caching.SetReloadNotifier(handleReloadPost)
		go caching.StartRefreshLoop(context.Background())

		postRepository = caching
	}

	postsBasePath = strings.TrimSuffix(cfg.Content.RouteBasePath, "/")

	// Calculate the hash of static content
	static, _ := fs.Sub(content, config.StaticLocalDir)
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if !d.IsDir() {
			data, err := fs.ReadFile(static, path)
			if err != nil {
				return err
			}
			cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash(data))
		}
		return nil
	})

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})

	mux.HandleFunc(routes.ThemeOppositeIcon, func(w http.ResponseWriter, r *http.Request) {
		currTheme := r.URL.Query().Get("theme")
		if currTheme == "" {
			http.Error(w, "theme required", http.StatusBadRequest)
			return
		}

		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(theme.GetThemeIcon(currTheme)))
	})

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.HandleFunc(postsBasePath+"/", servePost)
	mux.HandleFunc(routes.ThemeToggle, serveThemePostToggle)
	mux.HandleFunc(routes.SyntaxThemeSet, serveSyntaxThemePostSet)
	mux.HandleFunc(routes.SyntaxThemeGet, serveSyntaxThemeGetTheme)
	mux.HandleFunc(routes.PluginsPath, servePlugins)
	mux.HandleFunc(routes.SSEPath, eventsHandler)
	mux.HandleFunc(routes.RootPath, serveIndex)

	handler := withRequestID(secureHeaders(mux.ServeHTTP))

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	l.Info().Str("addr", addr).Msg("Listening")
	l.Fatal().Err(http.ListenAndServe(addr, cacheIt(gzipIt(handler)))).Msg("Server stopped")
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	db.SetLogger(l)
	repository.SetLogger(l)
	normalize.SetLogger(l)
	plugin.SetLogger(l)
	macro.SetLogger(l)
	render.SetLogger(l)
	assets.SetLogger(l)
}

func handleReloadPost(slug string) {
	go clients.Broadcast(slug, "reload")
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.gz.Write(b)
}

func gzipIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// SSE responses must flush per event and stay uncompressed.
		if r.URL.Path == routes.SSEPath || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			h(w, r)
			return
		}

		w.Header().Set(config.HContentEncoding, "gzip")
		w.Header().Add("Vary", "Accept-Encoding")

		gz := gzip.NewWriter(w)
		defer gz.Close()

		h(gzipResponseWriter{ResponseWriter: w, gz: gz}, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}

func withRequestID(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(config.HRequestID, id)
		l.Debug().Str("request_id", id).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request")

		h(w, r)
	}
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := postRepository.ListPublished(r.Context())
	if err != nil {
		l.Error().Err(err).Msg("Error listing published posts")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	tmpl, err := template.ParseFS(content, config.TemplatesLocalDir+"/"+config.TemplateLayout, config.TemplatesLocalDir+"/"+config.TemplateIndex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		*model.PageData
		PostsPath string
		Posts     []model.PostSummary
	}{
		PageData:  model.NewPageData(r),
		PostsPath: postsBasePath,
		Posts:     posts,
	}

	w.Header().Set(config.HETag, util.ContentHash([]byte(data.Theme+data.SyntaxTheme)))

	err = tmpl.ExecuteTemplate(w, config.TemplateLayout, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func servePost(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, postsBasePath+"/")
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	post, err := postRepository.GetBySlug(r.Context(), slug)
	if errors.Is(err, repository.ErrNotFound) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		l.Error().Err(err).Str("slug", slug).Msg("Error fetching post")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	md := render.BlocksToMarkdown(post.Blocks)
	htmlContent := render.RenderBlocksCached(post.Blocks, util.ContentHash(md), theme.GetSyntaxThemeFromRequest(r))

	data := struct {
		*model.PageData
		Post    *model.Post
		Content template.HTML
	}{
		PageData: model.NewPageData(r),
		Post:     post,
		Content:  template.HTML(htmlContent),
	}

	tmpl, err := template.ParseFS(content, config.TemplatesLocalDir+"/"+config.TemplateLayout, config.TemplatesLocalDir+"/"+config.TemplatePost)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = tmpl.ExecuteTemplate(w, config.TemplateLayout, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func servePlugins(w http.ResponseWriter, r *http.Request) {
	names := postRepository.AvailablePlugins()
	sort.Strings(names)

	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(names)
}

func serveThemePostToggle(w http.ResponseWriter, r *http.Request) {
	currentTheme := theme.GetThemeFromRequest(r)

	newTheme := config.DefaultTheme
	if currentTheme == config.DarkTheme {
		newTheme = config.LightTheme
	}

	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: newTheme,
		Path:  "/",
	})

	syntaxTheme := theme.GetDefaultSyntaxTheme(newTheme)
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil {
		syntaxTheme = cookie.Value
	}

	w.Header().Set("Hx-Trigger", fmt.Sprintf(`{"themeChanged":{"value":"%s","syntaxTheme":"%s"}}`, newTheme, syntaxTheme))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}

func serveSyntaxThemePostSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.FormValue("syntax-theme-select")
	if currTheme == "" {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    currTheme,
		Path:     "/",
		HttpOnly: true,
	})

	themeStyle := []byte(theme.GenerateSyntaxCSS(currTheme))
	w.WriteHeader(http.StatusOK)
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.Write(themeStyle)
}

func serveSyntaxThemeGetTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.PathValue("theme")

	themeStyle := []byte(theme.GenerateSyntaxCSS(currTheme))
	w.WriteHeader(http.StatusOK)
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.Write(themeStyle)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("post")
	if slug == "" {
		http.Error(w, "Post parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := sse.NewClient(slug)
	clients.Add(client)

	l.Info().Str("client_id", client.ID).Str("slug", slug).Msg("New SSE client connected")

	defer func() {
		clients.Delete(client)
		l.Info().Str("client_id", client.ID).Msg("SSE client disconnected")
	}()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}
