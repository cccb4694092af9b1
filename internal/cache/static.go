package cache

// Content hashes for embedded static files, used as ETags. Keyed by URL path.
var staticCache = NewCache[string, string]()

func GetStaticHash(urlPath string) (string, bool) {
	return staticCache.Get(urlPath)
}

func SetStaticHash(urlPath, hash string) {
	staticCache.Set(urlPath, hash)
}
