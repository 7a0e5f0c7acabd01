// Package testutils provides shared test infrastructure: a fake Mastodon
// instance serving an emoji manifest and assets over TLS, and (behind the
// integration build tag) a minio container for bucket tests.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Asset is one emoji served by a fake instance.
type Asset struct {
	Shortcode string
	Category  string
	// Uncategorized publishes the category as JSON null.
	Uncategorized bool
	// File is the final path segment of the static URL, e.g. "blob.png".
	File string
	Data []byte
	// Status, when non-zero, is returned instead of the asset.
	Status int
	// FailFirst makes the first N requests for the asset return 503.
	FailFirst int
	// Delay is applied before responding.
	Delay time.Duration
}

// Instance is a fake instance. Its manifest lives at
// /api/v1/custom_emojis and assets under /system/custom_emojis/.
type Instance struct {
	Server *httptest.Server
	// Host is the bare host:port to pass as the instance name.
	Host string

	mu             sync.Mutex
	assets         []Asset
	byPath         map[string]*Asset
	hits           map[string]int
	manifestStatus int
	manifestBody   string
	inFlight       int
	maxInFlight    int
}

// StartInstance starts a TLS server publishing assets. It is closed when
// the test ends.
func StartInstance(t *testing.T, assets []Asset) *Instance {
	t.Helper()

	inst := &Instance{
		assets: append([]Asset(nil), assets...),
		byPath: make(map[string]*Asset),
		hits:   make(map[string]int),
	}
	for i := range inst.assets {
		inst.byPath[assetPath(inst.assets[i].File)] = &inst.assets[i]
	}

	inst.Server = httptest.NewTLSServer(http.HandlerFunc(inst.serve))
	inst.Host = strings.TrimPrefix(inst.Server.URL, "https://")
	t.Cleanup(inst.Server.Close)

	return inst
}

// Transport returns a round tripper that trusts the server certificate.
func (i *Instance) Transport() http.RoundTripper {
	return i.Server.Client().Transport
}

// AssetURL returns the absolute URL for a file name.
func (i *Instance) AssetURL(file string) string {
	return i.Server.URL + assetPath(file)
}

// SetManifestStatus makes the manifest endpoint fail with code.
func (i *Instance) SetManifestStatus(code int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.manifestStatus = code
}

// SetManifestBody replaces the generated manifest with a raw body.
func (i *Instance) SetManifestBody(body string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.manifestBody = body
}

// Hits returns how many requests reached the asset file, or the manifest
// when file is empty.
func (i *Instance) Hits(file string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	if file == "" {
		return i.hits[manifestPath]
	}
	return i.hits[assetPath(file)]
}

// MaxConcurrent returns the highest number of asset requests served at
// the same time.
func (i *Instance) MaxConcurrent() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.maxInFlight
}

// AssetHits returns the total number of asset requests.
func (i *Instance) AssetHits() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	total := 0
	for path, n := range i.hits {
		if path != manifestPath {
			total += n
		}
	}
	return total
}

const manifestPath = "/api/v1/custom_emojis"

func assetPath(file string) string {
	return "/system/custom_emojis/" + file
}

func (i *Instance) serve(w http.ResponseWriter, r *http.Request) {
	i.mu.Lock()
	i.hits[r.URL.Path]++
	n := i.hits[r.URL.Path]
	i.mu.Unlock()

	if r.URL.Path == manifestPath {
		i.serveManifest(w)
		return
	}

	i.mu.Lock()
	asset, ok := i.byPath[r.URL.Path]
	i.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	i.mu.Lock()
	i.inFlight++
	i.maxInFlight = max(i.maxInFlight, i.inFlight)
	i.mu.Unlock()
	defer func() {
		i.mu.Lock()
		i.inFlight--
		i.mu.Unlock()
	}()

	if asset.Delay > 0 {
		select {
		case <-time.After(asset.Delay):
		case <-r.Context().Done():
			return
		}
	}

	switch {
	case asset.Status != 0:
		w.WriteHeader(asset.Status)
	case n <= asset.FailFirst:
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(asset.Data)
	}
}

func (i *Instance) serveManifest(w http.ResponseWriter) {
	i.mu.Lock()
	status, body := i.manifestStatus, i.manifestBody
	i.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if body != "" {
		fmt.Fprint(w, body)
		return
	}

	entries := make([]map[string]any, 0, len(i.assets))
	for _, a := range i.assets {
		var category any = a.Category
		if a.Uncategorized {
			category = nil
		}
		entries = append(entries, map[string]any{
			"shortcode":         a.Shortcode,
			"url":               i.AssetURL(a.File),
			"static_url":        i.AssetURL(a.File),
			"visible_in_picker": true,
			"category":          category,
		})
	}
	json.NewEncoder(w).Encode(entries)
}
