package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Origin is the network behind the worker.
type Origin interface {
	http.Handler
	// Fetch retrieves one asset for pre-caching. Non-2xx answers are errors.
	Fetch(ctx context.Context, assetPath string) (Response, error)
}

// NewOrigin picks an upstream server for http(s) URLs and a local directory
// otherwise.
func NewOrigin(location string, client *http.Client) (Origin, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("shell origin is empty")
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return newUpstream(location, client)
	}

	return newDirectory(location)
}

type upstream struct {
	base   *url.URL
	client *http.Client
	proxy  *httputil.ReverseProxy
}

func newUpstream(location string, client *http.Client) (*upstream, error) {
	base, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse shell origin: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &upstream{
		base:   base,
		client: client,
		proxy:  httputil.NewSingleHostReverseProxy(base),
	}, nil
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.proxy.ServeHTTP(w, r)
}

func (u *upstream) Fetch(ctx context.Context, assetPath string) (Response, error) {
	target := u.base.ResolveReference(&url.URL{Path: strings.TrimSuffix(u.base.Path, "/") + assetPath})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("build request for %q: %w", assetPath, err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("fetch %q: %w", assetPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("fetch %q: unexpected status %d", assetPath, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read %q: %w", assetPath, err)
	}

	return Response{Path: assetPath, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

type directory struct {
	root  string
	files http.Handler
}

func newDirectory(root string) (*directory, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open shell origin: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("shell origin %q is not a directory", root)
	}

	return &directory{root: root, files: http.FileServer(http.Dir(root))}, nil
}

func (d *directory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.files.ServeHTTP(w, r)
}

func (d *directory) Fetch(ctx context.Context, assetPath string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	name := path.Clean("/" + assetPath)
	if strings.HasSuffix(assetPath, "/") {
		name = path.Join(name, "index.html")
	}

	body, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return Response{}, fmt.Errorf("fetch %q: %w", assetPath, err)
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return Response{Path: assetPath, ContentType: contentType, Body: body}, nil
}
