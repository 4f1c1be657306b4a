package custom

// Scripts reach sites behind bot protection through the http_tls module, which
// sends requests with the browser TLS fingerprint of network.Impersonating.
//
//	http_tls.get(url)              -> body
//	http_tls.get(url, headers)     -> body
//	http_tls.request(options)      -> {status, body}
//
// options: {url, method?, headers?, body?, cache?}. Cached responses are kept
// only for status 200.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anisan-cli/anifeed/internal/cache"
	"github.com/anisan-cli/anifeed/network"
	lua "github.com/yuin/gopher-lua"
)

const maxScriptBody = 16 << 20

func registerTLSClient(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(httpTLSGet))
	L.SetField(mod, "request", L.NewFunction(httpTLSRequest))
	L.SetGlobal("http_tls", mod)
}

func httpTLSGet(L *lua.LState) int {
	url := L.CheckString(1)
	headers := tableToHeaders(L.OptTable(2, nil))

	body, _, err := doTLSRequest(luaContext(L), http.MethodGet, url, headers, "")
	if err != nil {
		L.RaiseError("http_tls.get failed: %s", err.Error())
		return 0
	}

	L.Push(lua.LString(body))
	return 1
}

type tlsCacheEntry struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func httpTLSRequest(L *lua.LState) int {
	opts := L.CheckTable(1)

	method := getStringField(opts, "method", http.MethodGet)
	url := getStringField(opts, "url", "")
	reqBody := getStringField(opts, "body", "")

	if url == "" {
		L.RaiseError("http_tls.request: url is required")
		return 0
	}

	shouldCache := lua.LVAsBool(opts.RawGetString("cache"))

	var headers map[string]string
	if tbl, ok := opts.RawGetString("headers").(*lua.LTable); ok {
		headers = tableToHeaders(tbl)
	}

	cacheKey := cache.GenerateKey(url, reqBody, method, "http_tls")
	if shouldCache {
		var entry tlsCacheEntry
		if cache.Read(cacheKey, &entry) {
			L.Push(responseTable(L, entry.Status, entry.Body))
			return 1
		}
	}

	body, status, err := doTLSRequest(luaContext(L), method, url, headers, reqBody)
	if err != nil {
		L.RaiseError("http_tls.request failed: %s", err.Error())
		return 0
	}

	if shouldCache && status == http.StatusOK {
		_ = cache.Write(cacheKey, tlsCacheEntry{Status: status, Body: body})
	}

	L.Push(responseTable(L, status, body))
	return 1
}

func responseTable(L *lua.LState, status int, body string) *lua.LTable {
	result := L.NewTable()
	L.SetField(result, "status", lua.LNumber(status))
	L.SetField(result, "body", lua.LString(body))
	return result
}

func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func tableToHeaders(tbl *lua.LTable) map[string]string {
	headers := make(map[string]string)
	if tbl == nil {
		return headers
	}

	tbl.ForEach(func(k, v lua.LValue) {
		headers[k.String()] = v.String()
	})
	return headers
}

func getStringField(tbl *lua.LTable, key string, def string) string {
	val := tbl.RawGetString(key)
	if val == lua.LNil {
		return def
	}
	return val.String()
}

func doTLSRequest(ctx context.Context, method, rawURL string, headers map[string]string, body string) (string, int, error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", network.BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := network.Impersonating().Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBody))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	return string(data), resp.StatusCode, nil
}
