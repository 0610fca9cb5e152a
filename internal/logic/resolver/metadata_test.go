package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffChainFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good.json":
			w.Write([]byte(`{"name":"Degen Ape #42","image":"https://img.test/42.png","attributes":[{"trait_type":"fur","value":"gold"}]}`))
		case "/bad.json":
			w.Write([]byte(`{not json`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	fetcher := NewHTTPOffChainFetcher(nil)
	ctx := context.Background()

	md := fetcher.Fetch(ctx, server.URL+"/good.json")
	require.NotNil(t, md)
	assert.Equal(t, "Degen Ape #42", md.Name)
	assert.Equal(t, "https://img.test/42.png", md.Image)
	require.Len(t, md.Attributes, 1)
	assert.Equal(t, "fur", md.Attributes[0].TraitType)

	// 解析失败 / 404 / 空 URI 均静默返回 nil
	assert.Nil(t, fetcher.Fetch(ctx, server.URL+"/bad.json"))
	assert.Nil(t, fetcher.Fetch(ctx, server.URL+"/missing.json"))
	assert.Nil(t, fetcher.Fetch(ctx, ""))
}
