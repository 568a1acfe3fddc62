package nft_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/nft"
)

const owner = "0x84A3e86beF9f31472453688bEf6d7f9b48e382a3"

type fakeAlchemy struct {
	t        *testing.T
	mu       sync.Mutex
	calls    int
	reported []string
	pages    map[string]string
}

func newFakeAlchemy(t *testing.T) *fakeAlchemy {
	first := ownedNFT(t, map[string]any{
		"contract.address":                    moonbirds,
		"title":                               "Oddity #1",
		"contractMetadata.name":               "Moonbirds Oddities",
		"contractMetadata.openSea.floorPrice": 1.1,
	})
	second := ownedNFT(t, map[string]any{
		"contract.address": pellets,
		"title":            "Pellet #2",
		"contractMetadata.openSea.collectionName": "Pellets",
	})
	third := ownedNFT(t, map[string]any{
		"contract.address": nameless,
		"title":            "Oddity #3",
	})

	page := func(pageKey string, entries ...string) string {
		doc := `{"ownedNfts":[]}`
		var err error
		for _, e := range entries {
			doc, err = sjson.SetRaw(doc, "ownedNfts.-1", e)
			require.NoError(t, err)
		}
		if pageKey != "" {
			doc, err = sjson.Set(doc, "pageKey", pageKey)
			require.NoError(t, err)
		}
		return doc
	}

	return &fakeAlchemy{
		t: t,
		pages: map[string]string{
			"":   page("p2", first, second),
			"p2": page("", third),
		},
	}
}

func (f *fakeAlchemy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	q := r.URL.Query()
	switch r.URL.Path {
	case "/nft/v2/test-key/getNFTs":
		if q.Get("owner") != owner {
			http.Error(w, `{"error":"unknown owner"}`, http.StatusBadRequest)
			return
		}
		assert.Equal(f.t, []string{"SPAM"}, q["excludeFilters[]"])
		body, ok := f.pages[q.Get("pageKey")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	case "/nft/v2/test-key/reportSpam":
		f.reported = append(f.reported, q.Get("address"))
		_, _ = w.Write([]byte(`"Added to queue"`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAlchemy) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newClient(t *testing.T, fake *fakeAlchemy) *nft.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := nft.NewClient("test-key", nft.WithBaseURL(srv.URL+"/"), nft.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func titles(nfts []*nft.NFT) []string {
	return lo.Map(nfts, func(n *nft.NFT, _ int) string { return n.Title })
}

func TestClient(t *testing.T) {
	_, err := nft.NewClient("")
	require.ErrorContains(t, err, "api key is required")

	fake := newFakeAlchemy(t)
	c := newClient(t, fake)
	ctx := context.Background()

	nfts, err := c.OwnedNFTs(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, []string{"Oddity #1", "Pellet #2", "Oddity #3"}, titles(nfts))
	require.Equal(t, 2, fake.Calls())

	_, err = c.OwnedNFTs(ctx, "0xbad")
	require.ErrorContains(t, err, "getNFTs: status 400")

	_, err = c.OwnedNFTs(ctx, "")
	require.ErrorContains(t, err, "owner is required")

	require.NoError(t, c.ReportSpam(ctx, pellets))
	require.Equal(t, []string{pellets}, fake.reported)
}

func TestWallet(t *testing.T) {
	fake := newFakeAlchemy(t)
	w := nft.NewWallet(newClient(t, fake), nil)
	ctx := context.Background()

	list := func(req *filter.Request) []string {
		t.Helper()
		nfts, err := w.List(ctx, owner, req)
		require.NoError(t, err)
		return titles(nfts)
	}

	require.Equal(t, []string{"Oddity #1", "Pellet #2", "Oddity #3"}, list(nil))
	require.Equal(t, []string{"Oddity #1", "Oddity #3"}, list(filter.NewRequest(filter.StartsWith("title", "Oddity"))))
	require.Equal(t, []string{}, list(filter.NewRequest(filter.StartsWith("title", "oddity"))))
	require.Equal(t, []string{"Oddity #1"}, list(filter.NewRequest(filter.Gte("floor_price", 1))))
	require.Equal(t, []string{"Pellet #2"}, list(filter.NewRequest(filter.Eq("collection_name", "Pellets"))))
	require.Equal(t, []string{"Oddity #1"}, list(filter.NewRequest(filter.Eq("contract_address", moonbirds))))

	calls := fake.Calls()
	_, err := w.List(ctx, owner, filter.NewRequest(filter.StartsWith("floor_price", "1")))
	require.True(t, filter.IsInvalidFilter(err))
	require.Equal(t, calls, fake.Calls())

	_, err = w.List(ctx, "0xbad", nil)
	require.True(t, filter.IsQueryExecution(err))

	require.ErrorContains(t, w.ReportSpam(ctx, "not-an-address"), "invalid contract address")
	require.NoError(t, w.ReportSpam(ctx, pellets))
	require.True(t, w.Spam().Contains(pellets))
	require.Equal(t, []string{"Oddity #1", "Oddity #3"}, list(nil))
}

func TestSpamRegistry(t *testing.T) {
	r := nft.NewSpamRegistry()
	var wg sync.WaitGroup
	for _, c := range []string{moonbirds, pellets, "0xABCDEF"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(c)
		}()
	}
	wg.Wait()

	require.True(t, r.Contains("0xabcdef"))
	require.False(t, r.Contains(nameless))
	require.Equal(t, []string{moonbirds, pellets, "0xabcdef"}, r.List())
}

func TestSpamRegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admintools", "spam.json")
	ctx := context.Background()
	fake := newFakeAlchemy(t)
	client := newClient(t, fake)

	spam, err := nft.OpenSpamRegistry(path)
	require.NoError(t, err)
	require.Empty(t, spam.List())

	w := nft.NewWallet(client, spam)
	require.NoError(t, w.ReportSpam(ctx, pellets))

	reopened, err := nft.OpenSpamRegistry(path)
	require.NoError(t, err)
	require.Equal(t, []string{pellets}, reopened.List())

	nfts, err := nft.NewWallet(client, reopened).List(ctx, owner, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Oddity #1", "Oddity #3"}, titles(nfts))

	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"}`), 0o600))
	_, err = nft.OpenSpamRegistry(path)
	require.ErrorContains(t, err, "parse spam registry")

	memOnly, err := nft.OpenSpamRegistry("")
	require.NoError(t, err)
	require.NoError(t, memOnly.Save())
}
