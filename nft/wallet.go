package nft

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/filter/memfilter"
	"github.com/theplant/admintools/query"
)

// SpamRegistry is the set of contracts reported as spam. It is safe for concurrent use.
type SpamRegistry struct {
	mu        sync.RWMutex
	contracts map[string]struct{}
	path      string
}

// NewSpamRegistry returns a registry kept in memory only.
func NewSpamRegistry() *SpamRegistry {
	return &SpamRegistry{contracts: map[string]struct{}{}}
}

// OpenSpamRegistry loads the registry stored as a JSON array at path.
// A missing file is an empty registry. An empty path is NewSpamRegistry.
func OpenSpamRegistry(path string) (*SpamRegistry, error) {
	r := NewSpamRegistry()
	r.path = path
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, errors.Wrap(err, "read spam registry")
	}
	var contracts []string
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &contracts); err != nil {
		return nil, errors.Wrapf(err, "parse spam registry %s", path)
	}
	for _, c := range contracts {
		r.Add(c)
	}
	return r, nil
}

// Save writes the registry to the file it was opened from.
func (r *SpamRegistry) Save() error {
	if r.path == "" {
		return nil
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r.List(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal spam registry")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrap(err, "create spam registry dir")
	}
	return errors.Wrap(os.WriteFile(r.path, data, 0o600), "write spam registry")
}

func (r *SpamRegistry) Add(contract string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[strings.ToLower(contract)] = struct{}{}
}

func (r *SpamRegistry) Contains(contract string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contracts[strings.ToLower(contract)]
	return ok
}

// List returns the reported contracts, lower cased and sorted.
func (r *SpamRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contracts := lo.Keys(r.contracts)
	sort.Strings(contracts)
	return contracts
}

// Source is the NFT API used by a Wallet.
type Source interface {
	OwnedNFTs(ctx context.Context, owner string) ([]*NFT, error)
	ReportSpam(ctx context.Context, contract string) error
}

var _ Source = (*Client)(nil)

// Wallet lists owned NFTs without the contracts reported as spam.
type Wallet struct {
	source Source
	spam   *SpamRegistry
	hooks  []func(next query.Querier[*NFT]) query.Querier[*NFT]
}

func NewWallet(source Source, spam *SpamRegistry, hooks ...func(next query.Querier[*NFT]) query.Querier[*NFT]) *Wallet {
	if spam == nil {
		spam = NewSpamRegistry()
	}
	return &Wallet{source: source, spam: spam, hooks: hooks}
}

func (w *Wallet) Spam() *SpamRegistry {
	return w.spam
}

// List returns the NFTs of owner matching req, in API order.
// An invalid req fails before the API is called.
func (w *Wallet) List(ctx context.Context, owner string, req *filter.Request) ([]*NFT, error) {
	fetcher := query.FetcherFunc[*NFT](func(ctx context.Context, pred *filter.Compiled) ([]*NFT, error) {
		owned, err := w.source.OwnedNFTs(ctx, owner)
		if err != nil {
			return nil, err
		}
		visible := lo.Filter(owned, func(n *NFT, _ int) bool {
			return !w.spam.Contains(n.Contract.Address)
		})
		return memfilter.Filter(visible, pred)
	})
	return query.New[*NFT](Schema, fetcher, w.hooks...).Query(ctx, req)
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ReportSpam reports contract and hides it from later listings, saving the registry.
func (w *Wallet) ReportSpam(ctx context.Context, contract string) error {
	if !addressPattern.MatchString(contract) {
		return errors.Errorf("invalid contract address %q", contract)
	}
	if err := w.source.ReportSpam(ctx, contract); err != nil {
		return errors.Wrap(err, "report spam")
	}
	w.spam.Add(contract)
	return w.spam.Save()
}
