// Package nft lists the NFTs of a wallet through the Alchemy NFT API and lets
// the user report spam contracts.
//
// Alchemy responses are loosely shaped. They are normalized into NFT at the
// boundary with one null convention: a missing text value is "", a missing
// floor price is nil and a missing OpenSea block is a nil *OpenSea.
package nft

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/theplant/admintools/filter"
)

const (
	TokenIDLength     = 10
	DescriptionLength = 200

	// NotAvailable is displayed for missing values.
	NotAvailable = "N/A"
)

type OpenSea struct {
	FloorPrice            *float64 `json:"floorPrice,omitempty" yaml:"floorPrice,omitempty"`
	CollectionName        string   `json:"collectionName" yaml:"collectionName"`
	SafelistRequestStatus string   `json:"safelistRequestStatus" yaml:"safelistRequestStatus"`
}

type Contract struct {
	Address string   `json:"address" yaml:"address"`
	Name    string   `json:"name" yaml:"name"`
	OpenSea *OpenSea `json:"openSea,omitempty" yaml:"openSea,omitempty"`
}

// NFT is one token owned by a wallet.
type NFT struct {
	TokenID     string   `json:"tokenId" yaml:"tokenId"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	TokenType   string   `json:"tokenType" yaml:"tokenType"`
	Thumbnail   string   `json:"thumbnail" yaml:"thumbnail"`
	Contract    Contract `json:"contract" yaml:"contract"`
}

// Normalize reads one entry of ownedNfts. Entries without a contract address are rejected.
func Normalize(v gjson.Result) (*NFT, error) {
	address := v.Get("contract.address").String()
	if address == "" {
		return nil, errors.New("nft without contract address")
	}

	n := &NFT{
		TokenID:     Truncate(firstString(v, "id.tokenId", "tokenId"), TokenIDLength),
		Title:       firstString(v, "title", "name"),
		Description: Truncate(description(v.Get("description")), DescriptionLength),
		TokenType:   firstString(v, "id.tokenMetadata.tokenType", "contractMetadata.tokenType", "tokenType"),
		Thumbnail:   firstString(v, "media.0.thumbnail", "media.0.gateway"),
		Contract: Contract{
			Address: address,
			Name:    firstString(v, "contractMetadata.name", "contract.name"),
		},
	}

	openSea := v.Get("contractMetadata.openSea")
	if !openSea.Exists() {
		openSea = v.Get("contract.openSea")
	}
	if openSea.IsObject() {
		n.Contract.OpenSea = &OpenSea{
			CollectionName:        openSea.Get("collectionName").String(),
			SafelistRequestStatus: openSea.Get("safelistRequestStatus").String(),
		}
		if fp := openSea.Get("floorPrice"); fp.Type == gjson.Number {
			price := fp.Float()
			n.Contract.OpenSea.FloorPrice = &price
		}
	}
	return n, nil
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := v.Get(p); s.Type == gjson.String && s.Str != "" {
			return s.Str
		}
	}
	return ""
}

// description accepts a string or an array of strings.
func description(v gjson.Result) string {
	if !v.IsArray() {
		if v.Type == gjson.String {
			return v.Str
		}
		return ""
	}
	var parts []string
	for _, p := range v.Array() {
		if p.Type == gjson.String && p.Str != "" {
			parts = append(parts, p.Str)
		}
	}
	return strings.Join(parts, " ")
}

// Truncate keeps the first n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Row is the display form of an NFT.
type Row struct {
	TokenID     string `json:"tokenId" yaml:"tokenId"`
	Title       string `json:"title" yaml:"title"`
	Thumbnail   string `json:"thumbnail" yaml:"thumbnail"`
	Description string `json:"description" yaml:"description"`
	Type        string `json:"type" yaml:"type"`
	Address     string `json:"address" yaml:"address"`
	Name        string `json:"name" yaml:"name"`
	Safelist    string `json:"safelist" yaml:"safelist"`
	FloorPrice  string `json:"floorPrice" yaml:"floorPrice"`
	OpenSea     string `json:"openSea" yaml:"openSea"`
}

func (n *NFT) Row() *Row {
	row := &Row{
		TokenID:     n.TokenID,
		Title:       n.Title,
		Thumbnail:   n.Thumbnail,
		Description: n.Description,
		Type:        n.TokenType,
		Address:     "https://etherscan.io/address/" + n.Contract.Address,
		Name:        orNotAvailable(n.Contract.Name),
		Safelist:    NotAvailable,
		FloorPrice:  NotAvailable,
	}
	if meta := n.Contract.OpenSea; meta != nil {
		row.Safelist = orNotAvailable(meta.SafelistRequestStatus)
		if meta.FloorPrice != nil {
			row.FloorPrice = fmt.Sprintf("%.4f", *meta.FloorPrice)
		}
		if meta.CollectionName != "" {
			row.OpenSea = "https://opensea.io/assets?search[query]=" + url.QueryEscape(meta.CollectionName)
		}
	}
	return row
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func openSea(record any) (*OpenSea, bool) {
	n, ok := record.(*NFT)
	if !ok || n.Contract.OpenSea == nil {
		return nil, false
	}
	return n.Contract.OpenSea, true
}

// Schema declares the filterable fields of a wallet listing.
var Schema = filter.MustSchema("nfts",
	&filter.Field{Name: "token_id", Path: "TokenID", Type: filter.TypeID},
	&filter.Field{Name: "title", Path: "Title", Type: filter.TypeString},
	&filter.Field{Name: "token_type", Path: "TokenType", Type: filter.TypeString},
	&filter.Field{Name: "contract_address", Path: "Contract.Address", Type: filter.TypeString},
	&filter.Field{Name: "contract_name", Path: "Contract.Name", Type: filter.TypeString},
	&filter.Field{Name: "collection_name", Type: filter.TypeString, Accessor: func(record any) (any, bool) {
		meta, ok := openSea(record)
		if !ok || meta.CollectionName == "" {
			return nil, false
		}
		return meta.CollectionName, true
	}},
	&filter.Field{Name: "safelist", Type: filter.TypeString, Accessor: func(record any) (any, bool) {
		meta, ok := openSea(record)
		if !ok || meta.SafelistRequestStatus == "" {
			return nil, false
		}
		return meta.SafelistRequestStatus, true
	}},
	&filter.Field{Name: "floor_price", Type: filter.TypeFloat, Accessor: func(record any) (any, bool) {
		meta, ok := openSea(record)
		if !ok {
			return nil, false
		}
		return meta.FloorPrice, true
	}},
)
