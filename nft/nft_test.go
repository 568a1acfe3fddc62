package nft_test

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/theplant/admintools/nft"
)

const (
	moonbirds = "0x1792a96e5668ad7c167ab804a100ce42395ce54d"
	pellets   = "0x2792a96e5668ad7c167ab804a100ce42395ce54d"
	nameless  = "0x3792a96e5668ad7c167ab804a100ce42395ce54d"
)

// ownedNFT builds one ownedNfts entry of a getNFTs response.
func ownedNFT(t *testing.T, values map[string]any) string {
	t.Helper()
	doc := "{}"
	for _, path := range lo.Keys(values) {
		var err error
		doc, err = sjson.Set(doc, path, values[path])
		require.NoError(t, err)
	}
	return doc
}

func TestNormalize(t *testing.T) {
	long := strings.Repeat("é", 250)

	tests := []struct {
		name       string
		values     map[string]any
		want       *nft.NFT
		wantErrMsg string
	}{
		{
			name: "complete entry",
			values: map[string]any{
				"contract.address":                    moonbirds,
				"id.tokenId":                          "0x00000000000000000000000000000000000000000000000000000000000024da",
				"id.tokenMetadata.tokenType":          "ERC721",
				"title":                               "#9338",
				"description":                         "Moonbird pellet",
				"media":                               []map[string]any{{"thumbnail": "https://img/thumb.png", "gateway": "https://img/full.png"}},
				"contractMetadata.name":               "Moonbirds Oddities",
				"contractMetadata.openSea.floorPrice": 1.1,
				"contractMetadata.openSea.collectionName":        "Moonbirds Oddities",
				"contractMetadata.openSea.safelistRequestStatus": "verified",
			},
			want: &nft.NFT{
				TokenID:     "0x00000000",
				Title:       "#9338",
				Description: "Moonbird pellet",
				TokenType:   "ERC721",
				Thumbnail:   "https://img/thumb.png",
				Contract: nft.Contract{
					Address: moonbirds,
					Name:    "Moonbirds Oddities",
					OpenSea: &nft.OpenSea{
						FloorPrice:            lo.ToPtr(1.1),
						CollectionName:        "Moonbirds Oddities",
						SafelistRequestStatus: "verified",
					},
				},
			},
		},
		{
			name: "missing optional fields",
			values: map[string]any{
				"contract.address": nameless,
				"description":      []string{"first", "", "second"},
				"media":            []map[string]any{{"gateway": "https://img/full.png"}},
			},
			want: &nft.NFT{
				Description: "first second",
				Thumbnail:   "https://img/full.png",
				Contract:    nft.Contract{Address: nameless},
			},
		},
		{
			name: "openSea without floor price",
			values: map[string]any{
				"contract.address": pellets,
				"description":      long,
				"contractMetadata.openSea.collectionName": "Pellets",
				"contractMetadata.openSea.floorPrice":     nil,
			},
			want: &nft.NFT{
				Description: strings.Repeat("é", nft.DescriptionLength),
				Contract: nft.Contract{
					Address: pellets,
					OpenSea: &nft.OpenSea{CollectionName: "Pellets"},
				},
			},
		},
		{
			name:       "missing contract address",
			values:     map[string]any{"title": "orphan"},
			wantErrMsg: "nft without contract address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nft.Normalize(gjson.Parse(ownedNFT(t, tt.values)))
			if tt.wantErrMsg != "" {
				require.ErrorContains(t, err, tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", nft.Truncate("abc", 3))
	require.Equal(t, "ab", nft.Truncate("abc", 2))
	require.Equal(t, "", nft.Truncate("", 2))
	require.Equal(t, "שלו", nft.Truncate("שלום", 3))
}

func TestRow(t *testing.T) {
	n := &nft.NFT{
		TokenID: "0x00000000",
		Title:   "#9338",
		Contract: nft.Contract{
			Address: moonbirds,
			OpenSea: &nft.OpenSea{
				FloorPrice:     lo.ToPtr(1.1),
				CollectionName: "Moonbirds Oddities",
			},
		},
	}
	require.Equal(t, &nft.Row{
		TokenID:    "0x00000000",
		Title:      "#9338",
		Address:    "https://etherscan.io/address/" + moonbirds,
		Name:       nft.NotAvailable,
		Safelist:   nft.NotAvailable,
		FloorPrice: "1.1000",
		OpenSea:    "https://opensea.io/assets?search[query]=Moonbirds+Oddities",
	}, n.Row())

	bare := &nft.NFT{Contract: nft.Contract{Address: nameless, Name: "Nameless"}}
	row := bare.Row()
	require.Equal(t, "Nameless", row.Name)
	require.Equal(t, nft.NotAvailable, row.FloorPrice)
	require.Empty(t, row.OpenSea)
}
