package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/filter/protofilter"
	"github.com/theplant/admintools/nft"
)

func newNFTCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nft",
		Short: "NFT wallet viewer",
	}
	cmd.AddCommand(newNFTListCmd(a), newNFTReportSpamCmd(a))
	return cmd
}

func newNFTListCmd(a *app) *cobra.Command {
	var owner, title, tokenType, extra string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the NFTs owned by a wallet",
		Example: `  admintools nft list --owner 0x1234... --title Moon
  admintools nft list --owner 0x1234... --filter '{"floor_price":{"Gte":0.5}}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := filter.NewRequest(
				filter.StartsWith("title", title),
				filter.Eq("token_type", tokenType),
			)
			if extra != "" {
				more, err := protofilter.ParseJSON([]byte(extra))
				if err != nil {
					return err
				}
				req = req.And(more.Filters...)
			}

			wallet, err := a.nftWallet()
			if err != nil {
				return err
			}
			nfts, err := wallet.List(cmd.Context(), owner, req)
			if err != nil {
				return err
			}

			rows := lo.Map(nfts, func(n *nft.NFT, _ int) *nft.Row { return n.Row() })
			return a.render(cmd.OutOrStdout(), rows, nftHeaders, lo.Map(rows, nftRow))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&owner, "owner", "", "wallet address")
	flags.StringVar(&title, "title", "", "title prefix")
	flags.StringVar(&tokenType, "token-type", "", "token type, e.g. ERC721")
	flags.StringVar(&extra, "filter", "", "additional filters as JSON, keyed by field then operator")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newNFTReportSpamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report-spam CONTRACT",
		Short: "Report a contract as spam and hide its tokens from later listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := a.nftWallet()
			if err != nil {
				return err
			}
			if err := wallet.ReportSpam(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reported %s as spam\n", args[0])
			return err
		},
	}
}

var nftHeaders = []string{"Token ID", "Title", "Description", "Type", "Contract", "Name", "Safelist", "Floor Price", "OpenSea"}

func nftRow(r *nft.Row, _ int) []string {
	return []string{
		r.TokenID,
		r.Title,
		nft.Truncate(r.Description, 40),
		r.Type,
		r.Address,
		r.Name,
		r.Safelist,
		r.FloorPrice,
		r.OpenSea,
	}
}
