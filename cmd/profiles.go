package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/usercache"
)

var profileLimit int

func init() {
	ProfilesCmd.Flags().IntVarP(&profileLimit, "limit", "n", 50, "How many profiles to show, 0 for all")
}

var ProfilesCmd = &cobra.Command{
	Use:   "profiles [name]",
	Short: "List the players in the usercache",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cache, err := usercache.Open(cfg.UserCache.Path)
		if err != nil {
			return err
		}
		defer cache.Close()

		ctx := context.Background()
		var entries []*usercache.Entry
		if len(args) == 1 {
			e, err := cache.ByName(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			entries = append(entries, e)
		} else if entries, err = cache.List(ctx, profileLimit); err != nil {
			return err
		}

		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"Name", "UUID", "Skin", "Last seen"})
		tw.SetBorder(true)
		tw.SetAutoWrapText(false)

		for _, e := range entries {
			skin := "-"
			if textures, err := e.Profile.Textures(); err == nil {
				if t, ok := textures["SKIN"]; ok {
					skin = t.Hash()
				}
			}
			tw.Append([]string{
				e.Profile.Name,
				codec.FormatUUID(e.Profile.ID, true),
				skin,
				e.LastSeen.Format("2006-01-02 15:04:05"),
			})
		}
		tw.Render()

		fmt.Printf("%d profile(s)\n", len(entries))
		return nil
	},
}
