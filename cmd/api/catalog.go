package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bajrangpainters/backend/internal/content"
	"github.com/bajrangpainters/backend/internal/models"
	"github.com/bajrangpainters/backend/internal/services"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fetch the gallery once and print it",
		Long: `Runs a single catalog refresh against the configured media host and
prints the resulting images. Exits non-zero when no image could be found.`,
		Example: `  # Everything
  api catalog

  # Only interior projects
  api catalog --category interior`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			site, err := content.Load()
			if err != nil {
				return err
			}
			host, err := services.NewMediaHost(cfg)
			if err != nil {
				return err
			}

			catalog := services.NewCatalogService(host, site, cfg, nil, log)
			if _, err := catalog.Refresh(cmd.Context()); err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), catalog.Filter(category), catalog.Categories())
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", models.CategoryAll, "Category to print")
	return cmd
}

func printCatalog(out io.Writer, images []models.GalleryImage, categories []string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCAPTION\tPUBLIC ID\tSIZE\tDIMENSIONS")
	var total uint64
	for _, img := range images {
		size := "-"
		if img.Bytes > 0 {
			size = humanize.Bytes(uint64(img.Bytes))
			total += uint64(img.Bytes)
		}
		dims := "-"
		if img.Width > 0 && img.Height > 0 {
			dims = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", img.Category, img.Caption, img.PublicID, size, dims)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\n%s images, %s, categories: %v\n", humanize.Comma(int64(len(images))), humanize.Bytes(total), categories)
}
