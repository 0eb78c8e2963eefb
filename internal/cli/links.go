package cli

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/uoft-courses/internal/inventory"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
	"github.com/pfrederiksen/uoft-courses/internal/page"
	"github.com/pfrederiksen/uoft-courses/internal/scraper"
)

func newLinksCmd() *cobra.Command {
	var kind, index, base, out string

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Build the department link inventory from an index page",
		Long: `Read a saved index page (or fetch it when --index is a URL), collect the
department page links and save them as a YAML inventory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinks(cmd, kind, index, base, out)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(inventory.Calendar), "Index layout: calendar or timetable")
	cmd.Flags().StringVar(&index, "index", "", "Index page file or URL (required)")
	cmd.Flags().StringVar(&base, "base", "", "Base URL for relative links (defaults to --index when it is a URL)")
	cmd.Flags().StringVar(&out, "out", "", "Inventory file (default scrape.inventory)")

	cmd.MarkFlagRequired("index")

	return cmd
}

func runLinks(cmd *cobra.Command, kindName, index, baseURL, out string) error {
	kind, err := inventory.ParseKind(kindName)
	if err != nil {
		return err
	}
	if out == "" {
		out = cfg.Scrape.Inventory
	}

	remote := strings.HasPrefix(index, "http://") || strings.HasPrefix(index, "https://")
	if baseURL == "" && remote {
		baseURL = index
	}
	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("parsing base URL: %w", err)
		}
	}

	var doc *goquery.Document
	if remote {
		body, err := scraper.New(cfg.Scrape.UserAgent, cfg.Scrape.Timeout).Fetch(cmd.Context(), index)
		if err != nil {
			return err
		}
		doc, err = page.Read(bytes.NewReader(body), "")
		if err != nil {
			return err
		}
	} else {
		doc, err = page.ReadFile(index)
		if err != nil {
			return err
		}
	}

	inv, err := inventory.Extract(doc, kind, base)
	if err != nil {
		return fmt.Errorf("extracting links from %s: %w", index, err)
	}
	if err := inv.Save(out); err != nil {
		return err
	}

	logger.Info("Saved link inventory", logger.Fields{"kind": kind, "links": len(inv.Links), "path": out})
	return nil
}

func newDownloadCmd() *cobra.Command {
	var invPath, pagesDir string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download every page named in the link inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if invPath == "" {
				invPath = cfg.Scrape.Inventory
			}
			if pagesDir == "" {
				pagesDir = cfg.Scrape.PagesDir
			}

			inv, err := inventory.Load(invPath)
			if err != nil {
				return err
			}

			sc := scraper.New(cfg.Scrape.UserAgent, cfg.Scrape.Timeout)
			res, err := inv.Download(cmd.Context(), sc, pagesDir)
			logger.Info("Download complete", logger.Fields{
				"saved":    res.Saved,
				"existing": res.Existing,
				"failed":   res.Failed,
				"dir":      pagesDir,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&invPath, "inventory", "", "Inventory file (default scrape.inventory)")
	cmd.Flags().StringVar(&pagesDir, "pages-dir", "", "Directory to save pages in (default scrape.pages_dir)")

	return cmd
}
