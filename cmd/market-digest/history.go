// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/market-digest/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent digest runs",
	Long: `History lists recorded digest runs, newest first: when each ran, its
scope, how many articles it used, the digest length and any provider
failures. Use --format json or yaml for machine-readable output.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of runs to show")
	historyCmd.Flags().String("format", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if format != "table" {
		return s.ExportRuns(cmd.Context(), os.Stdout, format, limit)
	}

	runs, err := s.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	t := newTable("STARTED", "SCOPE", "ARTICLES", "LENGTH", "TOOK", "ERRORS")
	for _, r := range runs {
		t.add(
			humanize.Time(r.StartedAt),
			runScope(r),
			strconv.Itoa(r.ArticleCount),
			humanize.Comma(int64(r.DigestLength)),
			r.Duration().Round(time.Millisecond).String(),
			strconv.Itoa(len(r.ProviderErrors)),
		)
	}
	return t.render(os.Stdout)
}

// runScope renders query, topic and country as one cell.
func runScope(r store.Run) string {
	var parts []string
	if r.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", r.Query))
	}
	if r.Topic != "" {
		parts = append(parts, "topic="+r.Topic)
	}
	if r.Country != "" {
		parts = append(parts, "country="+r.Country)
	}
	if r.Fallback {
		parts = append(parts, "(basic)")
	}
	if len(parts) == 0 {
		return "latest"
	}
	return strings.Join(parts, " ")
}
