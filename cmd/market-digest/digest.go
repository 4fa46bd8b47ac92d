// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/market-digest/internal/aggregate"
	"github.com/pdiddy/market-digest/internal/pipeline"
	"github.com/pdiddy/market-digest/pkg/types"
)

var digestCmd = &cobra.Command{
	Use:   "digest [query...]",
	Short: "Build a market digest now",
	Long: `Digest fetches articles from the configured providers, keeps the ones
matching the query (or the most recent when no query is given), analyzes
them and prints the Markdown digest.

--country scopes sites and the search locale (us, india). --topic picks a
predefined search (commodities, crypto, earnings, ...) and implies a country
when the topic names one.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().String("country", "", "country scope: us, india")
	digestCmd.Flags().String("topic", "", "predefined topic search")
	digestCmd.Flags().Int("limit", 0, "maximum number of articles (default aggregate.limit)")
	digestCmd.Flags().Bool("json", false, "print the full result as JSON")
	digestCmd.Flags().Bool("raw", false, "print the ranked article table instead of the digest")
	digestCmd.Flags().Bool("no-record", false, "do not record the run in history")

	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Aggregate.Limit = limit
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	country, _ := cmd.Flags().GetString("country")
	topic, _ := cmd.Flags().GetString("topic")
	q := aggregate.Query{
		Text:    strings.Join(args, " "),
		Country: country,
		Topic:   topic,
	}

	ctx := cmd.Context()
	res, err := a.pipeline.Run(ctx, q)
	if err != nil {
		return err
	}

	if noRecord, _ := cmd.Flags().GetBool("no-record"); !noRecord {
		recordRun(ctx, cfg, res)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	raw, _ := cmd.Flags().GetBool("raw")
	switch {
	case asJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case raw:
		return printArticles(res)
	default:
		fmt.Println(res.Digest)
		return nil
	}
}

// recordRun stores run metadata. History is best effort.
func recordRun(ctx context.Context, cfg types.Config, res pipeline.Result) {
	s, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Warn("run history unavailable")
		return
	}
	defer s.Close()
	if err := s.RecordRun(ctx, res.RunRecord()); err != nil {
		log.WithError(err).Warn("recording run failed")
	}
}

func printArticles(res pipeline.Result) error {
	t := newTable("#", "SOURCE", "WHEN", "SCORE", "TITLE")
	for i, a := range res.Articles {
		score := ""
		if a.RelevanceScore != nil {
			score = strconv.FormatFloat(*a.RelevanceScore, 'f', 2, 64)
		}
		when := a.Time
		if when == "" {
			when = a.PublishedAt
		}
		t.add(strconv.Itoa(i+1), a.Source.Name, when, score, a.Title)
	}
	if err := t.render(os.Stdout); err != nil {
		return err
	}
	for _, e := range res.ProviderErrors {
		fmt.Fprintln(os.Stderr, "provider error:", e)
	}
	return nil
}
