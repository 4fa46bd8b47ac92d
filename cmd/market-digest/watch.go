// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pdiddy/market-digest/internal/schedule"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Send the daily market update on a schedule",
	Long: `Watch runs in the foreground and, at schedule.time in schedule.timezone
(default 09:00 Asia/Kolkata), builds the latest digest and delivers it to
every subscriber with a dated header. Messages are written to stdout.

--cron replaces the daily time with any cron expression; --once sends one
update immediately and exits.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("cron", "", "cron expression overriding schedule.time")
	watchCmd.Flags().Bool("once", false, "send a single update now and exit")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.Schedule.Timezone, err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	daily := &schedule.Daily{
		Digester:    a.pipeline,
		Subscribers: s,
		Notifier:    schedule.NewWriterNotifier(os.Stdout),
		Recorder:    s,
		Location:    loc,
		MaxLength:   cfg.Digest.MaxLength,
		Log:         log,
	}

	ctx := cmd.Context()
	if once, _ := cmd.Flags().GetBool("once"); once {
		delivery, err := daily.Trigger(ctx)
		if err != nil {
			return err
		}
		log.WithField("sent", delivery.Sent).Info("daily update sent")
		return nil
	}

	spec, _ := cmd.Flags().GetString("cron")
	if spec == "" {
		spec, err = schedule.Spec(cfg.Schedule.Time, cfg.Schedule.Timezone)
		if err != nil {
			return err
		}
	}

	c, err := daily.Start(ctx, spec, cron.PrintfLogger(log))
	if err != nil {
		return err
	}
	log.WithField("schedule", spec).Info("scheduler started")

	<-ctx.Done()
	log.Info("stopping scheduler")
	<-c.Stop().Done()
	return nil
}
