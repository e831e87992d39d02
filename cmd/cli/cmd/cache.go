package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the local database",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached list responses and the email log size",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached list response",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old entries of the invoice email log",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

func init() {
	cachePruneCmd.Flags().Duration("older-than", 180*24*time.Hour, "Keep entries newer than this")

	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.db.IsHealthy(); err != nil {
		return a.fail(fmt.Errorf("database unavailable: %w", err))
	}

	stats, err := a.cache.GetStats()
	if err != nil {
		return a.fail(err)
	}
	sent, err := a.db.Sent.Count()
	if err != nil {
		return a.fail(err)
	}
	return a.formatter.PrintCacheStats(stats, sent)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cache.Purge(); err != nil {
		return a.fail(err)
	}
	a.formatter.PrintSuccess("Cache cleared")
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if olderThan <= 0 {
		return a.fail(fmt.Errorf("--older-than must be positive, got %s", olderThan))
	}

	removed, err := a.db.Sent.CleanupOlderThan(a.now().Add(-olderThan))
	if err != nil {
		return a.fail(err)
	}
	a.logger.Debug("Pruned email log", "removed", removed, "older_than", olderThan)
	a.formatter.PrintSuccess(fmt.Sprintf("Removed %d email log entries", removed))
	return nil
}
