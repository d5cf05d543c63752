package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"localfile/internal/gateway"
)

// gatewayCmd exposes the universal content gateway.
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Fetch and cache universal reference content",
	Long: `Interact with the universal content gateway: Redis cache first, then
the hosted content API, then the locally installed reference directory.

Available subcommands:
  fetch        - Fetch one reference path, e.g. preamble/objective
  cache-status - Show how many reference entries are cached
  clear-cache  - Drop all cached reference entries`,
}

var gatewayFetchCmd = &cobra.Command{
	Use:   "fetch <path>",
	Short: "Fetch one universal reference path",
	Args:  cobra.ExactArgs(1),
	RunE:  runGatewayFetch,
}

var gatewayCacheStatusCmd = &cobra.Command{
	Use:   "cache-status",
	Short: "Show how many reference entries are cached",
	RunE:  runGatewayCacheStatus,
}

var gatewayClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop all cached reference entries",
	RunE:  runGatewayClearCache,
}

func init() {
	gatewayCmd.AddCommand(gatewayFetchCmd)
	gatewayCmd.AddCommand(gatewayCacheStatusCmd)
	gatewayCmd.AddCommand(gatewayClearCacheCmd)
}

func newGateway() (*gateway.Service, error) {
	var cache gateway.Cache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisCache, err := gateway.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		cache = redisCache
	} else {
		logger.Info("no redis configured, gateway runs uncached")
	}
	return gateway.New(gateway.Options{
		Cache:    cache,
		APIURL:   cfg.ContentAPIURL,
		APIKey:   cfg.ContentAPIKey,
		LocalDir: cfg.UniversalRoot,
		Logger:   logger,
	}), nil
}

func runGatewayFetch(cmd *cobra.Command, args []string) error {
	gw, err := newGateway()
	if err != nil {
		return err
	}
	text, err := gw.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runGatewayCacheStatus(cmd *cobra.Command, args []string) error {
	gw, err := newGateway()
	if err != nil {
		return err
	}
	count, err := gw.CacheStatus(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%d reference entr(ies) cached\n", count)
	return nil
}

func runGatewayClearCache(cmd *cobra.Command, args []string) error {
	gw, err := newGateway()
	if err != nil {
		return err
	}
	if err := gw.ClearCache(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}
