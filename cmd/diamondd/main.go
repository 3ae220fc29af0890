// Command diamondd runs an in-process ledger with the payments diamond
// deployed and serves it over HTTP and MCP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/chain"
	"github.com/hashleap/diamond/client"
	"github.com/hashleap/diamond/config"
	"github.com/hashleap/diamond/deploy"
	"github.com/hashleap/diamond/erc20"
	"github.com/hashleap/diamond/facets/crosschain"
	dhttp "github.com/hashleap/diamond/http"
	"github.com/hashleap/diamond/mcp"
	"github.com/hashleap/diamond/metrics"
	"github.com/hashleap/diamond/scheduler"
)

// devChain is the source chain name the dev gateway is registered under
const devChain = "dev"

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger()
	logger.Info("Starting diamond dev node")

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("diamondd: %v", err)
	}
	logger.Info("Shutdown complete")
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	ledger := chain.New(
		chain.WithChainID(cfg.Chain.ID),
		chain.WithGenesisTime(cfg.GenesisTime()),
		chain.WithLogger(logger.WithField("component", "chain")),
		chain.WithMetrics(m),
	)

	owner := cfg.OwnerAddress()
	deployer := deploy.New(ledger, owner,
		deploy.WithCutCache(diamond.NewCutCache(128, 10*time.Minute)),
		deploy.WithLogger(logger.WithField("component", "deploy")),
		deploy.WithMetrics(m),
	)
	dep, err := deployer.DeployDiamond(ctx)
	if err != nil {
		return fmt.Errorf("failed to deploy diamond: %w", err)
	}
	if err := deployer.DeployPayments(ctx, dep, cfg.SubscriptionInit()); err != nil {
		return fmt.Errorf("failed to deploy payment facets: %w", err)
	}

	admin := client.New(dep.Diamond, ledger, client.WithTransactor(client.NewChainTransactor(ledger, owner)))
	if err := seed(ctx, ledger, admin, owner, logger); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"diamond":  dep.Diamond.Hex(),
		"owner":    owner.Hex(),
		"chain_id": cfg.Chain.ID,
	}).Info("Diamond deployed")

	reader := client.New(dep.Diamond, ledger)
	api := dhttp.New(ledger, reader,
		dhttp.WithLogger(logger.WithField("component", "http")),
		dhttp.WithMetrics(m, registry),
	)
	servers := []*http.Server{{
		Addr:    cfg.HTTP.Listen,
		Handler: api.Handler(),
	}}

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer(reader, mcp.WithLogger(logger.WithField("component", "mcp")))
		mux := http.NewServeMux()
		sse := mcp.Handler(mcpServer)
		mux.Handle("/sse", sse)
		mux.Handle("/messages", sse)
		servers = append(servers, &http.Server{
			Addr:    cfg.MCP.Listen,
			Handler: mux,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Infof("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s failed: %w", srv.Addr, err)
			}
		}(srv)
	}

	var renewals *scheduler.Scheduler
	if cfg.Renewal.Enabled {
		planOwner := cfg.RenewalPlanOwner()
		renewer := scheduler.NewRenewer(
			client.New(dep.Diamond, ledger, client.WithTransactor(client.NewChainTransactor(ledger, planOwner))),
			planOwner,
			scheduler.WithClock(ledger),
			scheduler.WithLogger(logger.WithField("component", "renewer")),
			scheduler.WithMetrics(m),
		)
		renewals, err = scheduler.New(renewer, cfg.Renewal.Schedule)
		if err != nil {
			return err
		}
		if err := renewals.Start(ctx); err != nil {
			return err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Infof("Received signal %v, shutting down", sig)
	case runErr = <-errCh:
		logger.WithError(runErr).Error("Server stopped unexpectedly")
	}
	cancel()

	timeout, _ := cfg.ShutdownTimeout()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if renewals != nil {
		if err := renewals.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Renewal scheduler did not stop cleanly")
		}
	}
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warnf("Server on %s did not shut down cleanly", srv.Addr)
		}
	}
	return runErr
}

// seed deploys the dev payment token and gateway and registers them with
// the diamond
func seed(ctx context.Context, ledger *chain.Chain, admin *client.Diamond, owner common.Address, logger logrus.FieldLogger) error {
	token, _, err := ledger.Deploy(owner, erc20.NewToken("USD Coin", "USDC", 6), nil)
	if err != nil {
		return fmt.Errorf("failed to deploy dev token: %w", err)
	}
	if _, err := admin.SetTokenAddress(ctx, "USDC", token); err != nil {
		return fmt.Errorf("failed to register dev token: %w", err)
	}

	gateway, _, err := ledger.Deploy(owner, crosschain.NewGateway(), nil)
	if err != nil {
		return fmt.Errorf("failed to deploy dev gateway: %w", err)
	}
	if _, err := admin.SetAxelarContract(ctx, devChain, gateway); err != nil {
		return fmt.Errorf("failed to register dev gateway: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"token":   token.Hex(),
		"gateway": gateway.Hex(),
	}).Info("Dev token and gateway registered")
	return nil
}
