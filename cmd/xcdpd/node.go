package xcdpd

import (
	"context"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	ipfslog "github.com/ipfs/go-log/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrlschwb/l1x-xcdp-test/pkg/db"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/ingest"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/readiness"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/service"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/store"
)

var (
	dataDir    *string
	listenAddr *string
	statusAddr *string

	destNetwork  *string
	destContract *string

	nodeConfig *string

	logLevel *string

	unsafeDevMode *bool
)

func init() {
	dataDir = NodeCmd.Flags().String("dataDir", "", "Data directory for the event database")
	listenAddr = NodeCmd.Flags().String("listenAddr", "[::]:8080", "Listen address for the ingestion API")
	statusAddr = NodeCmd.Flags().String("statusAddr", "[::]:6060", "Listen address for status server (disabled if blank)")

	destNetwork = NodeCmd.Flags().String("destNetwork", "", "Destination network recorded in relayed payloads")
	destContract = NodeCmd.Flags().String("destContract", "", "Destination contract address (32 bytes, hex)")

	nodeConfig = NodeCmd.Flags().String("nodeConfig", "", "Path to a node config file")

	logLevel = NodeCmd.Flags().String("logLevel", "info", "Logging level (debug, info, warn, error, dpanic, panic, fatal)")

	unsafeDevMode = NodeCmd.Flags().Bool("unsafeDevMode", false, "Launch node in dev mode (in-memory storage, no durability)")
}

// NodeCmd represents the node command
var NodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Run the XCDP event ingestion node",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initFileConfig(cmd, *nodeConfig)
	},
	Run: runNode,
}

func runNode(cmd *cobra.Command, args []string) {
	lvl, err := ipfslog.LevelFromString(*logLevel)
	if err != nil {
		cmd.PrintErrln("Invalid log level")
		os.Exit(1)
	}

	// Our root logger. Convert directly to a regular Zap logger.
	logger := ipfslog.Logger("xcdpd").Desugar()

	// Override the default go-log config, which uses a magic environment variable.
	ipfslog.SetAllLoggers(lvl)

	// Register components for readiness checks.
	readiness.RegisterComponent(readiness.Storage)
	readiness.RegisterComponent(readiness.API)

	// Status server
	if *statusAddr != "" {
		router := mux.NewRouter()

		// Simple endpoint exposing node readiness (safe to expose to untrusted clients)
		router.HandleFunc("/readyz", readiness.Handler)

		// Prometheus metrics (safe to expose to untrusted clients)
		router.Handle("/metrics", promhttp.Handler())

		go func() {
			logger.Info("status server listening", zap.String("addr", *statusAddr))
			logger.Error("status server crashed", zap.Error(http.ListenAndServe(*statusAddr, router))) // #nosec G114
		}()
	}

	// Verify flags
	if *dataDir == "" && !*unsafeDevMode {
		logger.Fatal("Please specify --dataDir")
	}

	routing := ingest.Routing{DestinationNetwork: *destNetwork}
	if *destContract != "" {
		addr, err := hex.DecodeString(*destContract)
		if err != nil || len(addr) != 32 {
			logger.Fatal("--destContract must be 32 bytes of hex")
		}
		copy(routing.DestinationContract[:], addr)
	} else if !*unsafeDevMode {
		logger.Warn("no --destContract configured; relayed payloads will carry a zero destination address")
	}

	// Storage capability: badger in production, in-memory in dev mode.
	var storage store.Storage
	if *unsafeDevMode {
		logger.Info("running in dev mode with in-memory storage")
		storage = db.NewMemStorage()
	} else {
		database := db.OpenDb(logger.Named("db"), dataDir)
		defer database.Close()
		storage = database
	}
	readiness.SetReady(readiness.Storage)

	mgr := store.NewManager(storage, logger.Named("store"))
	handler := ingest.NewHandler(mgr, routing, logger.Named("ingest"))
	server := service.NewServer(handler, logger.Named("service"))

	httpServer := &http.Server{
		Addr:              *listenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("ingestion API listening", zap.String("addr", *listenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ingestion API crashed", zap.Error(err))
		}
	}()
	readiness.SetReady(readiness.API)

	// Node's main lifecycle context.
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer rootCtxCancel()

	<-rootCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down ingestion API", zap.Error(err))
	}
}
