package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openalpha/prize-savings/offchain/drawkeeper"
	"github.com/openalpha/prize-savings/pkg/grpcclient"
)

func main() {
	grpcAddr := flag.String("grpc", "localhost:9090", "Chain gRPC address")
	chainID := flag.String("chain-id", "prizesavings-1", "Chain ID")
	keyHex := flag.String("key", "", "Hex-encoded operator private key")
	submitterType := flag.String("submitter", "mock", "Submitter type: mock or grpc")
	tick := flag.Duration("tick", 5*time.Second, "Draw tick interval")
	syncEvery := flag.Duration("sync", time.Minute, "Yield sync interval")
	batchLimit := flag.Uint64("batch-limit", 200, "Participants finalized per draw batch")
	poolID := flag.Uint64("pool", 1, "Pool to drive")
	interval := flag.Duration("draw-interval", 24*time.Hour, "Pool draw interval")
	flag.Parse()

	var client *grpcclient.Client
	if *submitterType == "grpc" {
		if *keyHex == "" {
			log.Fatal("grpc submitter requires -key")
		}
		cfg := grpcclient.DefaultConfig()
		cfg.GRPCAddr = *grpcAddr
		cfg.ChainID = *chainID

		var err error
		client, err = grpcclient.NewClient(cfg, *keyHex)
		if err != nil {
			log.Fatalf("Failed to create gRPC client: %v", err)
		}
		defer client.Close()
		log.Printf("Operator address: %s", client.Address())
	}

	keeper := drawkeeper.NewDrawKeeper(&drawkeeper.Config{
		TickInterval: *tick,
		SyncInterval: *syncEvery,
		BatchLimit:   *batchLimit,
	}, drawkeeper.NewSubmitter(*submitterType, client))

	// TODO: seed from a chain query instead of flags once the query client
	// lands. Until then the keeper assumes the tracked round is active now.
	keeper.TrackPool(&drawkeeper.PoolState{
		PoolID:       *poolID,
		Phase:        drawkeeper.PhaseActive,
		RoundEndTime: time.Now().Add(*interval),
		DrawInterval: *interval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := keeper.Start(ctx); err != nil {
		log.Fatalf("Failed to start draw keeper: %v", err)
	}

	log.Printf("Draw keeper running (pool %d, tick %s, submitter %s)", *poolID, *tick, *submitterType)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down draw keeper...")
	if err := keeper.Stop(); err != nil {
		log.Printf("Draw keeper shutdown error: %v", err)
	}

	stats := keeper.GetStats()
	log.Printf("Draws driven: %d, failures: %d", stats.DrawsDriven, stats.SubmitFailures)
}
