// loadgen drives an osprey server with randomized limit and market
// orders around a drifting midpoint and reports fill statistics.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"osprey/api/bookpb"
	"osprey/api/grpcserver"
	"osprey/domain/book"
)

func main() {
	var (
		addr      = flag.String("addr", "localhost:9090", "server address")
		count     = flag.Int("n", 10000, "orders to submit")
		rate      = flag.Int("rate", 0, "orders per second, 0 for unthrottled")
		mid       = flag.Float64("mid", 100.00, "starting midpoint price")
		marketPct = flag.Int("market-pct", 10, "percentage of market orders")
		seed      = flag.Int64("seed", 0, "rng seed, 0 for time-based")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("session", uuid.NewString()).Logger()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("dial failed")
	}
	defer conn.Close()
	client := grpcserver.NewOrderServiceClient(conn)

	var throttle <-chan time.Time
	if *rate > 0 {
		t := time.NewTicker(time.Second / time.Duration(*rate))
		defer t.Stop()
		throttle = t.C
	}

	ctx := context.Background()
	var trades, rejected, rested int
	start := time.Now()
	for i := 0; i < *count; i++ {
		if throttle != nil {
			<-throttle
		}

		req := &bookpb.Order{Qty: uint64(1 + rng.Intn(50))}
		if rng.Intn(2) == 0 {
			req.Side = bookpb.SideBuy
		} else {
			req.Side = bookpb.SideSell
		}
		if rng.Intn(100) < *marketPct {
			req.Type = bookpb.TypeMarket
		} else {
			req.Type = bookpb.TypeLimit
			offset := (rng.Float64() - 0.5) * 2.0
			req.Price = int64(book.PriceFromFloat(*mid + offset))
		}

		ack, err := client.PlaceOrder(ctx, req)
		if err != nil {
			rejected++
			continue
		}
		trades += len(ack.Trades)
		if ack.Rested {
			rested++
		}
	}
	elapsed := time.Since(start)

	snap, err := client.GetDepth(ctx, &bookpb.DepthQuery{Levels: 5})
	if err != nil {
		log.Error().Err(err).Msg("depth query failed")
	} else {
		log.Info().
			Int("bid_levels", len(snap.Bids)).
			Int("ask_levels", len(snap.Asks)).
			Msg("final depth")
	}

	log.Info().
		Int("orders", *count).
		Int("trades", trades).
		Int("rested", rested).
		Int("rejected", rejected).
		Dur("elapsed", elapsed).
		Float64("orders_per_sec", float64(*count)/elapsed.Seconds()).
		Int64("seed", *seed).
		Msg("load complete")
}
