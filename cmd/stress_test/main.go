package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/port"
)

const (
	totalRequests = 200
	checkoutEvery = 5 * time.Millisecond
)

// Hammers one user's cart with concurrent adds while checkouts run, then
// verifies every added line ended up in exactly one order.
func main() {
	backend := flag.String("backend", "memory", "cart backend: memory or redis")
	redisAddr := flag.String("redis", "localhost:6379", "redis address for -backend=redis")
	flag.Parse()

	ctx := context.Background()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	var carts port.CartStore = storage.NewMemoryCartStore()
	if *backend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
		carts = storage.NewRedisCartStore(rdb, log)
	}

	store := storage.NewMemoryStore()
	userID, _ := store.CreateUser(ctx, "stress", "stress@example.com", "x")
	bookID, _ := store.CreateBook(ctx, domain.Book{Titulo: "Stress", Autor: "Load", Anio: 2024, Precio: 1, Cantidad: 1})

	// Clear previous test data
	carts.Checkout(ctx, userID, func(context.Context, []domain.CartItem) error { return nil })

	cartService := service.NewCartService(store, store, carts, messaging.NoopPublisher{}, log)

	// Counters
	var addOK, addFail, checkouts atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	done := make(chan struct{})
	start := time.Now()

	go func() {
		ticker := time.NewTicker(checkoutEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if _, err := cartService.Checkout(ctx, userID); err == nil {
					checkouts.Add(1)
				}
			}
		}
	}()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cartService.Add(ctx, userID, bookID, 1); err == nil {
				addOK.Add(1)
			} else {
				addFail.Add(1)
			}
		}()
	}

	wg.Wait()
	close(done)

	// Place whatever is left over.
	for {
		_, err := cartService.Checkout(ctx, userID)
		if err == nil {
			checkouts.Add(1)
			continue
		}
		if errors.Is(err, domain.ErrEmptyCart) {
			break
		}
		if errors.Is(err, domain.ErrCheckoutInProgress) {
			time.Sleep(checkoutEvery)
			continue
		}
		log.Fatal().Err(err).Msg("final checkout failed")
	}
	elapsed := time.Since(start)

	orders, _ := store.ListOrders(ctx)
	ordered := 0
	for _, o := range orders {
		for _, item := range o.Books {
			ordered += item.Quantity
		}
	}

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Backend:          %s\n", *backend)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Added:            %d\n", addOK.Load())
	fmt.Printf("Failed:           %d\n", addFail.Load())
	fmt.Printf("Orders:           %d\n", checkouts.Load())
	fmt.Printf("Ordered Copies:   %d\n", ordered)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if int(addOK.Load()) == ordered && addFail.Load() == 0 {
		fmt.Printf("PASS: all %d added lines were ordered exactly once\n", ordered)
	} else {
		fmt.Printf("FAIL: added %d lines but %d copies were ordered\n", addOK.Load(), ordered)
		os.Exit(1)
	}
}
