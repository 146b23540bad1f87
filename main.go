// Golang backend for real-time collaborative text editing
// Copyright (C) 2026 Jakob Ackermann <das7pad@outlook.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/managers/collab"
	"github.com/das7pad/collab-go/pkg/options/listenAddress"
	"github.com/das7pad/collab-go/pkg/options/postgresOptions"
	"github.com/das7pad/collab-go/pkg/options/redisOptions"
	"github.com/das7pad/collab-go/pkg/pendingOperation"
)

func mustConnectRedis(ctx context.Context) redis.UniversalClient {
	ctx, done := context.WithTimeout(ctx, 10*time.Second)
	defer done()

	rClient := redis.NewUniversalClient(redisOptions.Parse())
	// Write a dummy value as health check on startup.
	if err := rClient.Set(ctx, "startup", "42", time.Second).Err(); err != nil {
		panic(errors.Tag(err, "ensure redis accepts writes"))
	}
	return rClient
}

func mustConnectPostgres(ctx context.Context) *pgxpool.Pool {
	ctx, done := context.WithTimeout(ctx, 10*time.Second)
	defer done()

	db, err := pgxpool.New(ctx, postgresOptions.Parse())
	if err != nil {
		panic(errors.Tag(err, "parse postgres DSN"))
	}
	if err = db.Ping(ctx); err != nil {
		panic(errors.Tag(err, "cannot talk to postgres"))
	}
	return db
}

func main() {
	triggerExitCtx, triggerExit := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGUSR1, syscall.SIGTERM,
	)
	defer triggerExit()

	rClient := mustConnectRedis(triggerExitCtx)
	db := mustConnectPostgres(triggerExitCtx)

	options := getOptions()
	cm, err := collab.New(options, db, rClient)
	if err != nil {
		panic(errors.Tag(err, "collab setup"))
	}

	eg, ctx := errgroup.WithContext(triggerExitCtx)
	eg.Go(func() error {
		cm.PeriodicFlush(triggerExitCtx)
		return nil
	})
	server := http.Server{
		Addr:    listenAddress.Parse(3030),
		Handler: newHttpController(cm, options).GetRouter(),
	}
	var errServe error
	eg.Go(func() error {
		errServe = server.ListenAndServe()
		triggerExit()
		if errServe == http.ErrServerClosed {
			errServe = nil
		}
		return errServe
	})
	eg.Go(func() error {
		<-ctx.Done()
		// Give the load balancer a moment to drain before kicking
		// clients and refusing new connections.
		time.Sleep(options.GracefulShutdownDelay)
		cm.InitiateGracefulShutdown()
		ctx2, done := context.WithTimeout(
			context.Background(), options.GracefulShutdownTimeout,
		)
		defer done()
		pendingShutdown := pendingOperation.TrackOperation(func() error {
			return server.Shutdown(ctx2)
		})
		return pendingShutdown.Wait(ctx2)
	})
	err = eg.Wait()
	if errServe != nil {
		panic(errServe)
	}
	if err != nil {
		panic(err)
	}
}
