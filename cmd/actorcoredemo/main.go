// Command actorcoredemo wires a System, spawns a handful of actors that
// exercise requests and clock-scheduled messages, and shuts down on
// SIGINT/SIGTERM. Its actors never terminate on their own, so the
// shutdown waits out its five-second bound before stopping the scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lguibr/actorcore/actor"
	"github.com/lguibr/actorcore/clock"
	"go.uber.org/zap"
)

// echoActor replies to every string message with the text prefixed by
// "echo: ".
type echoActor struct{}

func (echoActor) Receive(ctx *actor.Context, msg any) actor.Directive {
	if text, ok := msg.(string); ok {
		ctx.Reply("echo: " + text)
		return actor.Consumed
	}
	return actor.Dropped
}

type tickMessage struct{}

// tickerActor counts periodic clock ticks and logs every third one.
type tickerActor struct {
	logger *zap.Logger
	count  int
}

func (t *tickerActor) Receive(ctx *actor.Context, msg any) actor.Directive {
	if _, ok := msg.(tickMessage); !ok {
		return actor.Dropped
	}
	t.count++
	if t.count%3 == 0 {
		t.logger.Info("tick", zap.Int("count", t.count), zap.Time("at", ctx.Now()))
	}
	return actor.Consumed
}

// clientActor fires one request at target on PreStart and logs the reply.
type clientActor struct {
	logger *zap.Logger
	target *actor.ControlBlock
}

func (c *clientActor) PreStart(ctx *actor.Context) {
	ctx.Request(c.target, "hello", actor.NoTimeout, func(_ *actor.Context, msg any, isError bool) {
		if isError {
			c.logger.Warn("request failed", zap.Any("reason", msg))
			return
		}
		c.logger.Info("request completed", zap.Any("reply", msg))
	})
}

func (c *clientActor) Receive(ctx *actor.Context, msg any) actor.Directive {
	return actor.Dropped
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	realClock := clock.NewReal(logger)
	defer realClock.Close()

	sys := actor.NewSystem(actor.DefaultConfig(),
		actor.WithLogger(logger),
		actor.WithClock(realClock),
	)
	sys.Start()

	ticker := sys.Spawn(func(*actor.System, actor.Address) actor.Actor {
		return &tickerActor{logger: logger}
	}, actor.SpawnOptions{})

	realClock.SchedulePeriodicMessage(
		time.Now().Add(time.Second),
		ticker.RetainWeak(),
		sys.Scheduler(),
		nil,
		tickMessage{},
		time.Second,
		clock.StallSkip,
	)

	echo := sys.Spawn(func(*actor.System, actor.Address) actor.Actor {
		return echoActor{}
	}, actor.SpawnOptions{})

	sys.Spawn(func(*actor.System, actor.Address) actor.Actor {
		return &clientActor{logger: logger, target: echo}
	}, actor.SpawnOptions{})

	logger.Info("actorcore demo running",
		zap.Stringer("echo", echo.Address()),
		zap.Stringer("ticker", ticker.Address()),
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sys.Shutdown(ctx); err != nil {
		logger.Warn("shutdown did not complete cleanly", zap.Error(err))
	}
}
