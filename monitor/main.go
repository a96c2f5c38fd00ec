package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"orrery/monitor/model"
	"orrery/pkg/logging"
	"orrery/simulator/events"
)

const serviceName = "monitor"

func main() {
	var (
		redisAddr   string
		clearScreen bool
		logLevel    string
	)
	flag.StringVar(&redisAddr, "redis", "localhost:6379", "Redis address")
	flag.BoolVar(&clearScreen, "clear", true, "Clear the terminal between frames")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.Parse()

	logger := logging.New(serviceName, logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Subscribe to simulation.step
	sub := redisClient.Subscribe(ctx, events.StepChannel)
	defer sub.Close()
	logger.Info("subscribed", "channel", events.StepChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			snap, err := model.Decode(msg.Payload)
			if err != nil {
				logger.Warn("skipping frame", "error", err)
				continue
			}
			if clearScreen {
				fmt.Print("\033[2J\033[H")
			}
			if err := model.Render(os.Stdout, snap); err != nil {
				logger.Error("failed to render frame", "error", err)
				return
			}
		}
	}
}
