package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partyround/clients/roomapi"
	"github.com/mcdev12/partyround/internal/app"
	"github.com/mcdev12/partyround/internal/bridge"
	"github.com/mcdev12/partyround/internal/realtime"
	"github.com/mcdev12/partyround/internal/session"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := loadConfig(getEnv("PARTYROUND_CONFIG", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("api_url", config.APIBaseURL).
		Str("ws_url", config.WSBaseURL).
		Str("name", config.DisplayName).
		Msg("starting partyround client")

	api := roomapi.NewClient(config.APIBaseURL)
	store := session.NewStore()

	transportConfig := realtime.DefaultConfig(config.WSBaseURL)
	transportConfig.PingInterval = time.Duration(config.PingIntervalSec) * time.Second
	transport := realtime.New(transportConfig)

	var publisher app.EventPublisher
	if config.NATSURL != "" {
		bridgeConfig := bridge.DefaultConfig()
		bridgeConfig.URL = config.NATSURL
		p, err := bridge.NewPublisher(bridgeConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect event bridge")
		}
		defer p.Close()
		publisher = p
	}

	reader := bufio.NewReader(os.Stdin)
	ui := newTerminalUI(reader)

	engine := app.New(app.Config{
		ExternalID:  config.ExternalID,
		DisplayName: config.DisplayName,
	}, api, store, transport, ui, ui, publisher)
	defer engine.Close()

	store.Subscribe(func() {
		// Presentation reads the committed snapshot after every mutation.
		ui.render(store.Snapshot())
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("commands: create | join CODE | question TEXT | answer TEXT | reveal ID | close | show | quit")

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "":
			continue

		case "create":
			resp, err := engine.CreateRoom(ctx)
			if err != nil {
				ui.Notify(err.Error())
				continue
			}
			ui.Notify(fmt.Sprintf("room created, code %s", resp.RoomCode))
			if err := engine.Connect(ctx); err != nil {
				ui.Notify(err.Error())
			}

		case "join":
			if err := engine.JoinRoom(ctx, rest); err != nil {
				ui.Notify(err.Error())
				continue
			}
			if err := engine.Connect(ctx); err != nil {
				ui.Notify(err.Error())
			}

		case "question":
			if err := engine.SetQuestion(ctx, rest); err != nil {
				ui.Notify(err.Error())
			}

		case "answer":
			if err := engine.SubmitAnswer(ctx, rest); err != nil {
				ui.Notify(err.Error())
			} else {
				ui.Notify("answer submitted")
			}

		case "reveal":
			answerID, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				ui.Notify("usage: reveal ANSWER_ID")
				continue
			}
			if err := engine.RequestReveal(ctx, answerID); err != nil {
				log.Debug().Err(err).Msg("reveal refused")
			}

		case "close":
			if err := engine.CloseRound(ctx); err != nil {
				ui.Notify(err.Error())
			}

		case "show":
			ui.render(store.Snapshot())

		case "quit", "exit":
			return

		default:
			ui.Notify(fmt.Sprintf("unknown command %q", cmd))
		}
	}
}
