package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"
	"github.com/vreid/janken/internal/pkg/arena"
	"github.com/vreid/janken/internal/pkg/auth"
	"github.com/vreid/janken/internal/pkg/common"
	"github.com/vreid/janken/internal/pkg/ledger"
	"github.com/vreid/janken/internal/pkg/lobby"
	"github.com/vreid/janken/internal/pkg/ratelimit"

	"github.com/urfave/cli/v3"
)

type JankenService struct {
	EchoService *common.EchoService `do:""`

	AuthService   *auth.AuthService    `do:""`
	ArenaService  *arena.ArenaService  `do:""`
	LobbyService  *lobby.LobbyService  `do:""`
	ReaperService *arena.ReaperService `do:""`
}

func runServer(_ context.Context, cmd *cli.Command) error {
	i := do.New()

	do.ProvideNamedValue(i, "port", cmd.Int("port"))
	do.ProvideNamedValue(i, "data-dir", cmd.String("data-dir"))

	do.ProvideNamedValue(i, "signup-grant", cmd.Int64("signup-grant"))
	do.ProvideNamedValue(i, "reveal-seconds", cmd.Int64("reveal-seconds"))
	do.ProvideNamedValue(i, "reaper-interval-seconds", cmd.Int64("reaper-interval-seconds"))

	do.ProvideNamedValue(i, "rate-limit", cmd.Int("rate-limit"))
	do.ProvideNamedValue(i, "rate-window-seconds", cmd.Int("rate-window-seconds"))

	do.Provide(i, common.NewEchoService)
	do.Provide(i, common.NewDatabaseService)

	do.Provide(i, ledger.NewLedgerService)
	do.Provide(i, ratelimit.NewLimiterService)

	do.Provide(i, auth.NewAuthService)
	do.Provide(i, arena.NewArenaService)
	do.Provide(i, lobby.NewLobbyService)
	do.Provide(i, arena.NewReaperService)

	do.Provide(i, do.InvokeStruct[JankenService])

	jankenService, err := do.Invoke[JankenService](i)
	if err != nil {
		return fmt.Errorf("failed to create janken service: %w", err)
	}

	jankenService.ReaperService.Start()

	//nolint:wrapcheck
	return jankenService.EchoService.Start()
}

func main() {
	_ = godotenv.Load()

	//nolint:exhaustruct
	cmd := &cli.Command{
		Name: "janken",
		Commands: []*cli.Command{
			{
				Name: "server",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Value:   3000, //nolint:mnd
						Sources: cli.EnvVars("JANKEN_PORT"),
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Value:   "./janken/data",
						Sources: cli.EnvVars("JANKEN_DATA_DIR"),
					},
					&cli.Int64Flag{
						Name:    "signup-grant",
						Value:   1000, //nolint:mnd
						Sources: cli.EnvVars("JANKEN_SIGNUP_GRANT"),
					},
					&cli.Int64Flag{
						Name:    "reveal-seconds",
						Value:   30, //nolint:mnd
						Sources: cli.EnvVars("JANKEN_REVEAL_SECONDS"),
					},
					&cli.Int64Flag{
						Name:    "reaper-interval-seconds",
						Value:   20, //nolint:mnd
						Sources: cli.EnvVars("JANKEN_REAPER_INTERVAL_SECONDS"),
					},
					&cli.IntFlag{
						Name:    "rate-limit",
						Value:   30, //nolint:mnd
						Sources: cli.EnvVars("JANKEN_RATE_LIMIT"),
					},
					&cli.IntFlag{
						Name:    "rate-window-seconds",
						Value:   60, //nolint:mnd
						Sources: cli.EnvVars("JANKEN_RATE_WINDOW_SECONDS"),
					},
				},
				Action: runServer,
			},
		},
		DefaultCommand: "server",
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
