// Command venues fetches the accessible venue set for one bounding box and
// prints the renderer markers as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"accessible_map/internal/adapters/observability"
	"accessible_map/internal/adapters/overpass"
	"accessible_map/internal/app"
	"accessible_map/internal/domain"
	"accessible_map/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv).Output(os.Stderr)

	var b domain.Bounds
	flag.Float64Var(&b.South, "south", 51.49, "south edge, degrees")
	flag.Float64Var(&b.West, "west", -0.12, "west edge, degrees")
	flag.Float64Var(&b.North, "north", 51.52, "north edge, degrees")
	flag.Float64Var(&b.East, "east", -0.06, "east edge, degrees")
	printQuery := flag.Bool("query", false, "print the interpreter query and exit")
	flag.Parse()

	if *printQuery {
		os.Stdout.WriteString(app.BuildQuery(b))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := overpass.New(cfg.OverpassURL, overpass.Options{
		RPS:         cfg.OverpassRPS,
		MaxInFlight: 1,
		Timeout:     cfg.OverpassTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize interpreter client")
	}

	coord := app.NewCoordinator(client, log.Logger)
	coord.RequestSync(ctx, b)
	st := coord.State()
	if st.Phase == app.PhaseFailure {
		log.Fatal().Str("error", st.Err).Msg("fetch failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(app.NewMarkers(st.Venues, cfg.PermalinkBase)); err != nil {
		log.Fatal().Err(err).Msg("encode markers")
	}
	log.Info().Int("venues", len(st.Venues)).Msg("done")
}
