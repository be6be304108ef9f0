// Command trainer runs repeated self-play games against the search engine,
// reporting per-game outcomes and persisting the transposition table between
// runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"honeycomb/internal/board"
	"honeycomb/internal/search"
	"honeycomb/internal/tt"
	"honeycomb/internal/ttstore"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	positional, flagArgs := splitArgs(args)
	if len(positional) < 3 || len(positional) > 4 {
		return fmt.Errorf("usage: trainer <game_count> <max_depth> <time_limit_ms> [depth_override] [--minThinkMillis=N] [--table=path] [--tracePVS] [--table-backend=badger] [path]")
	}

	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	minThinkMillis := fs.Int64("minThinkMillis", 0, "minimum think time per move, in milliseconds")
	tablePath := fs.String("table", "", "path to the transposition-table persistence file or directory")
	tracePVS := fs.Bool("tracePVS", false, "log every move played with the running scores")
	tableBackend := fs.String("table-backend", "file", "transposition-table persistence backend: file or badger")
	if err := fs.Parse(flagArgs); err != nil {
		return err
	}

	// A bare trailing positional path is an alternative to --table=path.
	trailing := fs.Args()
	if len(trailing) > 1 {
		return fmt.Errorf("unexpected extra arguments: %v", trailing[1:])
	}
	if len(trailing) == 1 {
		if *tablePath != "" {
			return fmt.Errorf("--table and a positional path are mutually exclusive")
		}
		*tablePath = trailing[0]
	}

	gameCount, err := strconv.Atoi(positional[0])
	if err != nil || gameCount < 1 {
		return fmt.Errorf("game_count must be an integer >= 1, got %q", positional[0])
	}
	maxDepth, err := strconv.Atoi(positional[1])
	if err != nil || maxDepth < 1 {
		return fmt.Errorf("max_depth must be an integer >= 1, got %q", positional[1])
	}
	timeLimitMs, err := strconv.Atoi(positional[2])
	if err != nil || timeLimitMs < 0 {
		return fmt.Errorf("time_limit_ms must be an integer >= 0, got %q", positional[2])
	}

	depthOverride := 0
	if len(positional) == 4 {
		depthOverride, err = strconv.Atoi(positional[3])
		if err != nil || depthOverride < 1 {
			return fmt.Errorf("depth_override must be an integer >= 1, got %q", positional[3])
		}
		if depthOverride > maxDepth {
			depthOverride = maxDepth
		}
	}

	table := tt.New()
	path, backend, err := resolveTablePersistence(*tableBackend, *tablePath)
	if err != nil {
		return err
	}
	table.SetPersistence(path, backend)
	if err := <-table.LoadAsync(); err != nil {
		log.Printf("[TT] load failed, starting from an empty table: %v", err)
	}

	searcher := search.NewSearcher(table)
	searcher.MinThinkTime = time.Duration(*minThinkMillis) * time.Millisecond

	constraints := search.Constraints{
		DepthLimit: maxDepth,
		TimeLimit:  time.Duration(timeLimitMs) * time.Millisecond,
		Mode:       search.PAR,
	}

	rng := rand.New(rand.NewSource(1))
	for game := 1; game <= gameCount; game++ {
		if err := playGame(searcher, constraints, depthOverride, rng, *tracePVS, game); err != nil {
			return fmt.Errorf("game %d: %w", game, err)
		}
	}
	return nil
}

func playGame(searcher *search.Searcher, constraints search.Constraints, depthOverride int, rng *rand.Rand, tracePVS bool, gameNum int) error {
	state := board.NewGameStateRandomCorner(rng)
	for !state.IsGameOver() {
		move, err := searcher.FindBestMove(state, constraints, depthOverride)
		if err != nil {
			return err
		}
		next, err := state.ApplyMove(move)
		if err != nil {
			return err
		}
		state = next
		if tracePVS {
			log.Printf("[Search] game=%d move_number=%d cell=%d score_first=%d score_second=%d",
				gameNum, state.MoveNumber(), move, state.ScoreFirst, state.ScoreSecond)
		}
	}
	log.Printf("[Trainer] game=%d moves=%d score_first=%d score_second=%d",
		gameNum, state.MoveNumber(), state.ScoreFirst, state.ScoreSecond)
	return nil
}

// resolveTablePersistence picks the persistence path and Backend for
// --table-backend, defaulting to the flat-file backend under the platform
// data directory when no path is given.
func resolveTablePersistence(backendName, explicitPath string) (string, tt.Backend, error) {
	switch backendName {
	case "", "file":
		path := explicitPath
		if path == "" {
			dir, err := ttstore.DataDir()
			if err != nil {
				return "", nil, fmt.Errorf("resolving default table directory: %w", err)
			}
			path = filepath.Join(dir, "honeycomb.tt")
		}
		return path, nil, nil
	case "badger":
		path := explicitPath
		if path == "" {
			dir, err := ttstore.DefaultTableDir()
			if err != nil {
				return "", nil, fmt.Errorf("resolving default badger directory: %w", err)
			}
			path = dir
		}
		return path, ttstore.Backend{}, nil
	default:
		return "", nil, fmt.Errorf("unknown --table-backend %q (want file or badger)", backendName)
	}
}

// splitArgs separates leading/interspersed --flag arguments from positional
// arguments, since flag.FlagSet alone cannot parse positional args that
// precede flags.
func splitArgs(args []string) (positional, flags []string) {
	for _, a := range args {
		if len(a) >= 2 && a[0] == '-' && a[1] == '-' {
			flags = append(flags, a)
		} else {
			positional = append(positional, a)
		}
	}
	return positional, flags
}
