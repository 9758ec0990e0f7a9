package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"gennsing/pkg/gennsing"
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "pool":
		return runPool(ctx, args[1:])
	case "ledger":
		return runLedger(ctx, args[1:])
	case "kill":
		return runKill(ctx, args[1:])
	case "autoplay":
		return runAutoplay(ctx, args[1:])
	case "play":
		return runPlay(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "games":
		return runGames(ctx, args[1:])
	case "config":
		return runConfig(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, cfg, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	pool, err := client.Pool(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "initialized game=%s store=%s path=%s brains=%d\n", client.Game(), cfg.Store.Kind, cfg.StorePath(), len(pool))
	return nil
}

func runPool(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pool", flag.ContinueOnError)
	common := addCommonFlags(fs)
	jsonOut := fs.Bool("json", false, "emit the pool as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, _, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	pool, err := client.Pool(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		type poolItem struct {
			Rank     int     `json:"rank"`
			Name     string  `json:"name"`
			Wins     float64 `json:"wins"`
			Losses   float64 `json:"losses"`
			WinShare float64 `json:"win_share"`
		}
		items := make([]poolItem, 0, len(pool))
		for i, p := range pool {
			items = append(items, poolItem{Rank: i + 1, Name: p.Name, Wins: p.Wins, Losses: p.Losses, WinShare: p.WinShare})
		}
		return encodeJSON(items)
	}
	for i, p := range pool {
		fmt.Fprintf(stdout, "%-5s %-8s wins=%s losses=%s share=%.1f%%\n",
			humanize.Ordinal(i+1),
			p.Name,
			humanize.Ftoa(p.Wins),
			humanize.Ftoa(p.Losses),
			100*p.WinShare,
		)
	}
	return nil
}

func runLedger(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	common := addCommonFlags(fs)
	name := fs.String("name", "", "pool member")
	jsonOut := fs.Bool("json", false, "emit the ledger as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("ledger requires --name")
	}

	client, _, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ledger, err := client.Ledger(ctx, *name)
	if err != nil {
		return err
	}
	if *jsonOut {
		return encodeJSON(ledger)
	}
	if len(ledger.Entries) == 0 {
		fmt.Fprintf(stdout, "%s has no games on record\n", *name)
		return nil
	}
	for _, entry := range ledger.Entries {
		fmt.Fprintf(stdout, "opponent=%s wins=%s losses=%s\n", entry.Opponent, humanize.Ftoa(entry.Wins), humanize.Ftoa(entry.Losses))
	}
	return nil
}

func runKill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("kill", flag.ContinueOnError)
	common := addCommonFlags(fs)
	name := fs.String("name", "", "pool member to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("kill requires --name")
	}

	client, _, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Kill(ctx, *name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "killed %s\n", *name)
	return nil
}

func runAutoplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("autoplay", flag.ContinueOnError)
	common := addCommonFlags(fs)
	iterations := fs.Int("iterations", 0, "stop after this many episodes")
	stall := fs.Int("stall", 0, "stop after this many episodes without a new best performance")
	target := fs.Float64("target", 0, "stop once an episode reaches this performance")
	minPlayers := fs.Int("min-players", 0, "fewest players per episode")
	maxPlayers := fs.Int("max-players", 0, "most players per episode")
	prefer := fs.String("prefer", "", "comma separated pool members to seat first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, _, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	showProgress := isTerminal(stderr)
	req := gennsing.SessionRequest{
		Iterations: *iterations,
		Stall:      *stall,
		Target:     *target,
		MinPlayers: *minPlayers,
		MaxPlayers: *maxPlayers,
		Preferred:  splitNames(*prefer),
	}
	if showProgress {
		req.Progress = func(iteration int, completion float64) {
			fmt.Fprintf(stderr, "\repisode %s %3.0f%%", humanize.Comma(int64(iteration)), completion)
		}
	}

	summary, err := client.Autoplay(ctx, req)
	if showProgress {
		fmt.Fprintln(stderr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintf(stdout, "run_id=%s episodes=%s best_performance=%.6f stop=%s last_winner=%s\n",
		summary.RunID,
		humanize.Comma(int64(summary.Episodes)),
		summary.BestPerformance,
		summary.StopReason,
		summary.LastWinner,
	)
	if summary.OutputDir != "" {
		fmt.Fprintf(stdout, "output=%s\n", summary.OutputDir)
	}
	return nil
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	common := addCommonFlags(fs)
	name := fs.String("name", "human", "your seat name")
	prefer := fs.String("prefer", "", "comma separated pool members to play against")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, cfg, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Play(ctx, gennsing.PlayRequest{
		Humans:    []gennsing.Seat{{Name: *name, In: stdin, Out: stdout}},
		Preferred: splitNames(*prefer),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "standings:")
	for i, s := range result.Ranking {
		fmt.Fprintf(stdout, "%-5s %-8s score=%s\n", humanize.Ordinal(i+1), s.Name, humanize.Ftoa(s.Score))
	}
	for _, review := range result.Reviews {
		fmt.Fprintf(stdout, "\nreview for %s:\n%s", review.Player, review.Text)
		if cfg.Session.Output == "" {
			continue
		}
		path, err := writeReview(cfg.Session.Output, review, time.Now().UTC())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "review saved to %s\n", path)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	common := addCommonFlags(fs)
	file := fs.String("file", "", "write ledgers CSV to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, _, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *file == "" {
		return client.ExportLedgers(ctx, stdout)
	}
	f, err := os.Create(*file)
	if err != nil {
		return err
	}
	if err := client.ExportLedgers(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported ledgers to %s\n", *file)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	common := addCommonFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, _, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return encodeJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs found")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "run_id=%s created_at=%s game=%s seed=%d episodes=%d best_performance=%.6f stop=%s last_winner=%s\n",
			r.RunID,
			r.CreatedAtUTC,
			r.Game,
			r.Seed,
			r.Episodes,
			r.BestPerformance,
			r.StopReason,
			r.LastWinner,
		)
	}
	return nil
}

func runGames(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("games", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range gennsing.Games() {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func runConfig(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	common := addCommonFlags(fs)
	file := fs.String("file", "gennsing.yaml", "where to write the effective configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if err := cfg.WriteYAML(*file); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", *file)
	return nil
}

func writeReview(outDir string, review gennsing.ReviewItem, now time.Time) (string, error) {
	dir := filepath.Join(outDir, "reviews")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", review.Player, now.Format("20060102T150405.000000000Z")))
	if err := os.WriteFile(path, []byte(review.Text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func encodeJSON(value any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: gennsingctl <init|pool|ledger|kill|autoplay|play|export|runs|games|config> [flags]", msg)
}
