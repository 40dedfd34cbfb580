// Command watermark embeds and extracts DCT text watermarks from the shell.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// Version information - set by ldflags during build
var Version = "dev"

// errUsage is returned after usage has been printed for bad arguments.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, svc *watermark.Service, args []string, stdout io.Writer) error
}

var commands = []command{
	{"embed", "hide text in a file: embed [flags] <input> <text>", runEmbed},
	{"extract", "recover hidden text: extract [flags] <input>", runExtract},
	{"capacity", "report per-profile capacity: capacity <input>", runCapacity},
	{"quality", "compare original and watermarked files: quality <original> <watermarked>", runQuality},
	{"test", "embed, attack and extract in memory: test [flags] [input]", runTest},
	{"generate", "write a synthetic carrier: generate [flags] <output>", runGenerate},
	{"profiles", "list profiles and fingerprints", runProfiles},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}
	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "watermark %s\n", Version)
		return nil
	case "--help", "-h", "help":
		printUsage(stdout)
		return nil
	}

	rest, configPath, err := splitConfig(args[1:])
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = os.Getenv("WATERMARK_MCP_CONFIG")
	}
	profiles, err := config.Load(configPath)
	if err != nil {
		return err
	}
	svc := watermark.NewService(profiles)

	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(ctx, svc, rest, stdout)
		}
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
	printUsage(stderr)
	return errUsage
}

// splitConfig removes --config and its value from a subcommand's arguments,
// so it may appear anywhere without every flag set declaring it.
func splitConfig(args []string) (rest []string, path string, err error) {
	rest = make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--":
			return append(rest, args[i:]...), path, nil
		case args[i] == "--config":
			if i+1 == len(args) {
				return nil, "", errors.New("--config needs a file path")
			}
			i++
			path = args[i]
		case strings.HasPrefix(args[i], "--config="):
			path = strings.TrimPrefix(args[i], "--config=")
		default:
			rest = append(rest, args[i])
		}
	}
	return rest, path, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "watermark - hide and recover text in images and rasters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: watermark <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  --config <file>   YAML file of profile overrides (default $WATERMARK_MCP_CONFIG)")
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse parses args and checks the positional argument count.
func parse(fs *pflag.FlagSet, args []string, minArgs, maxArgs int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w", fs.Name(), err)
	}
	rest := fs.Args()
	if len(rest) < minArgs || len(rest) > maxArgs {
		return nil, fmt.Errorf("%s: got %d arguments, want %d to %d", fs.Name(), len(rest), minArgs, maxArgs)
	}
	return rest, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func runEmbed(ctx context.Context, svc *watermark.Service, args []string, stdout io.Writer) error {
	fs := newFlagSet("embed")
	output := fs.StringP("output", "o", "", "output path (default <input>_watermarked)")
	profile := fs.StringP("profile", "p", "", "profile name")
	quality := fs.Int("jpeg-quality", imaging.DefaultJPEGQuality, "JPEG output quality")
	rest, err := parse(fs, args, 2, 2)
	if err != nil {
		return err
	}
	res, err := svc.Embed(ctx, watermark.EmbedRequest{
		InputPath:   rest[0],
		OutputPath:  *output,
		Text:        rest[1],
		Profile:     *profile,
		JPEGQuality: *quality,
	})
	if err != nil {
		return err
	}
	return printJSON(stdout, res)
}

func runExtract(ctx context.Context, svc *watermark.Service, args []string, stdout io.Writer) error {
	fs := newFlagSet("extract")
	profile := fs.StringP("profile", "p", "", "profile name")
	chars := fs.IntP("chars", "n", 0, "expected watermark length in characters")
	textOnly := fs.Bool("text", false, "print only the recovered text")
	rest, err := parse(fs, args, 1, 1)
	if err != nil {
		return err
	}
	res, err := svc.Extract(ctx, watermark.ExtractRequest{InputPath: rest[0], ExpectedChars: *chars, Profile: *profile})
	if err != nil {
		return err
	}
	if *textOnly {
		if !res.Success {
			return errors.New(res.Message)
		}
		_, err := fmt.Fprintln(stdout, res.Text)
		return err
	}
	return printJSON(stdout, res)
}

func runCapacity(ctx context.Context, svc *watermark.Service, args []string, stdout io.Writer) error {
	rest, err := parse(newFlagSet("capacity"), args, 1, 1)
	if err != nil {
		return err
	}
	info, err := svc.Info(ctx, rest[0])
	if err != nil {
		return err
	}
	return printJSON(stdout, info)
}

func runQuality(_ context.Context, svc *watermark.Service, args []string, stdout io.Writer) error {
	rest, err := parse(newFlagSet("quality"), args, 2, 2)
	if err != nil {
		return err
	}
	res, err := svc.Quality(rest[0], rest[1])
	if err != nil {
		return err
	}
	return printJSON(stdout, res)
}

func runTest(ctx context.Context, svc *watermark.Service, args []string, stdout io.Writer) error {
	fs := newFlagSet("test")
	text := fs.StringP("text", "t", watermark.DefaultTestText, "text to embed")
	profile := fs.StringP("profile", "p", "", "profile name")
	attacks := fs.StringSliceP("attack", "a", []string{"none"}, "attacks: none, jpeg[:quality], blur[:radius]")
	pattern := fs.String("pattern", string(watermark.DefaultTestPattern), "generated pattern when no input is given")
	size := fs.IntP("size", "s", watermark.DefaultTestSize, "generated carrier width and height")
	seed := fs.Int64("seed", 0, "seed for the natural pattern")
	rest, err := parse(fs, args, 0, 1)
	if err != nil {
		return err
	}
	req := watermark.RoundTripRequest{
		Pattern: imaging.Pattern(*pattern),
		Width:   *size,
		Height:  *size,
		Seed:    *seed,
		Text:    *text,
		Profile: *profile,
		Attacks: *attacks,
	}
	if len(rest) == 1 {
		req.InputPath = rest[0]
	}
	res, err := svc.RoundTrip(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(stdout, res)
}

func runGenerate(_ context.Context, svc *watermark.Service, args []string, stdout io.Writer) error {
	fs := newFlagSet("generate")
	pattern := fs.String("pattern", string(watermark.DefaultTestPattern), "one of "+strings.Join(imaging.Patterns(), ", "))
	width := fs.IntP("width", "W", watermark.DefaultTestSize, "width in pixels")
	height := fs.IntP("height", "H", watermark.DefaultTestSize, "height in pixels")
	seed := fs.Int64("seed", 0, "seed for the natural pattern")
	depth := fs.Int("depth", 8, "raster bit depth (8 or 16)")
	rest, err := parse(fs, args, 1, 1)
	if err != nil {
		return err
	}
	res, err := svc.Generate(watermark.GenerateRequest{
		OutputPath: rest[0],
		Pattern:    imaging.Pattern(*pattern),
		Width:      *width,
		Height:     *height,
		Seed:       *seed,
		Depth:      *depth,
	})
	if err != nil {
		return err
	}
	return printJSON(stdout, res)
}

type profileRow struct {
	Name        string `json:"name"`
	Default     bool   `json:"default"`
	Fingerprint string `json:"fingerprint"`
}

func runProfiles(_ context.Context, svc *watermark.Service, args []string, stdout io.Writer) error {
	if _, err := parse(newFlagSet("profiles"), args, 0, 0); err != nil {
		return err
	}
	profiles := svc.Profiles()
	rows := make([]profileRow, 0, len(profiles.Names()))
	for _, name := range profiles.Names() {
		cfg, err := profiles.Get(name)
		if err != nil {
			return err
		}
		rows = append(rows, profileRow{Name: name, Default: name == profiles.DefaultName(), Fingerprint: cfg.Fingerprint()})
	}
	return printJSON(stdout, rows)
}
