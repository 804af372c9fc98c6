// Command speedread processes text for RSVP reading from the terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/dgallion1/speedread/internal/chunker"
	"github.com/dgallion1/speedread/internal/fetch"
	"github.com/dgallion1/speedread/internal/orp"
	"github.com/dgallion1/speedread/internal/pacing"
	"github.com/dgallion1/speedread/internal/parser"
	"github.com/dgallion1/speedread/internal/pipeline"
	"github.com/dgallion1/speedread/internal/stream"
)

// CLI defines the command-line interface for speedread.
var CLI struct {
	Exceptions string `name:"exceptions" short:"e" help:"Exception words file (word=position per line)" type:"existingfile"`
	Verbose    bool   `short:"v" help:"Log debug output to stderr"`

	Process ProcessCmd `cmd:"" help:"Turn text into a paced display sequence"`
	ORP     ORPCmd     `cmd:"" name:"orp" help:"Show the focal letter of words"`
	Extract ExtractCmd `cmd:"" help:"Extract readable text from a document or URL"`
	Play    PlayCmd    `cmd:"" help:"Flash text in the terminal at a reading speed"`
	Speeds  SpeedsCmd  `cmd:"" help:"List reading speed presets"`
}

// env carries what every command needs.
type env struct {
	proc *pipeline.Processor
	log  *slog.Logger
	out  io.Writer
}

func newEnv() (*env, error) {
	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	calc := orp.NewCalculator(nil)
	if CLI.Exceptions != "" {
		exc, err := orp.LoadExceptions(CLI.Exceptions)
		if err != nil {
			return nil, err
		}
		calc = orp.NewCalculator(exc)
	}
	proc := pipeline.NewProcessor(pipeline.Options{}, orp.NewStore(calc), nil, log)
	return &env{proc: proc, log: log, out: os.Stdout}, nil
}

// ProcessCmd prints the display sequence for a text.
type ProcessCmd struct {
	Input      string `arg:"" optional:"" default:"-" help:"File, URL or - for stdin"`
	NoHeadings bool   `name:"no-headings" help:"Treat headings as ordinary words"`
	JSON       bool   `name:"json" help:"Print the full result as JSON"`
}

func (c *ProcessCmd) Run(e *env) error {
	text, err := loadText(context.Background(), e.log, c.Input)
	if err != nil {
		return err
	}
	res, err := e.proc.ProcessText(text, !c.NoHeadings)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	for _, rec := range res.ORPData {
		if rec.Word == "" {
			fmt.Fprintln(e.out)
			continue
		}
		marker := ""
		if rec.IsHeading {
			marker = "  #"
		}
		fmt.Fprintf(e.out, "%s[%s]%s%s\n", rec.Before, rec.ORP, rec.After, marker)
	}
	fmt.Fprintf(e.out, "\n%s words, %s slots, %.1fs at 300 wpm\n",
		humanize.Comma(int64(res.Stats.OriginalCount)),
		humanize.Comma(int64(res.Stats.ProcessedCount)),
		res.Stats.EstimatedTime300WPM)
	return nil
}

// ORPCmd prints focal splits for individual words.
type ORPCmd struct {
	Words []string `arg:"" help:"Words to split"`
}

func (c *ORPCmd) Run(e *env) error {
	for _, w := range c.Words {
		split, err := e.proc.CalculateORP(w)
		if err != nil {
			return fmt.Errorf("%s: %w", w, err)
		}
		fmt.Fprintf(e.out, "%s\t%s[%s]%s\t%d\n", split.Word, split.Before, split.ORP, split.After, split.Position)
	}
	return nil
}

// ExtractCmd prints the cleaned text of a document.
type ExtractCmd struct {
	Input   string        `arg:"" help:"File or http(s) URL"`
	Timeout time.Duration `default:"15s" help:"Timeout for URL fetches"`
	JSON    bool          `name:"json" help:"Print extraction metadata as JSON"`
	Session int           `name:"sessions" help:"List reading sessions of about N words instead of the text"`
}

func (c *ExtractCmd) Run(e *env) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	ext, err := extract(ctx, e.log, c.Input)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(ext)
	}
	if c.Session > 0 {
		for _, ch := range chunker.Split(ext.Document, chunker.Config{TargetWords: c.Session}) {
			where := strings.Join(ch.Breadcrumb, " > ")
			if where == "" {
				where = ext.Title
			}
			secs := pacing.EstimateReadingTime(ch.Words, pacing.ReadingSpeeds["average"])
			dur := time.Duration(secs * float64(time.Second)).Round(time.Second)
			fmt.Fprintf(e.out, "%3d  %-50s %8s words  ~%s\n", ch.Index+1, where, humanize.Comma(int64(ch.Words)), dur)
		}
		return nil
	}
	fmt.Fprintln(e.out, ext.Text)
	fmt.Fprintf(os.Stderr, "%s (%s): %s words, %s\n", ext.Title, ext.Format,
		humanize.Comma(int64(ext.Words)), humanize.IBytes(uint64(len(ext.Text))))
	return nil
}

// PlayCmd flashes words on one terminal line.
type PlayCmd struct {
	Input      string `arg:"" optional:"" default:"-" help:"File, URL or - for stdin"`
	WPM        int    `name:"wpm" short:"w" help:"Words per minute (overrides --speed)"`
	Speed      string `name:"speed" short:"s" default:"average" help:"Speed preset"`
	NoHeadings bool   `name:"no-headings" help:"Treat headings as ordinary words"`
}

func (c *PlayCmd) Run(e *env) error {
	wpm := c.WPM
	if wpm == 0 {
		preset, ok := pacing.ReadingSpeeds[c.Speed]
		if !ok {
			return fmt.Errorf("unknown speed %q (want one of %s)", c.Speed, strings.Join(pacing.SpeedNames(), ", "))
		}
		wpm = preset
	}
	if err := pacing.ValidateWPM(wpm); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	text, err := loadText(ctx, e.log, c.Input)
	if err != nil {
		return err
	}
	res, err := e.proc.ProcessText(text, !c.NoHeadings)
	if err != nil {
		return err
	}

	frames := stream.Frames(res)
	// pad so the focal letter stays in one column
	const pad = 12
	err = stream.Play(ctx, len(frames), stream.Interval(wpm), func(i int) error {
		f := frames[i]
		indent := max(pad-len([]rune(f.Before)), 0)
		_, err := fmt.Fprintf(e.out, "\r\033[K%s%s\033[1;31m%s\033[0m%s",
			strings.Repeat(" ", indent), f.Before, f.ORP, f.After)
		return err
	})
	fmt.Fprintln(e.out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// SpeedsCmd lists the presets.
type SpeedsCmd struct{}

func (c *SpeedsCmd) Run(e *env) error {
	for _, name := range pacing.SpeedNames() {
		wpm := pacing.ReadingSpeeds[name]
		fmt.Fprintf(e.out, "%-13s %5d wpm  %v per word\n", name, wpm, stream.Interval(wpm))
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func extract(ctx context.Context, log *slog.Logger, input string) (*parser.Extraction, error) {
	if isURL(input) {
		c := fetch.NewClient(fetch.DefaultTimeout, fetch.DefaultMaxBytes, log)
		c.AllowPrivate = true
		defer c.Close()
		return c.Extract(ctx, input)
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.Extract(f, input, parser.Options{PDFFallback: true})
}

// loadText reads raw text from stdin, or extracts it from a file or URL.
func loadText(ctx context.Context, log *slog.Logger, input string) (string, error) {
	if input == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	ext, err := extract(ctx, log, input)
	if err != nil {
		return "", err
	}
	return ext.Text, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("speedread"),
		kong.Description("RSVP speed reading: focal-letter splits and paced word sequences"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	e, err := newEnv()
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(e))
}
