package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/leofalp/aitask/core/history"
	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
)

const usageText = `usage: aitask [-config file] <command> [flags] [prompt...]

commands:
  chat       stream a chat reply
  complete   stream a text completion
  speech     synthesize speech to a file
  kinds      list task kinds
  providers  list registered providers
  history    show recent records
`

// command runs with the app and the arguments after its name.
type command func(ctx context.Context, a *app, args []string, stdout io.Writer) error

var commands = map[string]command{
	"chat":      runChat,
	"complete":  runComplete,
	"speech":    runSpeech,
	"kinds":     runKinds,
	"providers": runProviders,
	"history":   runHistory,
}

// run parses global flags, builds the app and dispatches to a command. It
// returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("aitask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }
	configPath := fs.String("config", "", "YAML settings and model catalog")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "aitask: unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	a, err := newApp(ctx, *configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "aitask: %v\n", err)
		return 1
	}
	defer a.close(context.WithoutCancel(ctx))

	if err := cmd(ctx, a, fs.Args()[1:], stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "aitask: %v\n", err)
		return 1
	}
	return 0
}

// target holds the flags shared by every task command.
type target struct {
	provider string
	model    string
	sender   string
}

func (t *target) register(fs *flag.FlagSet) {
	fs.StringVar(&t.provider, "provider", "", "provider id or display name")
	fs.StringVar(&t.model, "model", "", "model id")
	fs.StringVar(&t.sender, "sender", "cli", "sender tag stored in history")
}

// providerID parses the -provider flag. Empty means the configured default.
func (t *target) providerID() (ai.ProviderID, error) {
	if t.provider == "" {
		return ai.ProviderNone, nil
	}
	id, err := ai.ParseProvider(t.provider)
	if err != nil {
		return ai.ProviderNone, err
	}
	if !id.IsDispatchable() {
		return ai.ProviderNone, fmt.Errorf("provider %q cannot run tasks", t.provider)
	}
	return id, nil
}

func newFlagSet(name string, stdout io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	return fs
}

func prompt(fs *flag.FlagSet) (string, error) {
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Fprintf(fs.Output(), "%s: a prompt is required\n", fs.Name())
		return "", errUsage
	}
	return text, nil
}

/*
	TEXT
*/

func runChat(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	var t target
	fs := newFlagSet("chat", stdout)
	t.register(fs)
	system := fs.String("system", "", "system prompt")
	attach := fs.String("attach", "", "file attached to the message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := prompt(fs)
	if err != nil {
		return err
	}
	provider, err := t.providerID()
	if err != nil {
		return err
	}

	b := task.NewChat().User(text).Provider(provider).Sender(t.sender)
	if *system != "" {
		b.System(*system)
	}
	if *attach != "" {
		b.AttachFile(*attach)
	}
	if t.model != "" {
		b.ModelID(t.model)
	}
	_, err = b.Stream(ctx, a.dispatcher, printer(stdout))
	return err
}

func runComplete(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	var t target
	fs := newFlagSet("complete", stdout)
	t.register(fs)
	system := fs.String("system", "", "system prompt")
	maxTokens := fs.Int("max-tokens", 0, "completion token limit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := prompt(fs)
	if err != nil {
		return err
	}
	provider, err := t.providerID()
	if err != nil {
		return err
	}

	b := task.NewCompletion(text).Provider(provider).Sender(t.sender)
	if *system != "" {
		b.System(*system)
	}
	if *maxTokens > 0 {
		b.MaxTokens(*maxTokens)
	}
	if t.model != "" {
		b.ModelID(t.model)
	}
	_, err = b.Stream(ctx, a.dispatcher, printer(stdout))
	return err
}

// printer writes deltas as they arrive and a newline once the stream ends.
func printer(w io.Writer) *stream.Handler {
	h := stream.NewHandler()
	_ = h.OnText(func(delta string) { fmt.Fprint(w, delta) })
	_ = h.OnComplete(func(*ai.ChatResponse) { fmt.Fprintln(w) })
	return h
}

/*
	AUDIO
*/

func runSpeech(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	var t target
	fs := newFlagSet("speech", stdout)
	t.register(fs)
	voice := fs.String("voice", "", "voice id")
	out := fs.String("o", "", "output file or directory")
	mimeType := fs.String("mime", "", "output mime type, e.g. audio/wav")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := prompt(fs)
	if err != nil {
		return err
	}
	provider, err := t.providerID()
	if err != nil {
		return err
	}

	b := task.NewSpeech(text).Provider(provider).Sender(t.sender).Persist(true)
	if *voice != "" {
		b.Voice(*voice)
	}
	if *out != "" {
		b.SaveTo(*out)
	}
	if *mimeType != "" {
		b.OutputMime(*mimeType)
	}
	if t.model != "" {
		b.ModelID(t.model)
	}
	res, err := b.Execute(ctx, a.dispatcher)
	if err != nil {
		return err
	}
	if res.Audio == nil {
		return errors.New("speech: no audio returned")
	}
	if path := res.Audio.Path(); path != "" {
		fmt.Fprintln(stdout, path)
		return nil
	}
	fmt.Fprintf(stdout, "%d bytes of %s kept in memory\n", res.Audio.Size(), res.Audio.MimeType())
	return nil
}

/*
	LISTINGS
*/

func runKinds(_ context.Context, _ *app, _ []string, stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tKEYWORD\tHISTORY\tDEFAULT MIME")
	for _, kind := range task.Kinds() {
		info := kind.Info()
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", info.Name, info.Keyword, info.HistoryEligible, info.DefaultMime)
	}
	return tw.Flush()
}

func runProviders(_ context.Context, a *app, _ []string, stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tNAME\tDEFAULT FOR")
	for _, id := range a.dispatcher.Registry().Providers() {
		var defaults []string
		for _, kind := range task.Kinds() {
			if kind.Info().Internal {
				continue
			}
			if a.settings.DefaultProvider(kind) == id {
				defaults = append(defaults, kind.String())
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, id.DisplayName(), strings.Join(defaults, ","))
	}
	return tw.Flush()
}

func runHistory(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	fs := newFlagSet("history", stdout)
	n := fs.Int("n", 10, "number of records")
	asJSON := fs.Bool("json", false, "print one JSON record per line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reader, ok := a.history.(history.Reader)
	if !ok {
		return errors.New("history: the configured backend cannot be listed")
	}
	records, err := reader.Recent(ctx, *n)
	if err != nil {
		return err
	}
	if *asJSON {
		for _, rec := range records {
			fmt.Fprintln(stdout, utils.JSONToString(rec))
		}
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tPROVIDER\tMODEL\tSENDER\tCOST")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.6f\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Kind, rec.Provider, rec.ModelID, rec.Sender, rec.Cost)
	}
	return tw.Flush()
}
