/*
goapply submits job applications on LinkedIn, Indeed, Naukri, Internshala
and Unstop by driving a Chrome tab.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goapply/goapply/internal/artifacts"
	"github.com/goapply/goapply/internal/browser"
	"github.com/goapply/goapply/internal/config"
	"github.com/goapply/goapply/internal/engine"
	"github.com/goapply/goapply/internal/events"
	"github.com/goapply/goapply/internal/log"
	"github.com/goapply/goapply/internal/output"
	"github.com/goapply/goapply/internal/server"
	"github.com/goapply/goapply/internal/types"
)

var version = "dev"

const name = "goapply"

type VersionFlag string

func (v VersionFlag) Decode(_ *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                       { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

type cli struct {
	Version VersionFlag `short:"v" long:"version" help:"Print the version and exit."`
	Debug   bool        `short:"d" long:"debug" help:"Set log level to 'debug'."`

	Run       RunCmd       `cmd:"" help:"Run one automation session and wait until it is done."`
	Serve     ServeCmd     `cmd:"" help:"Serve the HTTP API that accepts start commands."`
	History   HistoryCmd   `cmd:"" help:"List submitted applications from the configured writer."`
	Platforms PlatformsCmd `cmd:"" help:"List the supported platforms."`
	Validate  ValidateCmd  `cmd:"" help:"Validate the configuration file."`
	Token     TokenCmd     `cmd:"" help:"Issue a bearer token for the HTTP API."`
}

type configFlags struct {
	Config  string `short:"c" default:"./config.yaml" help:"The location of the configuration file." type:"path"`
	EnvFile string `default:".env" help:"A .env file loaded before the configuration is read."`
}

func (f configFlags) load() (*config.Config, error) {
	if err := config.LoadDotEnv(f.EnvFile); err != nil {
		return nil, err
	}
	return config.NewConfig(f.Config)
}

// environment is everything a run needs besides the search criteria.
type environment struct {
	runner     *engine.Runner
	browser    *browser.Browser
	bus        *events.Bus
	writer     output.Writer
	records    chan types.ApplicationRecord
	writerDone chan struct{}
	// forwarding is set when the default logger sends to the bus.
	forwarding bool
}

func newEnvironment(c *config.Config, b *events.Broadcaster) (*environment, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	transport, err := events.NewTransport(c.Events, os.Stdout, b)
	if err != nil {
		return nil, err
	}
	writer, err := output.NewWriter(&c.Writer)
	if err != nil {
		return nil, err
	}
	store, err := artifacts.New(c.Artifacts)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus(transport, c.Events.BufferSize)
	if c.Events.ForwardLogs {
		level, err := c.Events.Level()
		if err != nil {
			bus.Close()
			return nil, err
		}
		log.InitializeDefaultLogger(events.Wrap(bus, level))
	}

	env := &environment{
		bus:        bus,
		writer:     writer,
		records:    make(chan types.ApplicationRecord, 64),
		writerDone: make(chan struct{}),
		browser:    browser.New(c.Browser),
		forwarding: c.Events.ForwardLogs,
	}
	go func() {
		defer close(env.writerDone)
		writer.Write(env.records)
	}()
	env.runner = engine.NewRunner(reg, env.browser, engine.Options{
		Timing:    c.Timing,
		Profile:   c.Profile,
		Events:    bus,
		Records:   env.records,
		Artifacts: store,
	})
	return env, nil
}

// close stops a running automation and flushes records and events.
func (e *environment) close() {
	e.runner.Stop()
	e.runner.Wait()
	close(e.records)
	<-e.writerDone
	if e.forwarding {
		log.InitializeDefaultLogger()
	}
	e.bus.Close()
	e.browser.Close()
}

type RunCmd struct {
	Cfg        configFlags `embed:""`
	Platform   string      `short:"p" help:"The platform to apply on. Defaults to the configured platform."`
	Keywords   string      `short:"k" help:"The search keywords."`
	Location   string      `short:"l" help:"The search location."`
	Target     int         `short:"n" help:"The number of applications to submit."`
	DatePosted string      `help:"Only jobs posted within 24h, week or month."`
	Workplace  []string    `help:"Workplace types: onsite, remote, hybrid."`
	Headless   bool        `help:"Run Chrome without a window."`
	Stdout     bool        `short:"o" help:"Write application records to stdout regardless of the configured writer."`
}

// criteria merges the flags into the configured defaults.
func (r *RunCmd) criteria(c *config.Config) types.SearchCriteria {
	sc := c.Criteria
	if r.Keywords != "" {
		sc.Keywords = r.Keywords
	}
	if r.Location != "" {
		sc.Location = r.Location
	}
	if r.Target > 0 {
		sc.TargetApplicationCount = r.Target
	}
	if r.DatePosted != "" {
		sc.DatePosted = types.DatePosted(strings.ToLower(r.DatePosted))
	}
	if len(r.Workplace) > 0 {
		sc.WorkplaceTypes = nil
		for _, w := range r.Workplace {
			sc.WorkplaceTypes = append(sc.WorkplaceTypes, types.WorkplaceType(strings.ToLower(w)))
		}
	}
	return sc
}

func (r *RunCmd) Run() error {
	c, err := r.Cfg.load()
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	if r.Platform != "" {
		c.Platform = r.Platform
	}
	if r.Headless {
		c.Browser.Headless = true
	}
	if r.Stdout {
		c.Writer.Type = output.STDOUT_WRITER_TYPE
	}
	p, err := types.ParsePlatform(c.Platform)
	if err != nil {
		return err
	}
	sc := r.criteria(c)
	if err := sc.Validate(); err != nil {
		return err
	}

	env, err := newEnvironment(c, nil)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	defer env.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	resp, err := env.runner.Start(ctx, engine.StartCommand{Platform: p, Criteria: sc})
	if err != nil {
		return err
	}
	slog.Info(strings.ToLower(resp.Message), slog.String("run", resp.RunID), slog.String("platform", string(p)))

	done := make(chan struct{})
	go func() {
		env.runner.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Info("interrupted, stopping after the current step")
		env.runner.Stop()
		<-done
	}

	sum := env.runner.Status().Run
	if err := printSummary(os.Stdout, []types.RunSummary{sum}); err != nil {
		return err
	}
	if sum.State == string(engine.StateFailed) {
		return errors.New(sum.Error)
	}
	return nil
}

type ServeCmd struct {
	Cfg  configFlags `embed:""`
	Host string      `help:"Override the configured listen host."`
	Port int         `help:"Override the configured listen port."`
}

func (s *ServeCmd) Run() error {
	c, err := s.Cfg.load()
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	if s.Host != "" {
		c.Server.Host = s.Host
	}
	if s.Port > 0 {
		c.Server.Port = s.Port
	}
	if !slices.Contains(c.Events.Transports, events.SSETransportType) {
		c.Events.Transports = append(c.Events.Transports, events.SSETransportType)
	}
	if c.Server.JWTSecret == "" {
		slog.Warn("no jwt secret configured, the api is unauthenticated", slog.String("addr", c.Server.Addr()))
	}

	b := events.NewBroadcaster(0)
	env, err := newEnvironment(c, b)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	defer env.close()

	reader, _ := env.writer.(output.Reader)
	if reader == nil {
		slog.Info("the configured writer cannot list records, /api/applications is disabled", slog.String("writer", string(c.Writer.Type)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(c.Server, env.runner, b, reader).Run(ctx)
}

type HistoryCmd struct {
	Cfg   configFlags `embed:""`
	Limit int         `short:"n" default:"20" help:"The maximum number of applications to list, 0 lists all."`
}

func (h *HistoryCmd) Run() error {
	c, err := h.Cfg.load()
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	reader, err := output.NewReader(&c.Writer)
	if err != nil {
		return err
	}
	recs, err := reader.List(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	return printHistory(os.Stdout, recs, c.Locale)
}

type PlatformsCmd struct {
	Cfg configFlags `embed:""`
}

func (pc *PlatformsCmd) Run() error {
	c, err := pc.Cfg.load()
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	reg, err := c.Registry()
	if err != nil {
		return err
	}
	return printPlatforms(os.Stdout, reg)
}

type ValidateCmd struct {
	Cfg configFlags `embed:""`
}

func (v *ValidateCmd) Run() error {
	c, err := v.Cfg.load()
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Criteria.Keywords != "" {
		if err := c.Criteria.Validate(); err != nil {
			return fmt.Errorf("criteria: %w", err)
		}
	}
	fmt.Println("configuration is valid")
	return nil
}

type TokenCmd struct {
	Cfg     configFlags   `embed:""`
	Subject string        `short:"s" default:"dashboard" help:"The subject the token is issued to."`
	TTL     time.Duration `default:"24h" help:"How long the token stays valid."`
}

func (t *TokenCmd) Run() error {
	c, err := t.Cfg.load()
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	token, err := server.IssueToken(c.Server.JWTSecret, t.Subject, t.TTL, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			return buildInfo.Main.Version
		}
	}
	return version
}

func main() {
	cli := cli{
		Version: VersionFlag(getVersion()),
	}

	ctx := kong.Parse(&cli,
		kong.Name(name),
		kong.UsageOnError(),
		kong.Vars{
			"version": string(cli.Version),
		})

	log.Debug = cli.Debug
	log.InitializeDefaultLogger()

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
