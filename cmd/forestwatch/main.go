package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/forestwatch/internal/chart"
	"github.com/lox/forestwatch/internal/clean"
	"github.com/lox/forestwatch/internal/dataset"
	"github.com/lox/forestwatch/internal/fetch"
	"github.com/lox/forestwatch/internal/models"
	"github.com/lox/forestwatch/internal/report"
	"github.com/lox/forestwatch/internal/store"
)

type CLI struct {
	Clean  CleanCmd  `cmd:"" help:"Clean the raw forest cover dataset."`
	Report ReportCmd `cmd:"" help:"Aggregate the cleaned dataset and render trend charts."`
	Fetch  FetchCmd  `cmd:"" help:"Download the raw dataset from an HTTP or FTP source."`

	Verbose bool `short:"v" help:"Enable debug logging."`
}

type CleanCmd struct {
	Input  string `help:"Raw dataset path." default:"global_forest_cover.csv"`
	Output string `help:"Cleaned dataset path." default:"global_forest_cover_clean.csv"`
	DB     string `help:"SQLite archive to refresh with the cleaned rows."`
}

func (c *CleanCmd) Run(logger *slog.Logger) error {
	cleaner := clean.New(logger)
	cleaned, _, err := cleaner.CleanFile(c.Input, c.Output)
	if err != nil {
		return err
	}

	if c.DB != "" {
		st, err := store.Open(c.DB)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.ReplaceAll(cleaned.Records); err != nil {
			return err
		}
		logger.Info("archived cleaned measurements", "db", c.DB, "rows", len(cleaned.Records))
	}
	return nil
}

type ReportCmd struct {
	Input    string `help:"Cleaned dataset path." default:"global_forest_cover_clean.csv"`
	Out      string `help:"Trend chart output path." default:"forest_trend.png"`
	Regional string `help:"Also render a per-region chart to this path."`
	DB       string `help:"Read measurements from a SQLite archive instead of the CSV."`
}

func (c *ReportCmd) Run(logger *slog.Logger) error {
	var (
		table models.Table
		err   error
	)
	if c.DB != "" {
		st, err := store.Open(c.DB)
		if err != nil {
			return err
		}
		defer st.Close()
		table, err = st.Measurements()
		if err != nil {
			return err
		}
		logger.Info("loaded cleaned data", "db", c.DB, "rows", len(table.Records))
	} else {
		table, err = dataset.Load(c.Input)
		if err != nil {
			return err
		}
		logger.Info("loaded cleaned data", "path", c.Input, "rows", len(table.Records))
	}

	reporter := report.New(logger)
	trend := reporter.GlobalTrend(table)
	if err := chart.RenderTrend(trend, c.Out); err != nil {
		return err
	}
	logger.Info("trend chart written", "path", c.Out)

	if c.Regional != "" {
		series := report.TopRegions(table, 5)
		for _, s := range series {
			logger.Info("top region", "region", s.Region, "years", len(s.Years))
		}
		if err := chart.RenderRegional(series, c.Regional); err != nil {
			return err
		}
		logger.Info("regional chart written", "path", c.Regional)
	}
	return nil
}

type FetchCmd struct {
	URL    string `arg:"" help:"Dataset URL (http, https or ftp)."`
	Output string `help:"Destination path." default:"global_forest_cover.csv"`
}

func (c *FetchCmd) Run(logger *slog.Logger) error {
	return fetch.New(logger).Fetch(context.Background(), c.URL, c.Output)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("forestwatch"),
		kong.Description("Forest cover cleaning and trend reporting pipeline."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.DefaultEnvars("FORESTWATCH"),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := ctx.Run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}
