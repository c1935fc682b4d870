package cli

import (
	"fmt"
	"io"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bjaus/rectab"
	"github.com/bjaus/rectab/sakila"
	"github.com/bjaus/rectab/sqlrows"
)

// referenceLayout is the accepted --at format.
const referenceLayout = "2006-01-02T15:04:05"

// FilmsOptions holds flags for the films command.
type FilmsOptions struct {
	ConfigPath  string
	FormatsPath string
	Driver      string
	Database    string
	StoreID     int
	At          string
}

// NewFilmsCommand creates the films command.
func NewFilmsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilmsOptions{}

	cmd := &cobra.Command{
		Use:   "films",
		Short: "List films in stock at a store",
		Long: `List every film with at least one copy in stock at a store at a
reference time, with the number of copies in stock.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilms(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "connection config file (YAML)")
	cmd.Flags().StringVarP(&opts.FormatsPath, "formats", "f", "", "column formats file (YAML)")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "database driver (mysql|sqlite3), overrides config")
	cmd.Flags().StringVar(&opts.Database, "database", "", "database name or sqlite file, overrides config")
	cmd.Flags().IntVarP(&opts.StoreID, "store", "s", 1, "store ID")
	cmd.Flags().StringVar(&opts.At, "at", "", "reference time, "+referenceLayout+" (default now)")

	return cmd
}

func runFilms(rootOpts *RootOptions, opts *FilmsOptions, cmd *cobra.Command) error {
	logger, err := rootOpts.Logger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	at := time.Now().UTC().Truncate(time.Second)
	if opts.At != "" {
		if at, err = time.Parse(referenceLayout, opts.At); err != nil {
			return fmt.Errorf("invalid --at %q: %w", opts.At, err)
		}
	}

	cfg, err := loadConnection(opts)
	if err != nil {
		return err
	}

	var formats map[string]string
	if opts.FormatsPath != "" {
		if formats, err = rectab.LoadFormatsFile(opts.FormatsPath); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	db, err := sqlrows.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Debug("running films in stock",
		zap.String("driver", cfg.Driver),
		zap.Int("store", opts.StoreID),
		zap.Time("at", at),
	)
	films, err := sakila.FilmsInStock(ctx, db, opts.StoreID, at, sqlrows.WithLogger(logger))
	if err != nil {
		return err
	}
	return writeTable(cmd.OutOrStdout(), films, formats, logger)
}

func loadConnection(opts *FilmsOptions) (sqlrows.Config, error) {
	var cfg sqlrows.Config
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = sqlrows.LoadConfig(opts.ConfigPath); err != nil {
			return sqlrows.Config{}, err
		}
	}
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

func writeTable(w io.Writer, films []sakila.FilmInStock, formats map[string]string, logger *zap.Logger) error {
	out, err := rectab.Render(films, formats, rectab.WithLogger(logger))
	if err != nil || out == "" {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
