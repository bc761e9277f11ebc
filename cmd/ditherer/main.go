package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bodgit/ditherer"
	"github.com/bodgit/ditherer/dither"
	"github.com/bodgit/ditherer/palette"
	"github.com/urfave/cli/v2"
)

const defaultDB = "ditherer.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// provider returns the sqlite palette store, or the built-in table if the
// database path is empty. The returned DB is nil in the latter case.
func provider(c *cli.Context) (palette.Provider, *ditherer.DB, error) {
	if c.String("db") == "" {
		return palette.Builtin(), nil, nil
	}
	db, err := ditherer.NewDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}
	return db, db, nil
}

func settings(c *cli.Context) ditherer.Settings {
	return ditherer.Settings{
		Scale:     c.Int("scale"),
		Threshold: float64(c.Int("threshold")) / 100,
		Method:    c.String("method"),
		Palette:   c.String("palette"),
	}
}

func newDitherer(c *cli.Context) (*ditherer.Ditherer, func(), error) {
	p, db, err := provider(c)
	if err != nil {
		return nil, nil, err
	}

	var options []ditherer.Option
	if db != nil && c.Bool("cache") {
		options = append(options, ditherer.WithStore(db))
	}
	if c.IsSet("seed") {
		options = append(options, ditherer.WithSeed(c.Uint64("seed")))
	}

	closer := func() {
		if db != nil {
			db.Close()
		}
	}

	return ditherer.New(p, newLogger(c), options...), closer, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "ditherer"
	app.Usage = "Retro palette dithering utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"DITHERER_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to palette database, empty to use built-in palettes",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	ditherFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "method",
			Aliases: []string{"m"},
			Value:   "floyd_steinberg",
			Usage:   "dithering method",
		},
		&cli.StringFlag{
			Name:    "palette",
			Aliases: []string{"p"},
			Value:   "1bit_gray",
			Usage:   "palette name",
		},
		&cli.IntFlag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Value:   50,
			Usage:   "threshold, 0 to 100",
		},
		&cli.IntFlag{
			Name:    "scale",
			Aliases: []string{"s"},
			Value:   100,
			Usage:   "resize percentage applied before dithering",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "seed for the random methods",
		},
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "store results in the database and reuse them",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "apply",
			Usage:     "Dither a single image",
			ArgsUsage: "FILE",
			Flags:     ditherFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				d, closer, err := newDitherer(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				file, err := d.ProcessFile(c.Args().First(), settings(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Fprintln(c.App.Writer, file)

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Dither every image in a directory",
			Description: "Images are treated as video frames in file name order and written as result_NNNN.png",
			ArgsUsage:   "DIRECTORY",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Value: runtime.GOMAXPROCS(0),
					Usage: "number of frames processed concurrently",
				},
			}, ditherFlags...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				d, closer, err := newDitherer(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				dir, err := d.ProcessDirectory(c.Args().First(), settings(c), c.Int("workers"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Fprintln(c.App.Writer, dir)

				return nil
			},
		},
		{
			Name:  "methods",
			Usage: "List dithering methods",
			Action: func(c *cli.Context) error {
				for _, m := range dither.Methods() {
					fmt.Fprintln(c.App.Writer, m)
				}
				return nil
			},
		},
		{
			Name:  "palettes",
			Usage: "List palettes",
			Action: func(c *cli.Context) error {
				names := palette.Builtin().Names()
				if c.String("db") != "" {
					db, err := ditherer.NewDB(c.String("db"))
					if err != nil {
						return cli.Exit(err, 1)
					}
					defer db.Close()

					if names, err = db.Names(); err != nil {
						return cli.Exit(err, 1)
					}
				}
				for _, name := range names {
					fmt.Fprintln(c.App.Writer, name)
				}
				return nil
			},
		},
		{
			Name:      "import",
			Usage:     "Import palettes from JSON",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := ditherer.NewDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				if err := db.ImportJSON(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}
				newLogger(c).Printf("Imported palettes from \"%s\"\n", c.Args().First())

				return nil
			},
		},
		{
			Name:  "export",
			Usage: "Export palettes as JSON",
			Action: func(c *cli.Context) error {
				db, err := ditherer.NewDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				if err := db.ExportJSON(c.App.Writer); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
