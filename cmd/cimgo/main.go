package main

import (
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/cartokit/cimgo/cim"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

var (
	version = versioninfo.Short()
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:  "cimgo",
		Usage: "generate a statically-typed Go mirror of the CIM object model",
	}

	app.Commands = []*cli.Command{
		&cli.Command{
			Name:      "generate",
			Usage:     "read CIM model dump files and emit the generated package",
			ArgsUsage: "[<model-file-or-dir>...]",
			Action:    runGenerate,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "model",
					Usage:   "model dump file or directory to load (repeatable)",
					EnvVars: []string{"CIMGO_MODEL"},
				},
				&cli.StringFlag{
					Name:    "outdir",
					Usage:   "directory to write the generated package to",
					Value:   "./cim",
					EnvVars: []string{"CIMGO_OUTDIR"},
				},
				&cli.StringFlag{
					Name:    "package",
					Usage:   "name of the generated root package",
					Value:   "cim",
					EnvVars: []string{"CIMGO_PACKAGE"},
				},
				&cli.StringFlag{
					Name:     "import-prefix",
					Usage:    "import path of the generated root package",
					Required: true,
					EnvVars:  []string{"CIMGO_IMPORT_PREFIX"},
				},
			},
		},
		&cli.Command{
			Name:  "version",
			Usage: "print version",
			Action: func(cctx *cli.Context) error {
				fmt.Println(version)
				return nil
			},
		},
	}

	return app.Run(args)
}

func runGenerate(cctx *cli.Context) error {
	args := append(cctx.StringSlice("model"), cctx.Args().Slice()...)
	if len(args) == 0 {
		return fmt.Errorf("at least one model dump file or directory is required (--model or positional)")
	}

	src := cim.NewBaseSource()
	for _, a := range args {
		st, err := os.Stat(a)
		if err != nil {
			return err
		}
		if st.IsDir() {
			err = src.LoadDirectory(a)
		} else {
			err = src.LoadFile(a)
		}
		if err != nil {
			return fmt.Errorf("loading model dump %q: %w", a, err)
		}
	}

	res, err := cim.Generate(&src, cim.Options{
		Package:      cctx.String("package"),
		ImportPrefix: cctx.String("import-prefix"),
	})
	if err != nil {
		return err
	}

	outdir := cctx.String("outdir")
	if err := cim.WriteFiles(res, outdir); err != nil {
		return err
	}

	for _, w := range res.Warnings {
		slog.Warn("generation warning", "code", w.Code, "detail", w.String())
	}
	slog.Info("generation complete", "files", len(res.Files), "warnings", len(res.Warnings), "outdir", outdir)
	return nil
}
