package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	imageprocessor "github.com/prcd/imageprocessor"
	"github.com/prcd/imageprocessor/internal/config"
	"github.com/prcd/imageprocessor/internal/logging"
	"github.com/prcd/imageprocessor/internal/utils"
	"github.com/prcd/imageprocessor/pkg/imgerr"
	"github.com/prcd/imageprocessor/pkg/processing"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("image-processor", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	in := flags.String("in", "", "input image path (gif/jpeg/png/bmp/tiff/webp)")
	folder := flags.String("folder", "", "existing output directory")
	name := flags.String("name", "", "output file name, extension must match the output format")
	width := flags.String("width", "", "target width in pixels")
	height := flags.String("height", "", "target height in pixels")
	method := flags.String("method", "", "resize method: fill|fit (default from config)")
	quality := flags.String("quality", "", "encoder quality 0-100 (default from config)")
	overwrite := flags.Bool("overwrite", false, "replace an existing output file")
	configPath := flags.String("config", "", "config file (json, yaml or toml)")
	printJSON := flags.Bool("json", false, "print the result as JSON")

	flags.String("log-level", "", "log level: debug|info|warn|error")
	flags.String("log-file", "", "also write logs to this rotating file")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	v := config.NewViper()
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.file", flags.Lookup("log-file"))
	cfg, err := config.Load(v, *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return 1
	}
	defer closer.Close()
	defer logger.Sync()

	p := imageprocessor.New(
		processing.NewProcessorWithConfig(cfg.Processing()),
		imageprocessor.WithLogger(logger.Named("processor")),
		imageprocessor.WithOutputFormat(cfg.OutputFormat()),
		imageprocessor.WithDefaultQuality(cfg.Output.DefaultQuality),
		imageprocessor.WithDefaultMethod(cfg.DefaultMethod()),
	)

	values := map[string]any{"overwrite": *overwrite}
	setIf(values, "input_path", *in)
	setIf(values, "folder", *folder)
	setIf(values, "file_name", *name)
	setIf(values, "width", *width)
	setIf(values, "height", *height)
	setIf(values, "method", *method)
	setIf(values, "quality", *quality)

	if err := p.SetOptions(values); err != nil {
		return fail(logger, stderr, err)
	}
	result, err := p.Process()
	if err != nil {
		return fail(logger, stderr, err)
	}

	if *printJSON {
		js, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(result, "", "  ")
		if err != nil {
			return fail(logger, stderr, err)
		}
		fmt.Fprintln(stdout, string(js))
		return 0
	}
	fmt.Fprintf(stdout, "wrote %s (%dx%d, %s)\n", result.Path, result.Plan.Width, result.Plan.Height, utils.FormatFileSize(int64(result.Bytes)))
	return 0
}

func setIf(values map[string]any, key, v string) {
	if v != "" {
		values[key] = v
	}
}

func fail(logger *zap.Logger, stderr io.Writer, err error) int {
	var e *imgerr.Error
	kind := "unknown"
	if errors.As(err, &e) {
		kind = string(e.Kind)
	}
	logger.Error("image processing failed", zap.String("kind", kind), zap.Error(err))
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}
