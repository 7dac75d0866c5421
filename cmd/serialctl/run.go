package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/catalog"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/logging"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/binary"
	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/frame"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/text"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/xmlwriter"
)

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("serialctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "TOML config file")
	from := fs.String("from", "", "input format: binary|text|frame")
	to := fs.String("to", "", "output format: binary|text|xml|frame")
	in := fs.String("in", "", "input path (default stdin)")
	out := fs.String("out", "", "output path (default stdout)")
	strict := fs.Bool("strict", false, "report why an input could not be read")
	list := fs.Bool("list", false, "list the known type names and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "from":
			cfg.From = *from
		case "to":
			cfg.To = *to
		case "strict":
			cfg.Strict = *strict
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logging.SetLogger(logger)
	defer logging.SetLogger(nil)

	reg, err := catalog.NewRegistry()
	if err != nil {
		return err
	}
	if *list {
		for _, name := range reg.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	input, err := readInput(*in, stdin)
	if err != nil {
		return err
	}
	instance, t, err := decode(input, cfg, meta.NewRoot(reg))
	if err != nil {
		return err
	}
	output, err := encode(instance, t, cfg)
	if err != nil {
		return err
	}
	logger.Debug("converted",
		zap.String("from", cfg.From),
		zap.String("to", cfg.To),
		zap.Int("in_bytes", len(input)),
		zap.Int("out_bytes", len(output)))
	return writeOutput(*out, stdout, output)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func decode(input []byte, cfg Config, root *meta.Root) (any, meta.Type, error) {
	var d meta.Deserializer
	switch cfg.From {
	case "binary":
		d = binary.NewDeserializer(input)
	case "text":
		d = text.NewDeserializer(string(input))
	case "frame":
		fd, _, err := frame.Deserializer(input, cfg.frameOptions())
		if err != nil {
			return nil, nil, err
		}
		d = fd
	default:
		return nil, nil, fmt.Errorf("unknown input format %q", cfg.From)
	}

	if cfg.Strict {
		return root.Resolve(d)
	}
	instance, t, ok := root.Deserialize(d)
	if !ok {
		return nil, nil, errors.Join(serrors.ErrNoResult, errors.New("input could not be read (rerun with -strict for the cause)"))
	}
	return instance, t, nil
}

func encode(instance any, t meta.Type, cfg Config) ([]byte, error) {
	switch cfg.To {
	case "binary":
		return binary.Marshal(instance, t)
	case "text":
		s, err := text.Marshal(instance, t)
		if err != nil {
			return nil, err
		}
		return []byte(s + "\n"), nil
	case "xml":
		s, err := xmlwriter.Marshal(instance, t)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	case "frame":
		return frame.Encode(instance, t, cfg.frameOptions())
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.To)
	}
}
