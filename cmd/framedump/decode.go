package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/safebuf/bytebuf"
	"github.com/danmuck/safebuf/internal/auth"
	"github.com/danmuck/safebuf/internal/config"
	"github.com/danmuck/safebuf/internal/observability"
	"github.com/danmuck/safebuf/internal/protocol/compress"
	"github.com/danmuck/safebuf/internal/protocol/frame"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "print every frame in a capture file",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "yaml or text"},
			&cli.BoolFlag{Name: "no-decompress", Usage: "leave compressed payloads packed"},
			&cli.StringFlag{Name: "metrics-out", Usage: "write decode metrics in textfile format"},
			&cli.StringFlag{Name: "auth-token", Usage: "report frames whose auth block differs"},
		},
		Action: runDecode,
	}
}

func runDecode(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("decode: expected one input file")
	}
	cfg := dumpConfig(c)
	if c.IsSet("output") {
		cfg.Output = strings.ToLower(c.String("output"))
	}
	if c.Bool("no-decompress") {
		cfg.Decompress = false
	}
	if c.IsSet("metrics-out") {
		cfg.MetricsOut = c.String("metrics-out")
	}
	if c.IsSet("auth-token") {
		cfg.AuthToken = c.String("auth-token")
	}
	if err := config.ValidateDumpConfig(cfg); err != nil {
		return err
	}

	data, err := readInput(c.Args().First(), c.App.Reader)
	if err != nil {
		return err
	}

	metrics := observability.NewDecodeMetrics()
	docs, decodeErr := decodeStream(data, cfg, metrics)
	if err := render(c.App.Writer, cfg.Output, docs); err != nil {
		return err
	}
	if cfg.MetricsOut != "" {
		if err := metrics.WriteTextfile(cfg.MetricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return decodeErr
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// decodeStream walks data frame by frame. On error it returns the frames
// decoded so far together with the offset of the frame that failed.
func decodeStream(data []byte, cfg config.DumpConfig, metrics *observability.DecodeMetrics) ([]messageDoc, error) {
	b := bytebuf.FromBytes(data)
	docs := make([]messageDoc, 0, 8)
	for b.Remaining() > 0 {
		offset := len(data) - b.Remaining()
		f, err := frame.Next(b, cfg.Limits)
		if err == nil && cfg.CheckHeader {
			err = f.Header.Check()
		}
		if err != nil {
			metrics.RecordError(err)
			log.Error().Err(err).Int("offset", offset).Int("frame", len(docs)).Msg("framedump decode failed")
			return docs, fmt.Errorf("frame %d at offset %d: %w", len(docs), offset, err)
		}
		consumed := len(data) - offset - b.Remaining()

		packed := f.Header.Flags&frame.FlagCompressed != 0
		if packed && cfg.Decompress {
			if f, err = compress.Open(f, cfg.Limits); err != nil {
				metrics.RecordError(err)
				return docs, fmt.Errorf("frame %d at offset %d: %w", len(docs), offset, err)
			}
		}
		doc, err := docFromFrame(f, packed)
		if err != nil {
			metrics.RecordError(err)
			return docs, fmt.Errorf("frame %d at offset %d: %w", len(docs), offset, err)
		}
		if cfg.AuthToken != "" && doc.Invalid == "" {
			if err := (auth.StaticToken{Token: cfg.AuthToken}).Validate(f.Auth); err != nil {
				doc.Invalid = err.Error()
			}
		}
		metrics.RecordFrame(doc.Type, consumed, len(f.Payload))
		log.Debug().
			Int("offset", offset).
			Uint64("message_id", doc.ID).
			Str("type", doc.Type).
			Int("fields", len(doc.Fields)).
			Msg("framedump decoded frame")
		docs = append(docs, doc)
	}
	return docs, nil
}

func render(w io.Writer, output string, docs []messageDoc) error {
	if output == config.OutputText {
		return renderText(w, docs)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return err
	}
	return enc.Close()
}

func renderText(w io.Writer, docs []messageDoc) error {
	for i, doc := range docs {
		line := fmt.Sprintf("frame %d id=%d type=%s", i, doc.ID, doc.Type)
		if doc.Response {
			line += " response"
		}
		if doc.Error {
			line += " error"
		}
		if doc.Compressed {
			line += " compressed"
		}
		if doc.Auth != "" {
			line += fmt.Sprintf(" auth=%q", doc.Auth)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, fd := range doc.Fields {
			if _, err := fmt.Fprintf(w, "  field %d %s = %s\n", fd.ID, fd.Type, fd.Value); err != nil {
				return err
			}
		}
		if doc.Payload != "" {
			if _, err := fmt.Fprintf(w, "  payload %s\n", doc.Payload); err != nil {
				return err
			}
		}
		if doc.Invalid != "" {
			if _, err := fmt.Fprintf(w, "  invalid: %s\n", doc.Invalid); err != nil {
				return err
			}
		}
	}
	return nil
}
