package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/safebuf/internal/config"
	"github.com/danmuck/safebuf/internal/protocol/compress"
	"github.com/danmuck/safebuf/internal/protocol/frame"
	"github.com/danmuck/safebuf/internal/protocol/schema"
	"github.com/danmuck/safebuf/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "build frames from a YAML message list",
		ArgsUsage: "<messages.yaml|-> <out|->",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "allow-invalid", Usage: "skip schema validation of known message types"},
		},
		Action: runEncode,
	}
}

func runEncode(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("encode: expected input and output paths")
	}
	in, err := readInput(c.Args().Get(0), c.App.Reader)
	if err != nil {
		return err
	}
	var docs []messageDoc
	if err := yaml.Unmarshal(in, &docs); err != nil {
		return fmt.Errorf("parse messages: %w", err)
	}

	cfg := dumpConfig(c)
	out := c.Args().Get(1)
	if out == "-" {
		return encodeMessages(c.App.Writer, docs, cfg, !c.Bool("allow-invalid"))
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := encodeMessages(file, docs, cfg, !c.Bool("allow-invalid")); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func encodeMessages(w io.Writer, docs []messageDoc, cfg config.DumpConfig, validate bool) error {
	bw := bufio.NewWriter(w)
	for i, doc := range docs {
		f, err := frameFromDoc(doc)
		if err != nil {
			return err
		}
		if validate && schema.Name(f.Header.MessageType) != "" {
			fields, err := tlv.DecodeFields(f.Payload)
			if err != nil {
				return err
			}
			if err := schema.Validate(f.Header.MessageType, fields); err != nil {
				return fmt.Errorf("message %d: %w", doc.ID, err)
			}
		}
		if doc.Compressed {
			if f, err = compress.Seal(f); err != nil {
				return err
			}
		}
		if err := frame.WriteFrame(bw, f, cfg.Limits); err != nil {
			return fmt.Errorf("message %d: %w", doc.ID, err)
		}
		log.Debug().Int("index", i).Uint64("message_id", doc.ID).Str("type", doc.Type).Msg("framedump encoded frame")
	}
	return bw.Flush()
}
