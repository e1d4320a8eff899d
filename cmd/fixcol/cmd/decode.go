package cmd

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ianlopshire/go-fixcol"
	"github.com/ianlopshire/go-fixcol/charset"
	"github.com/ianlopshire/go-fixcol/layout"
)

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode fixed-width records into JSON lines",
		Long: `Decode reads fixed-width records and writes one JSON object per
record to standard output. Records of a keyed layout are written as
{"key": ..., "record": {...}}.

Bad records are logged and skipped. The command fails if any record was
rejected.

Example:
  fixcol decode --layout city.yaml cities.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := bufio.NewWriter(cmd.OutOrStdout())
			err := a.scan(cmd, args, "decode", func(rec layout.Record) error {
				data, err := a.layout.MarshalJSON(rec)
				if err != nil {
					return err
				}
				out.Write(data)
				return out.WriteByte('\n')
			})
			if ferr := out.Flush(); err == nil && ferr != nil {
				return errors.Wrap(ferr, "write output")
			}
			return err
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate fixed-width records against a layout",
		Long: `Check decodes every record and reports the ones that do not match the
layout, without writing any output. Combine with --strict to also reject
records that would decode but do not conform exactly.

Example:
  fixcol check --strict --layout city.yaml cities.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.scan(cmd, args, "check", func(layout.Record) error { return nil })
		},
	}
}

// scan decodes the input and calls fn for every good record.
func (a *app) scan(cmd *cobra.Command, args []string, op string, fn func(layout.Record) error) error {
	in, err := open(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	r, err := charset.NewReader(in, a.cfg.Charset)
	if err != nil {
		return err
	}
	return a.decode(r, op, fn)
}

func (a *app) decode(r io.Reader, op string, fn func(layout.Record) error) error {
	var s stats
	for rec, err := range a.layout.ReadAll(r, a.cfg.Options()...) {
		if _, ok := err.(*fixcol.Error); err != nil && !ok {
			return err
		}

		s.records++
		if err != nil {
			a.reject(&s, err, s.records)
			if a.cfg.FailFast {
				break
			}
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return a.done(&s, op)
}
