package cmd

import (
	"bufio"
	"io"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ianlopshire/go-fixcol/charset"
)

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode JSON lines into fixed-width records",
		Long: `Encode reads JSON objects in the form written by decode and writes one
fixed-width line per object to standard output. Values are never truncated:
a value that does not fit its column rejects the record.

Example:
  fixcol decode --layout city.yaml cities.txt | fixcol encode --layout city.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := open(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			w, err := charset.NewWriter(cmd.OutOrStdout(), a.cfg.Charset)
			if err != nil {
				return err
			}
			err = a.encode(in, w)
			if cerr := w.Close(); err == nil && cerr != nil {
				return errors.Wrap(cerr, "write output")
			}
			return err
		},
	}
}

func (a *app) encode(r io.Reader, w io.Writer) error {
	out := bufio.NewWriter(w)
	dec := json.NewDecoder(r)

	var s stats
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrapf(err, "read record %d", s.records+1)
		}
		s.records++

		rec, err := a.layout.UnmarshalJSON(raw)
		var line []byte
		if err == nil {
			line, err = a.layout.Encode(rec, a.cfg.Options()...)
		}
		if err != nil {
			a.reject(&s, err, s.records)
			if a.cfg.FailFast {
				break
			}
			continue
		}

		out.Write(line)
		if err := out.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "write output")
		}
	}

	if err := out.Flush(); err != nil {
		return errors.Wrap(err, "write output")
	}
	return a.done(&s, "encode")
}
