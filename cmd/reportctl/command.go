package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go-fleet/internal/reportengine"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reportctl",
		Short: "Inspect data sources and check report definitions offline",
	}
	cmd.AddCommand(sourcesCommand(), validateCommand(), schemaCommand())
	return cmd
}

func sourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources [name]",
		Short: "List data sources, or the columns of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			registry := reportengine.FleetRegistry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if len(args) == 0 {
				fmt.Fprintln(w, "NAME\tTABLE\tCOLUMNS")
				for _, name := range registry.Names() {
					ds, _ := registry.Resolve(name)
					fmt.Fprintf(w, "%s\t%s\t%d\n", ds.Name, ds.Table, len(ds.Columns))
				}
				return nil
			}

			ds, ok := registry.Resolve(args[0])
			if !ok {
				return fmt.Errorf("unknown data source %q", args[0])
			}
			fmt.Fprintln(w, "FIELD\tTYPE\tLABEL")
			for _, field := range ds.Fields() {
				meta, _ := ds.Column(field)
				fmt.Fprintf(w, "%s\t%s\t%s\n", field, meta.Type, meta.Label)
			}
			return nil
		},
	}
}

func validateCommand() *cobra.Command {
	var source, file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a YAML or JSON report definition",
		Long: "Validate reads a definition, or a full request carrying dataSource and definition, " +
			"and checks it against the data source registry without touching a database.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("missing required flag 'file'")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			raw, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			req, err := decodeRequest(raw)
			if err != nil {
				return err
			}
			if source != "" {
				req.DataSource = source
			}

			_, mode, err := reportengine.Validate(reportengine.FleetRegistry(), req.DataSource, &req.Definition)
			if err != nil {
				var ve *reportengine.ValidationError
				if errors.As(err, &ve) {
					enc := json.NewEncoder(cmd.ErrOrStderr())
					enc.SetIndent("", "  ")
					_ = enc.Encode(ve)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s definition on %s\n", mode, req.DataSource)
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "data source name, overrides dataSource in the file")
	cmd.Flags().StringVarP(&file, "file", "f", "", "definition file, - for stdin")
	return cmd
}

func schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of an execute request",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			out, err := requestSchema()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		},
	}
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}

// decodeRequest accepts YAML or JSON. A document without a definition key is a bare definition.
func decodeRequest(raw []byte) (reportengine.Request, error) {
	var req reportengine.Request
	data, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return req, fmt.Errorf("parse definition: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return req, fmt.Errorf("definition must be an object: %w", err)
	}
	if _, ok := probe["definition"]; ok {
		err = strictDecode(data, &req)
	} else {
		err = strictDecode(data, &req.Definition)
	}
	if err != nil {
		return req, fmt.Errorf("decode definition: %w", err)
	}
	return req, nil
}

func strictDecode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func requestSchema() ([]byte, error) {
	r := &jsonschema.Reflector{}
	raw, err := json.Marshal(r.Reflect(&reportengine.Request{}))
	if err != nil {
		return nil, err
	}

	// Literal has no exported fields; any JSON scalar or array is accepted.
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for _, key := range []string{"definitions", "$defs"} {
		if defs, ok := doc[key].(map[string]any); ok {
			if _, ok := defs["Literal"]; ok {
				defs["Literal"] = map[string]any{}
			}
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}
