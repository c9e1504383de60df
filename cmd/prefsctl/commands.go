package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/typedprefs"
	"github.com/CreativeUnicorns/typedprefs/api"
	"github.com/CreativeUnicorns/typedprefs/codegen"
	"github.com/CreativeUnicorns/typedprefs/prefxml"
	"github.com/CreativeUnicorns/typedprefs/resources"
	"github.com/CreativeUnicorns/typedprefs/sample"
)

// withApp opens the registry for the duration of fn.
func withApp(opts *options, fn func(a *app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	err = fn(a)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newDumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every preference with its key and default",
		Long: `Print every declared preference in declaration order with its key, its
resource id when the default is resource-backed, and the resolved default.
A default that cannot be resolved is printed as an error instead.`,
		Example: `  # Defaults of the embedded sample
  prefsctl dump

  # French defaults
  prefsctl dump --locale fr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if a.sample != nil {
					return sample.Dump(cmd.OutOrStdout(), a.sample)
				}
				return dumpRegistry(cmd.OutOrStdout(), a.registry)
			})
		},
	}
}

// dumpRegistry prints a runtime-declared screen in the same layout as sample.Dump.
func dumpRegistry(w io.Writer, r *typedprefs.Registry) error {
	infos, err := r.Describe()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, info := range infos {
		fmt.Fprintf(&buf, "%s:\n", info.Name)
		fmt.Fprintf(&buf, "\tkey: %s\n", info.Key)
		if info.Source == typedprefs.DefaultResource {
			fmt.Fprintf(&buf, "\tdefaultResId: 0x%08x\n", info.ResourceID)
		}
		if info.DefaultErr != nil {
			fmt.Fprintf(&buf, "\tdefaultValue: error: %v\n", info.DefaultErr)
		} else {
			fmt.Fprintf(&buf, "\tdefaultValue: %s\n", sample.FormatValue(info.Default))
		}
		buf.WriteString("\n")
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the current value of a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				d, err := a.descriptor(args[0])
				if err != nil {
					return err
				}
				v, err := d.Get(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sample.FormatValue(v))
				return nil
			})
		},
	}
}

func newSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value for a preference",
		Long: `Store a value for a preference after checking it against the declared type
and value domain. VALUE is JSON or plain text: colors may be written as
#RRGGBB, string sets as a JSON array or a comma separated list.`,
		Example: `  prefsctl set number_of_rows 25 --store sqlite --dsn prefs.db
  prefsctl set primary_color '#FF5722' --store sqlite --dsn prefs.db
  prefsctl set request_types GET,POST --store sqlite --dsn prefs.db`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				d, err := a.descriptor(args[0])
				if err != nil {
					return err
				}
				v, err := parseValue(d.Type(), args[1])
				if err != nil {
					return err
				}
				return d.SetValue(cmd.Context(), v)
			})
		},
	}
}

// parseValue reads VALUE as JSON, falling back to treating it as a JSON string.
func parseValue(t typedprefs.ValueType, s string) (any, error) {
	if t == typedprefs.StringSetType && !strings.HasPrefix(strings.TrimSpace(s), "[") {
		if strings.TrimSpace(s) == "" {
			return []string{}, nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}

	v, err := typedprefs.DecodeValue(t, []byte(s))
	if err == nil {
		return v, nil
	}
	if json.Valid([]byte(s)) && t != typedprefs.StringType {
		return nil, err
	}
	return typedprefs.DecodeValue(t, []byte(strconv.Quote(s)))
}

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear KEY",
		Short: "Remove the stored value so reads return the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				d, err := a.descriptor(args[0])
				if err != nil {
					return err
				}
				return d.Clear(cmd.Context())
			})
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the preferences over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				return serve(cmd.Context(), a, opts.listenAddr)
			})
		},
	}
	cmd.Flags().StringVar(&opts.listenAddr, "listen-addr", ":8080", "HTTP listen address")
	return cmd
}

func serve(ctx context.Context, a *app, listenAddr string) error {
	server, err := api.NewServer(api.Config{
		ListenAddress: listenAddr,
		Registry:      a.registry,
		Logger:        a.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("Server exited gracefully")
	return nil
}

func newGenCmd(opts *options) *cobra.Command {
	var (
		pkg      string
		typeName string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate typed preference handles from a preference screen",
		Long: `Generate a Go file declaring resource id constants, key constants and a
struct of typed preference handles for every entry of a preference screen.
Resource ids are assigned from the base values of the resource directory.`,
		Example: `  prefsctl gen --prefs res/xml/preferences.xml --res res --package sample --out p.go`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.prefs == "" || opts.res == "" {
				return fmt.Errorf("%w: gen needs --prefs and --res", typedprefs.ErrInvalidInput)
			}
			entries, err := prefxml.ParseFile(opts.prefs)
			if err != nil {
				return err
			}
			bundle, err := resources.LoadDir(opts.res)
			if err != nil {
				return err
			}

			src, err := codegen.Generate(codegen.Config{Package: pkg, TypeName: typeName}, entries, bundle.IDs())
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			return os.WriteFile(out, src, 0o644)
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "", "Package of the generated file")
	cmd.Flags().StringVar(&typeName, "type", "P", "Name of the handle struct")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (stdout when empty)")
	_ = cmd.MarkFlagRequired("package")
	return cmd
}
