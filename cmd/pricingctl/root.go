package main

import (
	goflag "flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/config"
)

// options are the root command's flags, bound with pflag directly rather
// than cobra's bundled copy.
type options struct {
	configPath string
	rounds     int
	reportPath string
	verbosity  int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pricingctl",
		Short: "Drive the pricing subsystem against a synthetic demo model",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Forward -v to the "v" flag klog.InitFlags registered.
			if err := goflag.Set("v", strconv.Itoa(opts.verbosity)); err != nil {
				return err
			}
			return runDemo(opts)
		},
	}

	flags := pflag.NewFlagSet("pricingctl", pflag.ExitOnError)
	flags.StringVar(&opts.configPath, "config", "", "path to a pricing Options YAML file (defaults applied if empty)")
	flags.IntVar(&opts.rounds, "rounds", 5, "number of synthetic pricing rounds to run")
	flags.StringVar(&opts.reportPath, "report", "", "path to write an HTML round-trajectory chart (skipped if empty)")
	flags.IntVar(&opts.verbosity, "v", 2, "klog verbosity level")
	root.Flags().AddFlagSet(flags)

	return root
}

func loadOptions(path string) (*v1alpha1.Options, error) {
	if path == "" {
		return config.Default(), nil
	}
	opts, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return opts, nil
}

func main() {
	klog.InitFlags(nil)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
