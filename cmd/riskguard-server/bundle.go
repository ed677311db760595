package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gokaycavdar/riskguard/pkg/bundle"
	"github.com/gokaycavdar/riskguard/pkg/config"
	"github.com/gokaycavdar/riskguard/pkg/features"
)

func newBundleCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Inspect trained model artifacts",
	}
	cmd.AddCommand(newBundleVerifyCommand(configPath))
	return cmd
}

func newBundleVerifyCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every factor's bundle loads and matches its expected shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return verifyBundles(cfg.Bundles.Dir)
		},
	}
}

func verifyBundles(dir string) error {
	expectations := []struct {
		factor       string
		algorithm    string
		featureCount int
	}{
		{"network", "one_class_svm", features.NetworkLen},
		{"temporal", "isolation_forest", features.TemporalLen},
		{"agent", "autoencoder", features.AgentLen},
		{"geography", "dbscan", features.GeoLen},
	}

	failed := false
	for _, want := range expectations {
		path := bundle.FactorFilename(dir, want.factor)
		artifact, err := bundle.Load(path, want.algorithm, want.featureCount)
		if err != nil {
			fmt.Printf("%-10s MISSING  (%v)\n", want.factor, err)
			failed = true
			continue
		}
		if _, err := bundle.BuildModel(artifact); err != nil {
			fmt.Printf("%-10s INVALID  (%v)\n", want.factor, err)
			failed = true
			continue
		}
		fmt.Printf("%-10s OK       algorithm=%s version=%s\n", want.factor, artifact.Meta.Algorithm, artifact.Meta.Version)
	}

	if failed {
		return fmt.Errorf("one or more bundles failed verification")
	}
	return nil
}
