package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
)

var (
	classifyBoundary string
	classifyRegistry string
	classifyVerbose  bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <lon> <lat>",
	Short: "Classify a single coordinate",
	Long: `Classifies one (lon, lat) coordinate, longitude first, both in degrees
with longitude easterly in [-180, 180].

Examples:
  longhurst-cli classify -- -30 45
  longhurst-cli classify --verbose --registry marineregions -- -30 45`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lon, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "classify: parse longitude %q", args[0])
		}
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrapf(err, "classify: parse latitude %q", args[1])
		}

		bc := cfg.Boundary
		if classifyBoundary != "" {
			bc.Path = classifyBoundary
		}
		if classifyRegistry != "" {
			bc.Registry = classifyRegistry
		}

		st, reg, err := loadBoundaryStore(bc)
		if err != nil {
			return err
		}

		classifier := longhurst.NewClassifier(st, reg)
		res, err := classifier.Classify(lon, lat)
		if err != nil {
			return eris.Wrap(err, "classify")
		}

		if !classifyVerbose {
			res.Candidates = nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyBoundary, "boundary", "", "boundary source path (overrides config)")
	classifyCmd.Flags().StringVar(&classifyRegistry, "registry", "", "numbering variant: mit, marineregions, longhurst (overrides config)")
	classifyCmd.Flags().BoolVarP(&classifyVerbose, "verbose", "v", false, "include bounding-box candidates in output")
	rootCmd.AddCommand(classifyCmd)
}
