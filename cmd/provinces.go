package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
)

var provincesRegistry string

var provincesCmd = &cobra.Command{
	Use:   "provinces [code...]",
	Short: "List province numbers, codes, and names",
	Long: `With no arguments, lists the full registry in number order. With one
or more four-letter codes, looks up each code's number and full name.

Examples:
  longhurst-cli provinces
  longhurst-cli provinces --registry marineregions NADR SPSG`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := provincesRegistry
		if name == "" {
			name = cfg.Boundary.Registry
		}
		reg, err := longhurst.RegistryByName(name)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			listRegistry(os.Stdout, reg)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, code := range args {
			num, err := reg.NumForCode(code)
			if err != nil {
				return eris.Wrapf(err, "provinces: %s", code)
			}
			provName, err := longhurst.ProvinceName(code)
			if err != nil {
				return eris.Wrapf(err, "provinces: %s", code)
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", num, code, provName)
		}
		return w.Flush()
	},
}

func init() {
	provincesCmd.Flags().StringVar(&provincesRegistry, "registry", "", "numbering variant: mit, marineregions, longhurst (overrides config)")
	rootCmd.AddCommand(provincesCmd)
}

// listRegistry writes the whole registry as a table in number order.
func listRegistry(out io.Writer, reg *longhurst.Registry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "NUM\tCODE\tNAME\t(registry: %s, %d provinces)\n", reg.Name(), reg.Len())

	for _, num := range reg.Nums() {
		code, err := reg.CodeForNum(num)
		if err != nil {
			continue
		}
		name, err := longhurst.ProvinceName(code)
		if err != nil {
			name = ""
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", num, code, name)
	}
	_ = w.Flush()
}
