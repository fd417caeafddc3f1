package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	_ "github.com/sarchlab/memshim/engines/fixedlatency"
	"github.com/sarchlab/memshim/memsys"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List the registered memory-system engines",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range memsys.List() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}
