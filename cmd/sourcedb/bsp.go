package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jchantrell/sourcedb/internal/bsp"
	"github.com/jchantrell/sourcedb/internal/utils"
	"github.com/spf13/cobra"
)

var (
	bspLumps    bool
	bspEntities bool
)

var bspCmd = &cobra.Command{
	Use:   "bsp <file>",
	Short: "Inspect a compiled BSP map",
	Long: `bsp prints the header of a compiled Source engine map. With --lumps it lists
every present lump, and with --entities it dumps the entity lump as KeyValues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := bsp.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		fmt.Println(f.Header.String())

		if bspLumps {
			fmt.Printf("%-4s %-28s %-10s %-10s %-8s\n", "Idx", "Lump", "Offset", "Size", "Version")
			fmt.Println(strings.Repeat("-", 64))
			for i, lump := range f.Header.Lumps {
				if !lump.Exists() {
					continue
				}
				fmt.Printf("%-4d %-28s %-10d %-10s %-8d\n",
					i, bsp.LumpIndex(i), lump.Offset, utils.Bytes(int64(lump.Length)), lump.Version)
			}
		}

		if bspEntities {
			entities, err := f.Entities()
			if err != nil {
				return fmt.Errorf("reading entities: %w", err)
			}
			for i, entity := range entities {
				fmt.Printf("// entity %d\n{\n", i)
				if _, err := entity.WriteTo(os.Stdout); err != nil {
					return err
				}
				fmt.Println("}")
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(bspCmd)
	bspCmd.Flags().BoolVar(&bspLumps, "lumps", false, "list present lumps")
	bspCmd.Flags().BoolVar(&bspEntities, "entities", false, "dump the entity lump")
}
