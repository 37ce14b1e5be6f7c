package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jchantrell/sourcedb/internal/keyvalues"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	kvGet     string
	kvSubkeys []string
	kvFormat  string
)

var kvCmd = &cobra.Command{
	Use:   "kv <file>",
	Short: "Parse a KeyValues text file and print the tree",
	Long: `kv parses a KeyValues file (.vmt, .res, .txt, .vdf, ...) and prints it in
canonical form, or as YAML with --format yaml.

Use --subkey once per level to descend into nested blocks. Key names are matched
exactly, so names containing slashes work as-is:

  sourcedb kv hudlayout.res --subkey "Resource/HudLayout.res" --subkey HudHealth

Use --get to print a single value from the selected block.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch kvFormat {
		case "text", "yaml":
		default:
			return fmt.Errorf("unsupported output format '%s': expected text or yaml", kvFormat)
		}

		kv, err := keyvalues.ParseFile(args[0], parseOptions())
		if err != nil {
			return err
		}

		slog.Debug("Parsed KeyValues file", "path", args[0], "entries", kv.Len())

		node, err := descend(kv, kvSubkeys)
		if err != nil {
			return err
		}

		if kvGet != "" {
			value, ok := node.Value(kvGet)
			if !ok {
				return fmt.Errorf("key %q not found", kvGet)
			}
			fmt.Println(value)
			return nil
		}

		return printTree(os.Stdout, node, kvFormat)
	},
}

// descend follows path one subkey per element
func descend(kv *keyvalues.KeyValues, path []string) (*keyvalues.KeyValues, error) {
	if node, ok := kv.Lookup(path...); ok {
		return node, nil
	}

	// report the first level that is missing
	node := kv
	for i, name := range path {
		next, ok := node.Subkey(name)
		if !ok {
			return nil, fmt.Errorf("subkey %q not found at depth %d", name, i+1)
		}
		node = next
	}
	return nil, fmt.Errorf("subkey path %q not found", path)
}

func printTree(w io.Writer, kv *keyvalues.KeyValues, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(kv); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}

	_, err := kv.WriteTo(w)
	return err
}

func init() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.Flags().StringVar(&kvGet, "get", "", "print the value stored under this key")
	kvCmd.Flags().StringArrayVar(&kvSubkeys, "subkey", nil, "subkey to descend into, repeat once per level")
	kvCmd.Flags().StringVar(&kvFormat, "format", "text", "output format (text, yaml)")
}
